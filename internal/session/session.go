// Package session holds the per-day message logs. Every day's log lives in its own
// storage unit, and all operations on one unit run one at a time in arrival order.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rcliao/daybook/internal/clock"
	"github.com/rcliao/daybook/internal/model"
	"github.com/rcliao/daybook/internal/transcript"
)

const (
	// DefaultIdleTimeout is how long a unit may sit without work before it is reaped.
	DefaultIdleTimeout = 10 * time.Minute

	// HistoryWindow is how many recent messages are replayed to the model.
	HistoryWindow = 20

	closingPoll = 10 * time.Millisecond
)

// ErrClosed is returned for operations submitted after Close.
var ErrClosed = errors.New("session arena closed")

// MessageLog is the per-day append-only message store.
type MessageLog interface {
	Append(ctx context.Context, day string, msg model.Message) (model.Message, error)
	Read(ctx context.Context, day string) ([]model.Message, error)
	Recent(ctx context.Context, day string, n int) ([]model.Message, error)
	Clear(ctx context.Context, day string) error
	Transcript(ctx context.Context, day string) (string, error)
}

// Backend persists the message sequence of each storage unit.
type Backend interface {
	Load(ctx context.Context, unit string) ([]model.Message, error)
	Append(ctx context.Context, unit string, msg model.Message) error
	Delete(ctx context.Context, unit string) error
}

// UnitName is the stable storage-unit name for a day.
func UnitName(day string) string {
	return "session-" + day
}

// Options configures an Arena.
type Options struct {
	IdleTimeout time.Duration
	Logger      *slog.Logger
	Clock       clock.Clock // stamps messages appended without a timestamp
}

// Arena routes each day to exactly one lazily created unit. A unit is a single
// goroutine draining its operation queue; units for different days never block
// each other.
type Arena struct {
	backend Backend
	idle    time.Duration
	logger  *slog.Logger
	clock   clock.Clock

	mu      sync.Mutex
	units   map[string]*unit
	closed  bool
	quit    chan struct{}
	wg      sync.WaitGroup
	entropy *rand.Rand
}

// NewArena creates an arena over backend.
func NewArena(backend Backend, opts Options) *Arena {
	idle := opts.IdleTimeout
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.System{}
	}
	return &Arena{
		backend: backend,
		idle:    idle,
		logger:  logger,
		clock:   clk,
		units:   make(map[string]*unit),
		quit:    make(chan struct{}),
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

type op struct {
	ctx  context.Context
	fn   func(ctx context.Context, u *unit) error
	done chan error
}

type unit struct {
	name   string
	ops    chan op
	refs   int // callers holding the unit; guarded by Arena.mu
	loaded bool
	msgs   []model.Message
}

// Append records msg at the end of day's log. The stored message, with its ID
// assigned, is returned. On error the message is not recorded.
func (a *Arena) Append(ctx context.Context, day string, msg model.Message) (model.Message, error) {
	if !model.ValidRoles[msg.Role] {
		return model.Message{}, &model.ValidationError{Field: "role", Reason: fmt.Sprintf("unknown role %q", msg.Role)}
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = a.clock.Now().UTC()
	}
	err := a.do(ctx, day, "append", func(ctx context.Context, u *unit) error {
		if msg.ID == "" {
			msg.ID = a.newID(msg.Timestamp)
		}
		if err := u.load(ctx, a.backend); err != nil {
			return err
		}
		if err := a.backend.Append(ctx, u.name, msg); err != nil {
			return err
		}
		u.msgs = append(u.msgs, msg)
		return nil
	})
	if err != nil {
		return model.Message{}, err
	}
	return msg, nil
}

// Read returns day's messages in append order; empty if nothing was appended.
func (a *Arena) Read(ctx context.Context, day string) ([]model.Message, error) {
	var out []model.Message
	err := a.do(ctx, day, "read", func(ctx context.Context, u *unit) error {
		if err := u.load(ctx, a.backend); err != nil {
			return err
		}
		out = make([]model.Message, len(u.msgs))
		copy(out, u.msgs)
		return nil
	})
	return out, err
}

// Recent returns at most the last n messages of day's log.
func (a *Arena) Recent(ctx context.Context, day string, n int) ([]model.Message, error) {
	msgs, err := a.Read(ctx, day)
	if err != nil {
		return nil, err
	}
	return transcript.Window(msgs, n), nil
}

// Clear deletes day's whole log.
func (a *Arena) Clear(ctx context.Context, day string) error {
	return a.do(ctx, day, "clear", func(ctx context.Context, u *unit) error {
		if err := a.backend.Delete(ctx, u.name); err != nil {
			return err
		}
		u.msgs = nil
		u.loaded = true
		return nil
	})
}

// Transcript renders day's log; "" means there is nothing to synthesize.
func (a *Arena) Transcript(ctx context.Context, day string) (string, error) {
	msgs, err := a.Read(ctx, day)
	if err != nil {
		return "", err
	}
	return transcript.Render(msgs), nil
}

// Active returns the number of live units.
func (a *Arena) Active() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.units)
}

// Close rejects new work, lets queued operations finish, and stops every unit.
func (a *Arena) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.quit)
	a.mu.Unlock()

	a.wg.Wait()
	return nil
}

func (a *Arena) do(ctx context.Context, day, opName string, fn func(ctx context.Context, u *unit) error) error {
	if !model.ValidDayKey(day) {
		return &model.ValidationError{Field: "date", Reason: "date must be YYYY-MM-DD, got " + day}
	}
	u, err := a.acquire(day)
	if err != nil {
		return &model.StorageError{Op: opName, Key: UnitName(day), Err: err}
	}

	o := op{ctx: ctx, fn: fn, done: make(chan error, 1)}
	select {
	case u.ops <- o:
	case <-ctx.Done():
		a.release(u)
		return &model.StorageError{Op: opName, Key: u.name, Err: ctx.Err()}
	}

	if err := <-o.done; err != nil {
		var ve *model.ValidationError
		if errors.As(err, &ve) {
			return err
		}
		return &model.StorageError{Op: opName, Key: u.name, Err: err}
	}
	return nil
}

func (a *Arena) acquire(day string) (*unit, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil, ErrClosed
	}
	name := UnitName(day)
	u, ok := a.units[name]
	if !ok {
		u = &unit{name: name, ops: make(chan op)}
		a.units[name] = u
		a.wg.Add(1)
		go a.run(u)
		a.logger.Debug("session unit started", "unit", name)
	}
	u.refs++
	return u, nil
}

func (a *Arena) release(u *unit) {
	a.mu.Lock()
	u.refs--
	a.mu.Unlock()
}

// retire removes u from the arena when no caller holds it.
func (a *Arena) retire(u *unit) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if u.refs > 0 {
		return false
	}
	delete(a.units, u.name)
	return true
}

func (a *Arena) run(u *unit) {
	defer a.wg.Done()
	timer := time.NewTimer(a.idle)
	defer timer.Stop()

	quit := a.quit
	wait := a.idle
	for {
		select {
		case o := <-u.ops:
			o.done <- o.fn(o.ctx, u)
			a.release(u)
			if quit == nil && a.retire(u) {
				return
			}
			timer.Reset(wait)
		case <-timer.C:
			if a.retire(u) {
				a.logger.Debug("session unit reaped", "unit", u.name)
				return
			}
			timer.Reset(wait)
		case <-quit:
			if a.retire(u) {
				return
			}
			// Closing: callers that already hold the unit still get served.
			quit = nil
			wait = closingPoll
			timer.Reset(wait)
		}
	}
}

func (a *Arena) newID(ts time.Time) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(ts), a.entropy).String()
}

func (u *unit) load(ctx context.Context, b Backend) error {
	if u.loaded {
		return nil
	}
	msgs, err := b.Load(ctx, u.name)
	if err != nil {
		return err
	}
	u.msgs = msgs
	u.loaded = true
	return nil
}
