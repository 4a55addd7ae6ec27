// Package journal turns a day's conversation into its archived journal entry.
package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rcliao/daybook/internal/clock"
	"github.com/rcliao/daybook/internal/model"
	"github.com/rcliao/daybook/internal/store"
	"github.com/rcliao/daybook/internal/synthesis"
	"github.com/rcliao/daybook/internal/transcript"
)

// ErrNoGenerator is wrapped when no synthesis provider is configured.
var ErrNoGenerator = errors.New("no synthesis provider configured")

// TranscriptSource is the part of the message log finalization reads.
type TranscriptSource interface {
	Transcript(ctx context.Context, day string) (string, error)
}

// Result describes a finalized entry.
type Result struct {
	Date string `json:"date"`
	Size int    `json:"size"`
}

// Option configures a Pipeline or Chat.
type Option func(*options)

type options struct {
	clock    clock.Clock
	location *time.Location
	logger   *slog.Logger
	prompt   string
}

// WithClock sets the time source for "today" and generated-at stamps.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLocation sets the zone days are cut in.
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.location = loc }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithPrompt overrides the system prompt.
func WithPrompt(p string) Option {
	return func(o *options) { o.prompt = p }
}

func buildOptions(opts []Option, prompt string) options {
	o := options{clock: clock.System{}, location: time.UTC, logger: slog.Default(), prompt: prompt}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// Pipeline finalizes a day: transcript, synthesis, template, upsert.
type Pipeline struct {
	log   TranscriptSource
	store store.Store
	gen   synthesis.Generator
	opts  options
}

// NewPipeline creates a finalization pipeline. gen may be nil, in which case
// every finalization with a transcript fails as synthesis unavailable.
func NewPipeline(log TranscriptSource, st store.Store, gen synthesis.Generator, opts ...Option) *Pipeline {
	return &Pipeline{log: log, store: st, gen: gen, opts: buildOptions(opts, synthesis.SynthesisPrompt)}
}

// Today returns the current day key.
func (p *Pipeline) Today() string {
	return clock.Today(p.opts.clock, p.opts.location)
}

// Finalize synthesizes day's transcript and stores it, replacing any earlier
// entry. An empty day means today. The message log is left untouched.
func (p *Pipeline) Finalize(ctx context.Context, day string) (Result, error) {
	if day == "" {
		day = p.Today()
	} else if err := model.CheckDayKey("date", day); err != nil {
		return Result{}, err
	}

	text, err := p.log.Transcript(ctx, day)
	if err != nil {
		return Result{}, err
	}
	if text == "" {
		return Result{}, &model.NotFoundError{What: "messages", Key: day}
	}

	if p.gen == nil {
		return Result{}, &model.SynthesisError{Err: ErrNoGenerator}
	}
	body, err := synthesis.Synthesize(ctx, p.gen, p.opts.prompt, text)
	if err != nil {
		if !errors.Is(err, model.ErrSynthesisUnavailable) {
			err = &model.SynthesisError{Err: err}
		}
		return Result{}, err
	}

	doc := Document(day, p.opts.clock.Now(), body)
	size, err := p.store.Upsert(ctx, day, doc)
	if err != nil {
		return Result{}, err
	}

	p.opts.logger.Info("journal finalized", "date", day, "size", size)
	return Result{Date: day, Size: size}, nil
}

// FinalizeScheduled finalizes today in the background, detached from ctx's
// cancellation. Failures are logged and dropped. The returned channel closes
// when the run ends.
func (p *Pipeline) FinalizeScheduled(ctx context.Context) <-chan struct{} {
	ctx = context.WithoutCancel(ctx)
	day := p.Today()
	done := make(chan struct{})
	go func() {
		defer close(done)
		res, err := p.Finalize(ctx, day)
		switch {
		case errors.Is(err, model.ErrNotFound):
			p.opts.logger.Info("scheduled finalize skipped: no messages", "date", day)
		case err != nil:
			p.opts.logger.Error("scheduled finalize failed", "date", day, "error", err)
		default:
			p.opts.logger.Info("scheduled finalize done", "date", res.Date, "size", res.Size)
		}
	}()
	return done
}

// Document wraps a synthesized body in the journal entry template.
func Document(day string, generatedAt time.Time, body string) string {
	return fmt.Sprintf("# Journal Entry: %s\n\n*Generated at: %s*\n\n---\n\n%s\n",
		day, transcript.FormatTimestamp(generatedAt), body)
}
