package journal

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/daybook/internal/clock"
	"github.com/rcliao/daybook/internal/model"
	"github.com/rcliao/daybook/internal/session"
	"github.com/rcliao/daybook/internal/store"
	"github.com/rcliao/daybook/internal/synthesis"
)

var evening = time.Date(2024, 1, 1, 21, 0, 0, 0, time.UTC)

type fixture struct {
	clock *clock.Manual
	arena *session.Arena
	store *store.SQLiteStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := clock.NewManual(evening)
	arena := session.NewArena(session.NewMemoryBackend(), session.Options{Clock: clk})
	t.Cleanup(func() { arena.Close() })

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"), store.WithClock(clk))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return &fixture{clock: clk, arena: arena, store: st}
}

func (f *fixture) say(t *testing.T, day string, role model.Role, content string) {
	t.Helper()
	_, err := f.arena.Append(context.Background(), day, model.Message{Role: role, Content: content, Timestamp: f.clock.Now()})
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
}

// recorder is a generator that captures its requests.
type recorder struct {
	mu    sync.Mutex
	reqs  []synthesis.Request
	reply string
	err   error
}

func (r *recorder) Generate(ctx context.Context, req synthesis.Request) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
	return r.reply, r.err
}

func TestFinalizeWritesDocument(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.say(t, "2024-01-01", model.RoleUser, "Had a meeting with John about the Q3 roadmap")
	f.say(t, "2024-01-01", model.RoleAssistant, "How did it go?")

	gen := &recorder{reply: "## Calls & Meetings\n- Meeting with John about the Q3 roadmap"}
	p := NewPipeline(f.arena, f.store, gen, WithClock(f.clock))

	res, err := p.Finalize(ctx, "2024-01-01")
	require.NoError(t, err)

	want := "# Journal Entry: 2024-01-01\n\n" +
		"*Generated at: 2024-01-01T21:02:00.000Z*\n\n" +
		"---\n\n" +
		"## Calls & Meetings\n- Meeting with John about the Q3 roadmap\n"
	entry, err := f.store.Get(ctx, "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, want, entry.Content)
	assert.Equal(t, "2024-01-01", res.Date)
	assert.Equal(t, len([]byte(want)), res.Size)
	assert.Equal(t, res.Size, entry.Size)

	require.Len(t, gen.reqs, 1)
	assert.Equal(t, synthesis.SynthesisPrompt, gen.reqs[0].System)
	assert.Equal(t,
		"[2024-01-01T21:00:00.000Z] USER: Had a meeting with John about the Q3 roadmap\n"+
			"[2024-01-01T21:01:00.000Z] ASSISTANT: How did it go?",
		gen.reqs[0].Messages[0].Content)
}

func TestFinalizeLeavesLogIntact(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.say(t, "2024-01-01", model.RoleUser, "first thought")

	p := NewPipeline(f.arena, f.store, &recorder{reply: "v1"}, WithClock(f.clock))
	_, err := p.Finalize(ctx, "2024-01-01")
	require.NoError(t, err)

	msgs, err := f.arena.Read(ctx, "2024-01-01")
	require.NoError(t, err)
	assert.Len(t, msgs, 1)

	f.say(t, "2024-01-01", model.RoleUser, "second thought")
	gen := &recorder{reply: "v2"}
	p = NewPipeline(f.arena, f.store, gen, WithClock(f.clock))
	_, err = p.Finalize(ctx, "2024-01-01")
	require.NoError(t, err)

	assert.Contains(t, gen.reqs[0].Messages[0].Content, "first thought")
	assert.Contains(t, gen.reqs[0].Messages[0].Content, "second thought")

	entry, err := f.store.Get(ctx, "2024-01-01")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(entry.Content, "v2\n"))
	assert.True(t, entry.CreatedAt.Before(entry.UpdatedAt))
}

func TestFinalizeEmptyDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	gen := &recorder{reply: "unused"}
	p := NewPipeline(f.arena, f.store, gen, WithClock(f.clock))

	_, err := p.Finalize(ctx, "2024-01-01")
	assert.True(t, errors.Is(err, model.ErrNotFound))
	assert.Empty(t, gen.reqs, "generator must not run without a transcript")

	list, err := f.store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFinalizeSynthesisFailureKeepsPriorEntry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.store.Upsert(ctx, "2024-01-01", "earlier entry")
	require.NoError(t, err)
	f.say(t, "2024-01-01", model.RoleUser, "anything")

	p := NewPipeline(f.arena, f.store, &recorder{err: errors.New("model offline")}, WithClock(f.clock))
	_, err = p.Finalize(ctx, "2024-01-01")
	assert.True(t, errors.Is(err, model.ErrSynthesisUnavailable))

	entry, err := f.store.Get(ctx, "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, "earlier entry", entry.Content)
}

func TestFinalizeWithoutGenerator(t *testing.T) {
	f := newFixture(t)
	f.say(t, "2024-01-01", model.RoleUser, "anything")
	p := NewPipeline(f.arena, f.store, nil, WithClock(f.clock))

	_, err := p.Finalize(context.Background(), "2024-01-01")
	assert.True(t, errors.Is(err, model.ErrSynthesisUnavailable))
	assert.True(t, errors.Is(err, ErrNoGenerator))
}

func TestFinalizeDefaultsToToday(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	loc := time.FixedZone("UTC+5", 5*3600)
	// 21:00 UTC on Jan 1 is already Jan 2 at UTC+5.
	f.say(t, "2024-01-02", model.RoleUser, "late night")

	p := NewPipeline(f.arena, f.store, &recorder{reply: "ok"}, WithClock(f.clock), WithLocation(loc))
	res, err := p.Finalize(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", res.Date)
}

func TestFinalizeRejectsBadDate(t *testing.T) {
	f := newFixture(t)
	p := NewPipeline(f.arena, f.store, &recorder{reply: "x"})
	_, err := p.Finalize(context.Background(), "01/02/2024")
	assert.True(t, errors.Is(err, model.ErrValidation))
}

func TestFinalizeScheduledSwallowsErrors(t *testing.T) {
	f := newFixture(t)
	p := NewPipeline(f.arena, f.store, &recorder{err: errors.New("down")}, WithClock(f.clock))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	select {
	case <-p.FinalizeScheduled(ctx):
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled finalize did not finish")
	}

	f.say(t, "2024-01-01", model.RoleUser, "something")
	select {
	case <-p.FinalizeScheduled(ctx):
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled finalize did not finish")
	}
	_, err := f.store.Get(context.Background(), "2024-01-01")
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestFinalizeScheduledDetachedFromCancel(t *testing.T) {
	f := newFixture(t)
	f.say(t, "2024-01-01", model.RoleUser, "evening notes")
	gen := synthesis.Func(func(ctx context.Context, req synthesis.Request) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "## Others\n- evening notes", nil
	})
	p := NewPipeline(f.arena, f.store, gen, WithClock(f.clock))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	<-p.FinalizeScheduled(ctx)

	entry, err := f.store.Get(context.Background(), "2024-01-01")
	require.NoError(t, err)
	assert.Contains(t, entry.Content, "evening notes")
}

func TestDocument(t *testing.T) {
	ts := time.Date(2024, 3, 9, 8, 7, 6, 5_000_000, time.FixedZone("PST", -8*3600))
	assert.Equal(t,
		"# Journal Entry: 2024-03-09\n\n*Generated at: 2024-03-09T16:07:06.005Z*\n\n---\n\nbody\n",
		Document("2024-03-09", ts, "body"))
}
