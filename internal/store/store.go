// Package store provides the journal archive interface with SQLite and blob-backed implementations.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rcliao/daybook/internal/clock"
	"github.com/rcliao/daybook/internal/model"
)

// ErrSearchUnsupported is returned when the configured backend keeps no full-text index.
var ErrSearchUnsupported = errors.New("search not supported by this archive backend")

// ObjectExt is the extension of journal objects in a blob bucket.
const ObjectExt = ".md"

// Store defines the journal archive interface.
type Store interface {
	// Upsert writes or replaces the entry for date and returns its size in bytes.
	// created_at is kept on replace; updated_at is always bumped.
	Upsert(ctx context.Context, date, content string) (int, error)

	// Get returns the entry for date, or a NotFound error.
	Get(ctx context.Context, date string) (*model.JournalEntry, error)

	// List returns every entry's metadata, newest date first.
	List(ctx context.Context) ([]model.EntryInfo, error)

	// Close closes the store.
	Close() error
}

// Searcher is implemented by archives that maintain a full-text index.
type Searcher interface {
	Search(ctx context.Context, p SearchParams) ([]model.SearchHit, error)
}

// AsSearcher returns s's search capability, looking through decorators.
func AsSearcher(s Store) (Searcher, bool) {
	for s != nil {
		if sr, ok := s.(Searcher); ok {
			return sr, true
		}
		u, ok := s.(interface{ Unwrap() Store })
		if !ok {
			break
		}
		s = u.Unwrap()
	}
	return nil, false
}

// ObjectKey is the blob key a day's journal is stored under.
func ObjectKey(date string) string {
	return date + ObjectExt
}

// DateFromObjectKey extracts the day from a "<YYYY-MM-DD>.md" key.
func DateFromObjectKey(key string) (string, bool) {
	date, ok := strings.CutSuffix(key, ObjectExt)
	if !ok || !model.ValidDayKey(date) {
		return "", false
	}
	return date, true
}

// SnippetOptions controls search excerpts.
type SnippetOptions struct {
	Open     string `yaml:"open" json:"open"`
	Close    string `yaml:"close" json:"close"`
	Ellipsis string `yaml:"ellipsis" json:"ellipsis"`
	Tokens   int    `yaml:"tokens" json:"tokens"`
}

// DefaultSnippetOptions returns the default highlight markup and excerpt length.
func DefaultSnippetOptions() SnippetOptions {
	return SnippetOptions{Open: "<mark>", Close: "</mark>", Ellipsis: "...", Tokens: 32}
}

// Option configures a store.
type Option func(*options)

type options struct {
	clock   clock.Clock
	snippet SnippetOptions
}

// WithClock sets the time source for created_at/updated_at.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithSnippet sets search excerpt options.
func WithSnippet(s SnippetOptions) Option {
	return func(o *options) {
		o.snippet = s
	}
}

func buildOptions(opts []Option) options {
	o := options{clock: clock.System{}, snippet: DefaultSnippetOptions()}
	for _, fn := range opts {
		fn(&o)
	}
	def := DefaultSnippetOptions()
	if o.snippet.Tokens <= 0 || o.snippet.Tokens > 64 {
		o.snippet.Tokens = def.Tokens
	}
	return o
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func checkDate(date string) error {
	return model.CheckDayKey("date", date)
}
