// Package migrate copies journal objects from a blob bucket into an archive store.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rcliao/daybook/internal/blob"
	"github.com/rcliao/daybook/internal/clock"
	"github.com/rcliao/daybook/internal/model"
	"github.com/rcliao/daybook/internal/store"
)

// Per-object outcomes.
const (
	StatusMigrated = "migrated"
	StatusSkipped  = "skipped"
	StatusError    = "error"
)

// Result is the outcome for one listed object.
type Result struct {
	Key     string `json:"key"`
	Date    string `json:"date,omitempty"`
	Status  string `json:"status"`
	Size    int    `json:"size,omitempty"`
	Message string `json:"message,omitempty"`
}

// Summary counts results by status.
type Summary struct {
	Total    int `json:"total"`
	Migrated int `json:"migrated"`
	Skipped  int `json:"skipped"`
	Errors   int `json:"errors"`
}

// Report describes one run.
type Report struct {
	RunID      string   `json:"run_id"`
	StartedAt  string   `json:"started_at"`
	Summary    Summary  `json:"summary"`
	Results    []Result `json:"results"`
	NextCursor string   `json:"next_cursor,omitempty"`
}

func (r *Report) add(res Result) {
	r.Results = append(r.Results, res)
	r.Summary.Total++
	switch res.Status {
	case StatusMigrated:
		r.Summary.Migrated++
	case StatusSkipped:
		r.Summary.Skipped++
	case StatusError:
		r.Summary.Errors++
	}
}

// Options bounds a run.
type Options struct {
	Cursor   string // resume after this key
	PageSize int    // objects per listing call; <= 0 uses blob.DefaultPageSize
	MaxPages int    // stop after this many pages; <= 0 means no limit
}

// Bridge moves "<YYYY-MM-DD>.md" objects from Source into Target. Re-running is
// safe: every object is upserted under its day.
type Bridge struct {
	Source blob.Bucket
	Target store.Store
	Logger *slog.Logger
	Clock  clock.Clock // stamps the run; nil means the system clock
}

// Run migrates every object after opts.Cursor. A failing object is recorded and
// the run continues; only a failed listing stops it, returning the partial report
// with the error.
func (b *Bridge) Run(ctx context.Context, opts Options) (*Report, error) {
	logger := b.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clk := b.Clock
	if clk == nil {
		clk = clock.System{}
	}
	now := clk.Now()
	report := &Report{
		RunID:     ulid.MustNew(ulid.Timestamp(now), ulid.Monotonic(rand.New(rand.NewSource(now.UnixNano())), 0)).String(),
		StartedAt: now.UTC().Format(time.RFC3339),
		Results:   []Result{},
	}
	logger = logger.With("run_id", report.RunID)

	cursor := opts.Cursor
	for pages := 0; ; pages++ {
		if opts.MaxPages > 0 && pages >= opts.MaxPages {
			report.NextCursor = cursor
			logger.Info("migration paused", "next_cursor", cursor, "summary", report.Summary)
			return report, nil
		}
		if err := ctx.Err(); err != nil {
			report.NextCursor = cursor
			return report, err
		}

		page, err := b.Source.List(ctx, cursor, opts.PageSize)
		if err != nil {
			report.NextCursor = cursor
			return report, fmt.Errorf("list objects after %q: %w", cursor, err)
		}
		for _, obj := range page.Objects {
			report.add(b.migrateOne(ctx, obj))
		}
		if !page.Truncated {
			break
		}
		cursor = page.Cursor
	}

	logger.Info("migration complete",
		"total", report.Summary.Total,
		"migrated", report.Summary.Migrated,
		"skipped", report.Summary.Skipped,
		"errors", report.Summary.Errors)
	return report, nil
}

func (b *Bridge) migrateOne(ctx context.Context, obj blob.Object) Result {
	date, ok := store.DateFromObjectKey(obj.Key)
	if !ok {
		return Result{Key: obj.Key, Status: StatusSkipped, Message: "not a journal object"}
	}

	data, err := b.Source.Get(ctx, obj.Key)
	if errors.Is(err, model.ErrNotFound) {
		return Result{Key: obj.Key, Date: date, Status: StatusError, Message: "object disappeared before fetch"}
	}
	if err != nil {
		return Result{Key: obj.Key, Date: date, Status: StatusError, Message: err.Error()}
	}
	size, err := b.Target.Upsert(ctx, date, string(data))
	if err != nil {
		return Result{Key: obj.Key, Date: date, Status: StatusError, Message: err.Error()}
	}
	return Result{Key: obj.Key, Date: date, Status: StatusMigrated, Size: size}
}
