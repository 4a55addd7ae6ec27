package migrate

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/daybook/internal/blob"
	"github.com/rcliao/daybook/internal/clock"
	"github.com/rcliao/daybook/internal/model"
	"github.com/rcliao/daybook/internal/store"
)

func newTarget(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "target.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedBucket(t *testing.T, objects map[string]string) *blob.MemoryBucket {
	t.Helper()
	b := blob.NewMemoryBucket()
	for k, v := range objects {
		require.NoError(t, b.Put(context.Background(), k, []byte(v)))
	}
	return b
}

func TestRunMigratesAndSkips(t *testing.T) {
	ctx := context.Background()
	src := seedBucket(t, map[string]string{
		"2024-01-01.md": "# Jan 1",
		"2024-01-02.md": "# Jan 2",
		"2024-01-03.md": "# Jan 3 ☕",
		"notes.txt":     "not a journal",
		"2024-13-01.md": "bad month",
		"README.md":     "readme",
	})
	dst := newTarget(t)
	b := &Bridge{Source: src, Target: dst}

	report, err := b.Run(ctx, Options{})
	require.NoError(t, err)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, Summary{Total: 6, Migrated: 3, Skipped: 3, Errors: 0}, report.Summary)
	assert.Empty(t, report.NextCursor)

	got, err := dst.Get(ctx, "2024-01-03")
	require.NoError(t, err)
	assert.Equal(t, "# Jan 3 ☕", got.Content)
	assert.Equal(t, len("# Jan 3 ☕"), got.Size)

	list, err := dst.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	src := seedBucket(t, map[string]string{
		"2024-02-01.md": "one",
		"2024-02-02.md": "two",
		"junk":          "x",
	})
	dst := newTarget(t)
	b := &Bridge{Source: src, Target: dst}

	first, err := b.Run(ctx, Options{})
	require.NoError(t, err)
	second, err := b.Run(ctx, Options{})
	require.NoError(t, err)

	assert.Equal(t, first.Summary, second.Summary)
	assert.NotEqual(t, first.RunID, second.RunID)
	list, err := dst.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

// flakyTarget fails upserts for one day.
type flakyTarget struct {
	store.Store
	failDate string
}

func (f *flakyTarget) Upsert(ctx context.Context, date, content string) (int, error) {
	if date == f.failDate {
		return 0, &model.StorageError{Op: "upsert", Key: date, Err: errors.New("disk full")}
	}
	return f.Store.Upsert(ctx, date, content)
}

func TestRunContinuesPastItemErrors(t *testing.T) {
	ctx := context.Background()
	src := seedBucket(t, map[string]string{
		"2024-03-01.md": "a",
		"2024-03-02.md": "b",
		"2024-03-03.md": "c",
	})
	dst := newTarget(t)
	b := &Bridge{Source: src, Target: &flakyTarget{Store: dst, failDate: "2024-03-02"}}

	report, err := b.Run(ctx, Options{})
	require.NoError(t, err)
	assert.Equal(t, Summary{Total: 3, Migrated: 2, Errors: 1}, report.Summary)

	var failed Result
	for _, r := range report.Results {
		if r.Status == StatusError {
			failed = r
		}
	}
	assert.Equal(t, "2024-03-02", failed.Date)
	assert.Contains(t, failed.Message, "disk full")

	_, err = dst.Get(ctx, "2024-03-03")
	assert.NoError(t, err, "objects after the failure still migrate")
}

func TestRunResumesFromCursor(t *testing.T) {
	ctx := context.Background()
	objects := map[string]string{}
	for i := 1; i <= 7; i++ {
		objects[fmt.Sprintf("2024-04-%02d.md", i)] = fmt.Sprintf("day %d", i)
	}
	src := seedBucket(t, objects)
	dst := newTarget(t)
	b := &Bridge{Source: src, Target: dst}

	report, err := b.Run(ctx, Options{PageSize: 2, MaxPages: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, report.Summary.Migrated)
	assert.Equal(t, "2024-04-04.md", report.NextCursor)

	report, err = b.Run(ctx, Options{PageSize: 2, Cursor: report.NextCursor})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Summary.Migrated)
	assert.Empty(t, report.NextCursor)

	list, err := dst.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 7)
}

// brokenBucket fails every listing.
type brokenBucket struct {
	blob.Bucket
}

func (brokenBucket) List(ctx context.Context, cursor string, limit int) (blob.Page, error) {
	return blob.Page{}, errors.New("bucket unreachable")
}

func TestRunListingFailureAborts(t *testing.T) {
	b := &Bridge{Source: brokenBucket{blob.NewMemoryBucket()}, Target: newTarget(t)}
	report, err := b.Run(context.Background(), Options{Cursor: "2024-01-01.md"})
	require.Error(t, err)
	require.NotNil(t, report)
	assert.Equal(t, "2024-01-01.md", report.NextCursor)
	assert.Zero(t, report.Summary.Total)
}

func TestRunMigratesEmptyObjects(t *testing.T) {
	ctx := context.Background()
	target := newTarget(t)
	src := seedBucket(t, map[string]string{
		"2024-05-01.md": "",
		"2024-05-02.md": "body",
		"notes.txt":     "x",
	})
	report, err := (&Bridge{Source: src, Target: target}).Run(ctx, Options{})
	require.NoError(t, err)
	assert.Equal(t, Summary{Total: 3, Migrated: 2, Skipped: 1}, report.Summary)

	_, err = target.Get(ctx, "2024-05-01")
	assert.True(t, errors.Is(err, model.ErrNotFound), "empty content reads as not found")
	e, err := target.Get(ctx, "2024-05-02")
	require.NoError(t, err)
	assert.Equal(t, "body", e.Content)
}

func TestRunUsesClock(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	b := &Bridge{Source: blob.NewMemoryBucket(), Target: newTarget(t), Clock: clock.Fixed(at)}
	report, err := b.Run(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T09:30:00Z", report.StartedAt)
	id, err := ulid.ParseStrict(report.RunID)
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(at), id.Time())
}
