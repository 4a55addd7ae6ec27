package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rcliao/daybook/internal/blob"
	"github.com/rcliao/daybook/internal/clock"
	"github.com/rcliao/daybook/internal/model"
)

// BlobStore keeps journal content as "<date>.md" objects in a bucket and the
// listing metadata in a journal_objects table. It has no search index.
type BlobStore struct {
	bucket blob.Bucket
	db     *sql.DB
	clock  clock.Clock
}

// NewBlobStore creates a blob-backed store. db holds the metadata table and is
// not closed by Close.
func NewBlobStore(bucket blob.Bucket, db *sql.DB, opts ...Option) (*BlobStore, error) {
	o := buildOptions(opts)
	s := &BlobStore{bucket: bucket, db: db, clock: o.clock}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *BlobStore) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS journal_objects (
		date       TEXT PRIMARY KEY,
		size       INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`)
	return err
}

// Bucket returns the underlying bucket.
func (s *BlobStore) Bucket() blob.Bucket {
	return s.bucket
}

// Upsert writes the object first and the metadata second. A failure between the
// two leaves readable content with stale or missing listing metadata.
func (s *BlobStore) Upsert(ctx context.Context, date, content string) (int, error) {
	if err := checkDate(date); err != nil {
		return 0, err
	}
	size := model.ContentSize(content)
	if err := s.bucket.Put(ctx, ObjectKey(date), []byte(content)); err != nil {
		return 0, &model.StorageError{Op: "put object", Key: date, Err: err}
	}

	now := formatTime(s.clock.Now())
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO journal_objects (date, size, created_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET
		   size = excluded.size,
		   updated_at = excluded.updated_at`,
		date, size, now, now)
	if err != nil {
		return 0, &model.StorageError{Op: "upsert metadata", Key: date, Err: err}
	}
	return size, nil
}

func (s *BlobStore) Get(ctx context.Context, date string) (*model.JournalEntry, error) {
	if err := checkDate(date); err != nil {
		return nil, err
	}
	data, err := s.bucket.Get(ctx, ObjectKey(date))
	if errors.Is(err, model.ErrNotFound) {
		return nil, &model.NotFoundError{What: "journal", Key: date}
	}
	if err != nil {
		return nil, &model.StorageError{Op: "get object", Key: date, Err: err}
	}
	if len(data) == 0 {
		return nil, &model.NotFoundError{What: "journal", Key: date}
	}

	e := &model.JournalEntry{Date: date, Size: len(data), Content: string(data)}
	var createdAt, updatedAt string
	err = s.db.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM journal_objects WHERE date = ?`, date).Scan(&createdAt, &updatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Objects written outside this store have no metadata row.
	case err != nil:
		return nil, &model.StorageError{Op: "get metadata", Key: date, Err: err}
	default:
		e.CreatedAt = parseTime(createdAt)
		e.UpdatedAt = parseTime(updatedAt)
	}
	return e, nil
}

func (s *BlobStore) List(ctx context.Context) ([]model.EntryInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, size, created_at, updated_at FROM journal_objects ORDER BY date DESC`)
	if err != nil {
		return nil, &model.StorageError{Op: "list", Err: err}
	}
	defer rows.Close()

	entries := []model.EntryInfo{}
	for rows.Next() {
		var e model.EntryInfo
		var createdAt, updatedAt string
		if err := rows.Scan(&e.Date, &e.Size, &createdAt, &updatedAt); err != nil {
			return nil, &model.StorageError{Op: "list", Err: err}
		}
		e.CreatedAt = parseTime(createdAt)
		e.UpdatedAt = parseTime(updatedAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &model.StorageError{Op: "list", Err: err}
	}
	return entries, nil
}

func (s *BlobStore) Close() error {
	return nil
}
