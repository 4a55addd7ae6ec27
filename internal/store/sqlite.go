package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rcliao/daybook/internal/clock"
	"github.com/rcliao/daybook/internal/model"
)

// SQLiteStore implements Store and Searcher using SQLite. Content lives inline in
// journal_entries; journal_entries_fts is an FTS5 index over it, maintained by
// triggers inside the same statement as every write.
type SQLiteStore struct {
	db      *sql.DB
	path    string
	ownsDB  bool
	clock   clock.Clock
	snippet SnippetOptions
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string, opts ...Option) (*SQLiteStore, error) {
	db, err := OpenDB(dbPath)
	if err != nil {
		return nil, err
	}
	s, err := NewSQLiteStoreDB(db, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.path = dbPath
	s.ownsDB = true
	return s, nil
}

// NewSQLiteStoreDB uses an already open database. Close leaves db open.
func NewSQLiteStoreDB(db *sql.DB, opts ...Option) (*SQLiteStore, error) {
	o := buildOptions(opts)
	s := &SQLiteStore{
		db:      db,
		clock:   o.clock,
		snippet: o.snippet,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS journal_entries (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		date       TEXT NOT NULL UNIQUE,
		size       INTEGER NOT NULL,
		content    TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_journal_entries_date ON journal_entries(date DESC);

	CREATE VIRTUAL TABLE IF NOT EXISTS journal_entries_fts USING fts5(
		date UNINDEXED,
		content,
		content='journal_entries',
		content_rowid='id'
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// FTS5 triggers for automatic sync
	triggers := []string{
		`CREATE TRIGGER IF NOT EXISTS journal_entries_ai AFTER INSERT ON journal_entries BEGIN
			INSERT INTO journal_entries_fts(rowid, date, content) VALUES (new.id, new.date, new.content);
		END`,
		`CREATE TRIGGER IF NOT EXISTS journal_entries_ad AFTER DELETE ON journal_entries BEGIN
			INSERT INTO journal_entries_fts(journal_entries_fts, rowid, date, content) VALUES('delete', old.id, old.date, old.content);
		END`,
		`CREATE TRIGGER IF NOT EXISTS journal_entries_au AFTER UPDATE ON journal_entries BEGIN
			INSERT INTO journal_entries_fts(journal_entries_fts, rowid, date, content) VALUES('delete', old.id, old.date, old.content);
			INSERT INTO journal_entries_fts(rowid, date, content) VALUES (new.id, new.date, new.content);
		END`,
	}
	for _, t := range triggers {
		if _, err := s.db.Exec(t); err != nil {
			return fmt.Errorf("create fts trigger: %w", err)
		}
	}
	return nil
}

// Path returns the database file path, or "" when the store was given an open DB.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Upsert inserts or replaces the entry for date in one statement, so the row and
// its index entry change together.
func (s *SQLiteStore) Upsert(ctx context.Context, date, content string) (int, error) {
	if err := checkDate(date); err != nil {
		return 0, err
	}
	size := model.ContentSize(content)
	now := formatTime(s.clock.Now())

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO journal_entries (date, size, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET
		   size = excluded.size,
		   content = excluded.content,
		   updated_at = excluded.updated_at`,
		date, size, content, now, now)
	if err != nil {
		return 0, &model.StorageError{Op: "upsert", Key: date, Err: err}
	}
	return size, nil
}

func (s *SQLiteStore) Get(ctx context.Context, date string) (*model.JournalEntry, error) {
	if err := checkDate(date); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT date, size, content, created_at, updated_at FROM journal_entries WHERE date = ?`, date)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && e.Content == "") {
		return nil, &model.NotFoundError{What: "journal", Key: date}
	}
	if err != nil {
		return nil, &model.StorageError{Op: "get", Key: date, Err: err}
	}
	return &e, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]model.EntryInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, size, created_at, updated_at FROM journal_entries ORDER BY date DESC`)
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

func (s *SQLiteStore) Close() error {
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scanner) (model.JournalEntry, error) {
	var e model.JournalEntry
	var createdAt, updatedAt string
	if err := row.Scan(&e.Date, &e.Size, &e.Content, &createdAt, &updatedAt); err != nil {
		return e, err
	}
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)
	return e, nil
}
