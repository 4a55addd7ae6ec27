package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rcliao/daybook/internal/model"
)

// SQLiteBackend persists logs in the session_messages table so a day's session
// survives restarts. Rows are ordered by their autoincrement sequence.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend prepares the session schema on db.
func NewSQLiteBackend(db *sql.DB) (*SQLiteBackend, error) {
	b := &SQLiteBackend{db: db}
	if err := b.migrate(); err != nil {
		return nil, fmt.Errorf("migrate sessions: %w", err)
	}
	return b, nil
}

func (b *SQLiteBackend) migrate() error {
	_, err := b.db.Exec(`
	CREATE TABLE IF NOT EXISTS session_messages (
		seq        INTEGER PRIMARY KEY AUTOINCREMENT,
		unit       TEXT NOT NULL,
		id         TEXT NOT NULL,
		role       TEXT NOT NULL,
		content    TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_session_messages_unit ON session_messages(unit, seq);
	`)
	return err
}

func (b *SQLiteBackend) Load(ctx context.Context, unit string) ([]model.Message, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT id, role, content, created_at FROM session_messages WHERE unit = ? ORDER BY seq`, unit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []model.Message
	for rows.Next() {
		var m model.Message
		var role, ts string
		if err := rows.Scan(&m.ID, &role, &m.Content, &ts); err != nil {
			return nil, err
		}
		m.Role = model.Role(role)
		m.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (b *SQLiteBackend) Append(ctx context.Context, unit string, msg model.Message) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO session_messages (unit, id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		unit, msg.ID, string(msg.Role), msg.Content, msg.Timestamp.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) Delete(ctx context.Context, unit string) error {
	_, err := b.db.ExecContext(ctx, `DELETE FROM session_messages WHERE unit = ?`, unit)
	return err
}
