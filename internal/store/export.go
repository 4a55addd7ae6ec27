package store

import (
	"context"

	"github.com/rcliao/daybook/internal/model"
)

// ExportAll returns every journal entry with content, oldest first.
func ExportAll(ctx context.Context, s Store) ([]model.JournalEntry, error) {
	infos, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]model.JournalEntry, 0, len(infos))
	for i := len(infos) - 1; i >= 0; i-- {
		e, err := s.Get(ctx, infos[i].Date)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, nil
}

// Import upserts entries from an export. Entries with an empty body are skipped.
// Existing days are replaced.
func Import(ctx context.Context, s Store, entries []model.JournalEntry) (int, error) {
	imported := 0
	for _, e := range entries {
		if e.Content == "" {
			continue
		}
		if _, err := s.Upsert(ctx, e.Date, e.Content); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
