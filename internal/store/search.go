package store

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rcliao/daybook/internal/model"
)

const (
	// MinQueryLength is the shortest query, in characters, Search accepts.
	MinQueryLength = 2
	// MaxResults caps the number of hits per search.
	MaxResults = 50
)

// SearchParams holds parameters for searching journal entries.
type SearchParams struct {
	Query string
	Limit int
}

// Search finds journal entries matching the query, best match first.
func (s *SQLiteStore) Search(ctx context.Context, p SearchParams) ([]model.SearchHit, error) {
	query := strings.TrimSpace(p.Query)
	if utf8.RuneCountInString(query) < MinQueryLength {
		return nil, &model.ValidationError{Field: "q", Reason: "query must be at least 2 characters"}
	}

	limit := p.Limit
	if limit <= 0 || limit > MaxResults {
		limit = MaxResults
	}

	match := matchExpr(query)
	if match == "" {
		return []model.SearchHit{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT date, snippet(journal_entries_fts, 1, ?, ?, ?, ?), rank
		FROM journal_entries_fts
		WHERE journal_entries_fts MATCH ?
		ORDER BY rank
		LIMIT ?`,
		s.snippet.Open, s.snippet.Close, s.snippet.Ellipsis, s.snippet.Tokens, match, limit)
	if err != nil {
		return nil, &model.StorageError{Op: "search", Key: query, Err: err}
	}
	defer rows.Close()

	hits := []model.SearchHit{}
	for rows.Next() {
		var h model.SearchHit
		if err := rows.Scan(&h.Date, &h.Snippet, &h.Rank); err != nil {
			return nil, &model.StorageError{Op: "search", Key: query, Err: err}
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, &model.StorageError{Op: "search", Key: query, Err: err}
	}
	return hits, nil
}

// matchExpr turns free text into an FTS5 expression of quoted terms, implicitly
// ANDed. Quoting strips operator meaning from AND/OR/NEAR, '*', '^', ':' and
// parentheses. Terms without a letter or digit are dropped; "" means nothing
// searchable remains.
func matchExpr(query string) string {
	var terms []string
	for _, term := range strings.Fields(query) {
		if !strings.ContainsFunc(term, func(r rune) bool {
			return unicode.IsLetter(r) || unicode.IsDigit(r)
		}) {
			continue
		}
		terms = append(terms, `"`+strings.ReplaceAll(term, `"`, `""`)+`"`)
	}
	return strings.Join(terms, " ")
}
