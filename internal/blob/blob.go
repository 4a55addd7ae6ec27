// Package blob provides a minimal object-store abstraction: flat keys, paged listing.
package blob

import (
	"context"
	"sort"
)

// DefaultPageSize is the listing page size when none is given.
const DefaultPageSize = 1000

// Object describes one stored object.
type Object struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

// Page is one slice of a key-ordered listing.
type Page struct {
	Objects   []Object
	Truncated bool
	Cursor    string // pass to the next List call when Truncated
}

// Bucket stores opaque objects by key.
type Bucket interface {
	List(ctx context.Context, cursor string, limit int) (Page, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// page cuts a sorted key list after cursor. The cursor is the last key of the
// previous page.
func page(objects []Object, cursor string, limit int) Page {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })

	start := 0
	if cursor != "" {
		start = sort.Search(len(objects), func(i int) bool { return objects[i].Key > cursor })
	}
	end := start + limit
	if end >= len(objects) {
		return Page{Objects: objects[start:]}
	}
	return Page{Objects: objects[start:end], Truncated: true, Cursor: objects[end-1].Key}
}
