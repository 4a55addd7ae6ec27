package blob

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rcliao/daybook/internal/model"
)

func buckets(t *testing.T) map[string]Bucket {
	t.Helper()
	dir, err := NewDirBucket(t.TempDir())
	if err != nil {
		t.Fatalf("create dir bucket: %v", err)
	}
	return map[string]Bucket{"dir": dir, "memory": NewMemoryBucket()}
}

func TestPutGetDelete(t *testing.T) {
	ctx := context.Background()
	for name, b := range buckets(t) {
		t.Run(name, func(t *testing.T) {
			body := []byte("# Journal Entry: 2024-01-01\n\nünïcode ✓")
			if err := b.Put(ctx, "2024-01-01.md", body); err != nil {
				t.Fatalf("put: %v", err)
			}
			got, err := b.Get(ctx, "2024-01-01.md")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if string(got) != string(body) {
				t.Errorf("expected %q, got %q", body, got)
			}

			if err := b.Put(ctx, "2024-01-01.md", []byte("v2")); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			got, _ = b.Get(ctx, "2024-01-01.md")
			if string(got) != "v2" {
				t.Errorf("expected overwrite, got %q", got)
			}

			if err := b.Delete(ctx, "2024-01-01.md"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			_, err = b.Get(ctx, "2024-01-01.md")
			if !errors.Is(err, model.ErrNotFound) {
				t.Errorf("expected not found after delete, got %v", err)
			}
		})
	}
}

func TestListPaging(t *testing.T) {
	ctx := context.Background()
	for name, b := range buckets(t) {
		t.Run(name, func(t *testing.T) {
			for i := 5; i >= 1; i-- {
				b.Put(ctx, fmt.Sprintf("2024-01-0%d.md", i), []byte("x"))
			}

			var keys []string
			cursor := ""
			pages := 0
			for {
				p, err := b.List(ctx, cursor, 2)
				if err != nil {
					t.Fatalf("list: %v", err)
				}
				pages++
				for _, o := range p.Objects {
					keys = append(keys, o.Key)
				}
				if !p.Truncated {
					break
				}
				cursor = p.Cursor
			}

			if pages != 3 {
				t.Errorf("expected 3 pages, got %d", pages)
			}
			if len(keys) != 5 || keys[0] != "2024-01-01.md" || keys[4] != "2024-01-05.md" {
				t.Errorf("unexpected key order: %v", keys)
			}
		})
	}
}

func TestDirBucketRejectsPathKeys(t *testing.T) {
	b, _ := NewDirBucket(t.TempDir())
	err := b.Put(context.Background(), "../escape.md", []byte("x"))
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
