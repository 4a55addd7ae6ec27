package store

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rcliao/daybook/internal/model"
)

// DefaultCacheSize is the number of entries CachedStore keeps when size <= 0.
const DefaultCacheSize = 128

// CachedStore is an LRU read cache in front of another Store. Writes through it
// invalidate the day's entry; a read that raced a write is not cached.
type CachedStore struct {
	Store

	mu    sync.Mutex
	reads map[string]*inflight // only dates with a backend read in progress
	cache *lru.Cache[string, model.JournalEntry]
}

// inflight tracks backend reads of one date. gen moves on every write to the
// date while readers > 0.
type inflight struct {
	gen     uint64
	readers int
}

// NewCachedStore wraps s with a cache of the given size.
func NewCachedStore(s Store, size int) (*CachedStore, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, model.JournalEntry](size)
	if err != nil {
		return nil, err
	}
	return &CachedStore{Store: s, reads: make(map[string]*inflight), cache: c}, nil
}

// Unwrap returns the wrapped store.
func (c *CachedStore) Unwrap() Store {
	return c.Store
}

func (c *CachedStore) Upsert(ctx context.Context, date, content string) (int, error) {
	c.invalidate(date)
	defer c.invalidate(date)
	return c.Store.Upsert(ctx, date, content)
}

func (c *CachedStore) Get(ctx context.Context, date string) (*model.JournalEntry, error) {
	if e, ok := c.cache.Get(date); ok {
		return &e, nil
	}

	c.mu.Lock()
	r, ok := c.reads[date]
	if !ok {
		r = &inflight{}
		c.reads[date] = r
	}
	r.readers++
	gen := r.gen
	c.mu.Unlock()

	e, err := c.Store.Get(ctx, date)

	c.mu.Lock()
	if err == nil && r.gen == gen {
		c.cache.Add(date, *e)
	}
	r.readers--
	if r.readers == 0 {
		delete(c.reads, date)
	}
	c.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return e, nil
}

// Len returns the number of cached entries.
func (c *CachedStore) Len() int {
	return c.cache.Len()
}

func (c *CachedStore) invalidate(date string) {
	c.mu.Lock()
	if r, ok := c.reads[date]; ok {
		r.gen++
	}
	c.cache.Remove(date)
	c.mu.Unlock()
}
