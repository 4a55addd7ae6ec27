package blob

import (
	"context"
	"sync"

	"github.com/rcliao/daybook/internal/model"
)

// MemoryBucket is an in-process bucket.
type MemoryBucket struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryBucket creates an empty bucket.
func NewMemoryBucket() *MemoryBucket {
	return &MemoryBucket{objects: make(map[string][]byte)}
}

func (b *MemoryBucket) List(ctx context.Context, cursor string, limit int) (Page, error) {
	b.mu.RLock()
	objects := make([]Object, 0, len(b.objects))
	for k, v := range b.objects {
		objects = append(objects, Object{Key: k, Size: int64(len(v))})
	}
	b.mu.RUnlock()
	return page(objects, cursor, limit), nil
}

func (b *MemoryBucket) Get(ctx context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.objects[key]
	if !ok {
		return nil, &model.NotFoundError{What: "object", Key: key}
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (b *MemoryBucket) Put(ctx context.Context, key string, data []byte) error {
	stored := make([]byte, len(data))
	copy(stored, data)
	b.mu.Lock()
	b.objects[key] = stored
	b.mu.Unlock()
	return nil
}

func (b *MemoryBucket) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	delete(b.objects, key)
	b.mu.Unlock()
	return nil
}
