package session

import (
	"context"
	"sync"

	"github.com/rcliao/daybook/internal/model"
)

// MemoryBackend keeps logs in process memory. Logs do not survive a restart.
type MemoryBackend struct {
	mu    sync.Mutex
	units map[string][]model.Message
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{units: make(map[string][]model.Message)}
}

func (b *MemoryBackend) Load(ctx context.Context, unit string) ([]model.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	msgs := b.units[unit]
	out := make([]model.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (b *MemoryBackend) Append(ctx context.Context, unit string, msg model.Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.units[unit] = append(b.units[unit], msg)
	return nil
}

func (b *MemoryBackend) Delete(ctx context.Context, unit string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.units, unit)
	return nil
}
