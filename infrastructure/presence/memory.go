package presence

import (
	"context"
	"sync"
)

// MemoryRegistry is the single-process Registry. Used when no Redis
// address is configured, and by tests.
type MemoryRegistry struct {
	mu      sync.RWMutex
	handles map[string]string
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		handles: make(map[string]string),
	}
}

func (r *MemoryRegistry) SetOnline(ctx context.Context, userId, handle string) error {
	r.mu.Lock()
	r.handles[userId] = handle
	r.mu.Unlock()
	return nil
}

func (r *MemoryRegistry) Handle(ctx context.Context, userId string) (string, bool, error) {
	r.mu.RLock()
	handle, ok := r.handles[userId]
	r.mu.RUnlock()
	return handle, ok, nil
}

func (r *MemoryRegistry) Clear(ctx context.Context, userId, handle string) error {
	r.mu.Lock()
	if r.handles[userId] == handle {
		delete(r.handles, userId)
	}
	r.mu.Unlock()
	return nil
}

func (r *MemoryRegistry) OnlineUserIds(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.handles))
	for userId := range r.handles {
		ids = append(ids, userId)
	}
	return ids, nil
}
