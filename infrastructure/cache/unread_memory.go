package cache

import (
	"context"
	"strings"
)

// MemoryUnreadCounter is the single-process UnreadCounter, backed by
// MemCache. Used when no Redis address is configured, and by tests.
type MemoryUnreadCounter struct {
	cache *MemCache
}

func NewMemoryUnreadCounter() *MemoryUnreadCounter {
	return &MemoryUnreadCounter{cache: NewMemCache(0)}
}

func memUnreadKey(userId, chatId string) string {
	return "unread:" + userId + ":" + chatId
}

func (c *MemoryUnreadCounter) Increment(ctx context.Context, userId, chatId string) error {
	c.cache.Increment(memUnreadKey(userId, chatId), 1)
	return nil
}

func (c *MemoryUnreadCounter) Clear(ctx context.Context, userId, chatId string) error {
	c.cache.Delete(memUnreadKey(userId, chatId))
	return nil
}

func (c *MemoryUnreadCounter) Get(ctx context.Context, userId, chatId string) (int64, bool, error) {
	count, ok := c.cache.Get(memUnreadKey(userId, chatId))
	if !ok {
		return 0, false, nil
	}
	if count < 0 {
		count = 0
	}
	return count, true, nil
}

func (c *MemoryUnreadCounter) Set(ctx context.Context, userId, chatId string, count int64) error {
	c.cache.Set(memUnreadKey(userId, chatId), count, 0)
	return nil
}

func (c *MemoryUnreadCounter) ClearUser(ctx context.Context, userId string) error {
	prefix := "unread:" + userId + ":"
	for _, key := range c.cache.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.cache.Delete(key)
		}
	}
	return nil
}
