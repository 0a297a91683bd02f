package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// UnreadCounter is the fast path for per-(user, chat) unread counts. It is
// a performance cache over the durable store, never the source of truth:
// an absent entry means the caller must count from the store and Set the
// result back (cache-aside).
type UnreadCounter interface {
	Increment(ctx context.Context, userId, chatId string) error
	Clear(ctx context.Context, userId, chatId string) error
	// Get returns the cached count and whether an entry exists.
	Get(ctx context.Context, userId, chatId string) (int64, bool, error)
	// Set repopulates the entry after a durable fallback count.
	Set(ctx context.Context, userId, chatId string, count int64) error
	// ClearUser drops every entry for a user (used when a chat is deleted).
	ClearUser(ctx context.Context, userId string) error
}

// RedisUnreadCounter stores counts in one hash per user, keyed
// unread:<userId> with chat ids as fields. HINCRBY keeps increments
// atomic across connection handlers.
type RedisUnreadCounter struct {
	client *redis.Client
}

func NewRedisUnreadCounter(client *redis.Client) *RedisUnreadCounter {
	return &RedisUnreadCounter{client: client}
}

func unreadKey(userId string) string {
	return "unread:" + userId
}

func (c *RedisUnreadCounter) Increment(ctx context.Context, userId, chatId string) error {
	return c.client.HIncrBy(ctx, unreadKey(userId), chatId, 1).Err()
}

func (c *RedisUnreadCounter) Clear(ctx context.Context, userId, chatId string) error {
	return c.client.HDel(ctx, unreadKey(userId), chatId).Err()
}

func (c *RedisUnreadCounter) Get(ctx context.Context, userId, chatId string) (int64, bool, error) {
	count, err := c.client.HGet(ctx, unreadKey(userId), chatId).Int64()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if count < 0 {
		count = 0
	}
	return count, true, nil
}

func (c *RedisUnreadCounter) Set(ctx context.Context, userId, chatId string, count int64) error {
	return c.client.HSet(ctx, unreadKey(userId), chatId, count).Err()
}

func (c *RedisUnreadCounter) ClearUser(ctx context.Context, userId string) error {
	return c.client.Del(ctx, unreadKey(userId)).Err()
}
