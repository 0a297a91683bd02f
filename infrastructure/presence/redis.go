package presence

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const onlineUsersKey = "online_users"

// clearScript deletes the user's field only while it still holds the
// disconnecting connection's handle. The compare and the delete must be
// one atomic step, otherwise a reconnect racing the old connection's
// disconnect could lose the new entry.
var clearScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], ARGV[1]) == ARGV[2] then
	return redis.call('HDEL', KEYS[1], ARGV[1])
end
return 0
`)

// RedisRegistry keeps the presence map in a single Redis hash mapping
// userId to connection handle.
type RedisRegistry struct {
	client *redis.Client
}

func NewRedisRegistry(client *redis.Client) *RedisRegistry {
	return &RedisRegistry{client: client}
}

func (r *RedisRegistry) SetOnline(ctx context.Context, userId, handle string) error {
	return r.client.HSet(ctx, onlineUsersKey, userId, handle).Err()
}

func (r *RedisRegistry) Handle(ctx context.Context, userId string) (string, bool, error) {
	handle, err := r.client.HGet(ctx, onlineUsersKey, userId).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return handle, true, nil
}

func (r *RedisRegistry) Clear(ctx context.Context, userId, handle string) error {
	return clearScript.Run(ctx, r.client, []string{onlineUsersKey}, userId, handle).Err()
}

func (r *RedisRegistry) OnlineUserIds(ctx context.Context) ([]string, error) {
	return r.client.HKeys(ctx, onlineUsersKey).Result()
}
