package summary

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/julianstephens/neurozen/internal/logger"
)

// releaseScript deletes the key only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker implements Locker with SET NX PX.
type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

// NewRedisClient connects to addr and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func (l *RedisLocker) Lock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	token := uuid.New().String()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil || !ok {
		return nil, false, err
	}

	unlock := func() {
		if err := releaseScript.Run(context.Background(), l.client, []string{key}, token).Err(); err != nil {
			logger.Warn("Failed to release summary lock", "key", key, "error", err)
		}
	}
	return unlock, true, nil
}
