package palette

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the hash holding assignments when no key is given.
const DefaultRedisKey = "forcegraph:palette"

// RedisStore keeps assignments in a Redis hash so several render workers
// agree on first-seen colors.
type RedisStore struct {
	client redis.Cmdable
	key    string
}

// NewRedisStore wraps client. An empty key uses DefaultRedisKey.
func NewRedisStore(client redis.Cmdable, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, typ string) (string, bool, error) {
	c, err := s.client.HGet(ctx, s.key, typ).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return c, true, nil
}

// SetIfAbsent implements Store using HSETNX, so concurrent writers converge
// on whichever color landed first.
func (s *RedisStore) SetIfAbsent(ctx context.Context, typ, color string) (string, error) {
	set, err := s.client.HSetNX(ctx, s.key, typ, color).Result()
	if err != nil {
		return "", err
	}
	if set {
		return color, nil
	}
	return s.client.HGet(ctx, s.key, typ).Result()
}

// Len implements Store.
func (s *RedisStore) Len(ctx context.Context) (int, error) {
	n, err := s.client.HLen(ctx, s.key).Result()
	return int(n), err
}

// All implements Store.
func (s *RedisStore) All(ctx context.Context) (map[string]string, error) {
	return s.client.HGetAll(ctx, s.key).Result()
}

// Reset implements Store.
func (s *RedisStore) Reset(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}

var _ Store = (*RedisStore)(nil)
