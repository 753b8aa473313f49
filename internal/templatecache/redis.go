package templatecache

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"
)

// RedisKV implements KV on a Redis client. Templates have no expiry; a new
// submission simply overwrites the previous shape.
type RedisKV struct {
	client *redis.Client
}

// NewRedisKV constructs a RedisKV.
func NewRedisKV(client *redis.Client) *RedisKV {
	return &RedisKV{client: client}
}

// Get fetches the raw value stored under key.
func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return value, err
}

// Set stores value under key.
func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value, 0).Err()
}
