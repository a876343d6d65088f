package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis key prefix for rate limit counters.
const counterKeyPrefix = "hampuff:rl:"

// RedisCounterStore is a Redis-backed implementation of
// ratelimit.CounterStore for deployments running more than one instance.
// INCR is atomic on the server, so concurrent checks for the same key
// serialize there.
type RedisCounterStore struct {
	client *redis.Client
}

// NewRedisCounterStore constructs a Redis-backed counter store.
func NewRedisCounterStore(client *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{client: client}
}

func (s *RedisCounterStore) Incr(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	k := counterKeyPrefix + key

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	// NX only arms the expiry on the first increment of a window, which is
	// what makes the window fixed rather than sliding.
	pipe.ExpireNX(ctx, k, window)
	ttl := pipe.TTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit incr: %w", err)
	}

	remaining := ttl.Val()
	if remaining < 0 {
		remaining = window
	}
	return int(incr.Val()), time.Now().Add(remaining), nil
}

func (s *RedisCounterStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, counterKeyPrefix+key).Err()
}
