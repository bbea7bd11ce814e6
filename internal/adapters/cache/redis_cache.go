// Package cache provides the Redis-backed response cache for the dashboard
// API, plus a no-op stand-in used when no cache address is configured.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sfc-gh-aneel/streaming-demo/internal/ports"
)

// Redis memoizes serialized responses in a Redis instance. Values expire on
// their own; the adapter never deletes keys explicitly.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to the given Redis address and verifies the connection
// with a ping before returning.
func NewRedis(ctx context.Context, addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return &Redis{client: client}, nil
}

// Get returns the cached value for key, or a miss when the key is absent.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}
	return val, true, nil
}

// Set stores value under key for the given TTL.
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

// Noop is the cache used when no Redis address is configured. Every lookup
// misses, so handlers always hit the warehouse.
type Noop struct{}

func (Noop) Get(ctx context.Context, key string) ([]byte, bool, error) { return nil, false, nil }

func (Noop) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

func (Noop) Close() error { return nil }

var (
	_ ports.Cache = (*Redis)(nil)
	_ ports.Cache = Noop{}
)
