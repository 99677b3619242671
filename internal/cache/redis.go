// Package cache provides the Redis backend for the browse cache and the
// cross-process sync lock.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "streamhub:"

// Redis wraps a go-redis client. All keys are namespaced under keyPrefix.
type Redis struct {
	client *redis.Client
}

// New parses a Redis URL (e.g. "redis://host:6379/0") and returns a
// client. Call Ping to verify the connection.
func New(rawURL string) (*Redis, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &Redis{client: redis.NewClient(opts)}, nil
}

// Ping checks the connection to Redis.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close shuts down the Redis client.
func (r *Redis) Close() error {
	return r.client.Close()
}

// GetCache returns nil, nil on a miss.
func (r *Redis) GetCache(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, cacheKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}
	return data, nil
}

// SetCache stores data under key. A non-positive ttl never expires.
func (r *Redis) SetCache(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := r.client.Set(ctx, cacheKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// ClearCache deletes every cached listing.
func (r *Redis) ClearCache(ctx context.Context) error {
	return r.delPattern(ctx, cacheKey("*"))
}

// delPattern deletes all keys matching a glob pattern.
// Uses SCAN so it is safe for production, unlike KEYS.
func (r *Redis) delPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("cache scan %s: %w", pattern, err)
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("cache del pattern %s: %w", pattern, err)
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return nil
}

func cacheKey(key string) string {
	return keyPrefix + "cache:" + key
}

func lockKey(name string) string {
	return keyPrefix + "lock:" + name
}
