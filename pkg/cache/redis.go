package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/heynickashwin-oss/viashift/pkg/observability"
)

// RedisCache backs the cache with a Redis instance, for deployments
// where several render workers share one geometry cache.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to Redis using a URL of the form
// redis://[user:pass@]host:port/db and verifies the connection.
func NewRedisCache(ctx context.Context, url string) (Cache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: connecting to redis: %v", ErrNetwork, err)
	}
	return &RedisCache{client: client}, nil
}

// Get retrieves a value, retrying transient connectivity failures.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := RetryWithBackoff(ctx, func() error {
		b, err := c.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			data = nil
			return nil
		}
		if err != nil {
			return Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
		}
		data = b
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if data == nil {
		observability.Cache().OnCacheMiss(key)
		return nil, false, nil
	}
	observability.Cache().OnCacheHit(key)
	return data, true, nil
}

// Set stores a value. A ttl of zero stores it without expiration.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := RetryWithBackoff(ctx, func() error {
		if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
			return Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
		}
		return nil
	})
	if err != nil {
		return err
	}
	observability.Cache().OnCacheSet(key, len(data))
	return nil
}

// Delete removes a value.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// Close closes the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

var _ Cache = (*RedisCache)(nil)
