package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/saccopay/internal/infrastructure/metrics"
	"github.com/iho/saccopay/internal/usecase"
)

// Cache implements usecase.Cache using Redis.
type Cache struct {
	client  *redis.Client
	metrics *metrics.Metrics
	prefix  string
}

// NewCache creates a new Cache. m may be nil.
func NewCache(client *redis.Client, m *metrics.Metrics) *Cache {
	return &Cache{
		client:  client,
		metrics: m,
		prefix:  "cache:",
	}
}

// Get retrieves a value by key. A missing key returns usecase.ErrCacheMiss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		observe(c.metrics, "cache_get", nil)
		return nil, usecase.ErrCacheMiss
	}
	observe(c.metrics, "cache_get", err)
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Set stores a value with TTL.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := c.client.Set(ctx, c.prefix+key, value, ttl).Err()
	observe(c.metrics, "cache_set", err)
	return err
}

// Delete removes a key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	err := c.client.Del(ctx, c.prefix+key).Err()
	observe(c.metrics, "cache_delete", err)
	return err
}
