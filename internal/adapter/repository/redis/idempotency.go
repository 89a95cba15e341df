package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/saccopay/internal/infrastructure/metrics"
	"github.com/iho/saccopay/internal/usecase"
)

// ProcessingMarker is stored under a key while its first request is in flight.
const ProcessingMarker = usecase.IdempotencyInProgress

// IdempotencyStore implements usecase.IdempotencyStore using Redis.
type IdempotencyStore struct {
	client  *redis.Client
	metrics *metrics.Metrics
	prefix  string
}

// NewIdempotencyStore creates a new IdempotencyStore. m may be nil.
func NewIdempotencyStore(client *redis.Client, m *metrics.Metrics) *IdempotencyStore {
	return &IdempotencyStore{
		client:  client,
		metrics: m,
		prefix:  "idempotency:",
	}
}

// CheckAndSet claims key for the caller. When the key is already taken it
// reports true together with the stored response or ProcessingMarker.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	fullKey := s.prefix + key

	value := []byte(ProcessingMarker)
	if response != nil {
		value = response
	}

	set, err := s.client.SetNX(ctx, fullKey, value, ttl).Result()
	observe(s.metrics, "idempotency_claim", err)
	if err != nil {
		return false, nil, err
	}
	if set {
		return false, nil, nil
	}

	// Another request got there first
	existing, err := s.client.Get(ctx, fullKey).Bytes()
	if errors.Is(err, redis.Nil) {
		// Released between SETNX and GET; treat as still in flight.
		return true, []byte(ProcessingMarker), nil
	}
	observe(s.metrics, "idempotency_get", err)
	if err != nil {
		return false, nil, err
	}

	return true, existing, nil
}

// Update stores the final response for key.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	err := s.client.Set(ctx, s.prefix+key, response, ttl).Err()
	observe(s.metrics, "idempotency_update", err)
	return err
}

// Release removes key so a failed request can be retried with it.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	err := s.client.Del(ctx, s.prefix+key).Err()
	observe(s.metrics, "idempotency_release", err)
	return err
}
