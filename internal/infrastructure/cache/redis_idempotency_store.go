package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/distribo/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

// RedisIdempotencyStore is the fast-path idempotency check backed by
// Redis. It fronts the durable idempotency_keys table: a hit here short
// circuits a retried request before it opens a database transaction,
// a miss falls through to the table. Suitable for multi-instance
// deployments where the seen-key set must be shared.
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisIdempotencyStore creates a Redis-backed store and verifies
// the connection before returning
func NewRedisIdempotencyStore(client *redis.Client, keyPrefix string) (*RedisIdempotencyStore, error) {
	if keyPrefix == "" {
		keyPrefix = "idempotency:"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisIdempotencyStore{
		client:    client,
		keyPrefix: keyPrefix,
	}, nil
}

// MarkProcessed marks a key as processed with a TTL.
// SETNX makes the check-and-set atomic across instances: exactly one
// caller gets true for a given key within the TTL window.
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	newlyMarked, err := s.client.SetNX(ctx, s.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark idempotency key: %w", err)
	}
	return newlyMarked, nil
}

// IsProcessed checks if a key has already been processed
func (s *RedisIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	count, err := s.client.Exists(ctx, s.keyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check idempotency key: %w", err)
	}
	return count > 0, nil
}

// Close closes the underlying Redis client
func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}

// Ensure RedisIdempotencyStore implements IdempotencyStore
var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
