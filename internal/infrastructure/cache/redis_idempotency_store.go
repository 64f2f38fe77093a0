package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/avocado/teamhub/internal/domain/shared"
	"github.com/avocado/teamhub/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

const defaultIdempotencyPrefix = "teamhub:event:idempotency:"

// RedisIdempotencyStore keeps processed event ids in Redis so every server
// instance sees the same marks.
type RedisIdempotencyStore struct {
	client     *redis.Client
	keyPrefix  string
	ownsClient bool
}

// NewRedisIdempotencyStore connects to Redis and owns the client
func NewRedisIdempotencyStore(cfg config.RedisConfig) (*RedisIdempotencyStore, error) {
	client, err := NewRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	store := NewRedisIdempotencyStoreWithClient(client, "")
	store.ownsClient = true
	return store, nil
}

// NewRedisIdempotencyStoreWithClient shares a client owned by the caller
func NewRedisIdempotencyStoreWithClient(client *redis.Client, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = defaultIdempotencyPrefix
	}
	return &RedisIdempotencyStore{client: client, keyPrefix: keyPrefix}
}

// MarkProcessed sets the mark with SETNX, so only one caller wins
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	set, err := s.client.SetNX(ctx, s.keyPrefix+eventID, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark event %s: %w", eventID, err)
	}
	return set, nil
}

// Release deletes the mark
func (s *RedisIdempotencyStore) Release(ctx context.Context, eventID string) error {
	if err := s.client.Del(ctx, s.keyPrefix+eventID).Err(); err != nil {
		return fmt.Errorf("release event %s: %w", eventID, err)
	}
	return nil
}

// Close closes the client when the store created it
func (s *RedisIdempotencyStore) Close() error {
	if !s.ownsClient {
		return nil
	}
	return s.client.Close()
}

var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
