package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	appshared "github.com/avocado/teamhub/internal/application/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const lookupKeyPrefix = "teamhub:lookup:"

// RedisLookupCache implements LookupCache on Redis, shared by all instances
type RedisLookupCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisLookupCache wraps an existing client. The caller owns the client.
func NewRedisLookupCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisLookupCache {
	if ttl <= 0 {
		ttl = defaultLookupTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLookupCache{client: client, ttl: ttl, logger: logger}
}

func lookupKey(name string) string {
	return lookupKeyPrefix + name
}

// Get decodes the cached list into dest
func (c *RedisLookupCache) Get(ctx context.Context, name string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, lookupKey(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("Lookup cache miss", zap.String("lookup", name))
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get lookup %q from cache: %w", name, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to decode lookup %q: %w", name, err)
	}
	return true, nil
}

// Set stores the encoded value with the configured TTL
func (c *RedisLookupCache) Set(ctx context.Context, name string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode lookup %q: %w", name, err)
	}
	if err := c.client.Set(ctx, lookupKey(name), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache lookup %q: %w", name, err)
	}
	return nil
}

// Invalidate deletes the named lists
func (c *RedisLookupCache) Invalidate(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = lookupKey(name)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate lookups: %w", err)
	}
	return nil
}

var _ appshared.LookupCache = (*RedisLookupCache)(nil)
