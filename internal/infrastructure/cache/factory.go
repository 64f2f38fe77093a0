package cache

import (
	"context"
	"fmt"
	"sync"

	appshared "github.com/avocado/teamhub/internal/application/shared"
	"github.com/avocado/teamhub/internal/domain/shared"
	"github.com/avocado/teamhub/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Factory builds the Redis-backed components from configuration and owns
// the single client they share. With Redis disabled or unreachable it falls
// back to in-memory implementations.
type Factory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool

	once      sync.Once
	client    *redis.Client
	clientErr error
	closers   []func() error
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to
// in-memory stores. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new factory
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Client returns the shared client, connecting on first use
func (f *Factory) Client() (*redis.Client, error) {
	if !f.redisConfig.Enabled {
		return nil, fmt.Errorf("redis is disabled")
	}
	f.once.Do(func() {
		f.client, f.clientErr = NewRedisClient(f.redisConfig)
		if f.clientErr == nil {
			f.closers = append(f.closers, f.client.Close)
		}
	})
	return f.client, f.clientErr
}

// LookupCache returns the Redis lookup cache or an in-memory one
func (f *Factory) LookupCache() (appshared.LookupCache, error) {
	client, err := f.Client()
	if err == nil {
		f.logger.Info("using Redis lookup cache", zap.Duration("ttl", f.redisConfig.LookupTTL))
		return NewRedisLookupCache(client, f.redisConfig.LookupTTL, f.logger), nil
	}
	if f.redisConfig.Enabled && !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for lookup cache but unavailable: %w", err)
	}

	if f.redisConfig.Enabled {
		f.logger.Warn("Redis unavailable, falling back to in-memory lookup cache", zap.Error(err))
	}
	c := NewInMemoryLookupCache(WithInMemoryTTL(f.redisConfig.LookupTTL), WithInMemoryLogger(f.logger))
	f.closers = append(f.closers, c.Close)
	return c, nil
}

// IdempotencyStore returns the Redis idempotency store or an in-memory one.
// In-memory stores do not share state across instances, so a multi-instance
// deployment may run a handler twice for the same event.
func (f *Factory) IdempotencyStore() (shared.IdempotencyStore, error) {
	client, err := f.Client()
	if err == nil {
		f.logger.Info("using Redis idempotency store")
		return NewRedisIdempotencyStoreWithClient(client, ""), nil
	}
	if f.redisConfig.Enabled && !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for idempotency but unavailable: %w", err)
	}

	if f.redisConfig.Enabled {
		f.logger.Warn("Redis unavailable, falling back to in-memory idempotency store", zap.Error(err))
	}
	store := NewInMemoryIdempotencyStore()
	f.closers = append(f.closers, store.Close)
	return store, nil
}

// Ping checks Redis for the health endpoint; it is a no-op when Redis is off
func (f *Factory) Ping(ctx context.Context) error {
	if !f.redisConfig.Enabled {
		return nil
	}
	client, err := f.Client()
	if err != nil {
		return err
	}
	return client.Ping(ctx).Err()
}

// Close releases everything the factory created
func (f *Factory) Close() error {
	var firstErr error
	for i := len(f.closers) - 1; i >= 0; i-- {
		if err := f.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.closers = nil
	return firstErr
}
