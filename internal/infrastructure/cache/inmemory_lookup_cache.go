package cache

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	appshared "github.com/avocado/teamhub/internal/application/shared"
	"go.uber.org/zap"
)

const (
	defaultCleanupInterval = 30 * time.Second
	defaultLookupTTL       = 5 * time.Minute
)

// InMemoryLookupCache implements LookupCache in process memory.
// It is used when Redis is disabled, so each instance keeps its own copy.
type InMemoryLookupCache struct {
	entries sync.Map // map[string]*cacheEntry
	ttl     time.Duration
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped int32

	hits   int64
	misses int64
}

// cacheEntry holds the encoded list so callers never share slices
type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

func (e *cacheEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryLookupCacheOption configures the cache
type InMemoryLookupCacheOption func(*InMemoryLookupCache)

// WithInMemoryTTL sets how long an entry stays valid
func WithInMemoryTTL(ttl time.Duration) InMemoryLookupCacheOption {
	return func(c *InMemoryLookupCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithInMemoryLogger sets the logger for the cache
func WithInMemoryLogger(logger *zap.Logger) InMemoryLookupCacheOption {
	return func(c *InMemoryLookupCache) {
		c.logger = logger
	}
}

// NewInMemoryLookupCache creates the cache and starts its cleanup goroutine
func NewInMemoryLookupCache(opts ...InMemoryLookupCacheOption) *InMemoryLookupCache {
	c := &InMemoryLookupCache{
		ttl:    defaultLookupTTL,
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.cleanupExpired()
	return c
}

// Get decodes the cached list into dest
func (c *InMemoryLookupCache) Get(ctx context.Context, name string, dest any) (bool, error) {
	if value, ok := c.entries.Load(name); ok {
		entry := value.(*cacheEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			return true, json.Unmarshal(entry.data, dest)
		}
		c.entries.Delete(name)
	}

	atomic.AddInt64(&c.misses, 1)
	c.logger.Debug("Lookup cache miss", zap.String("lookup", name))
	return false, nil
}

// Set stores the encoded value
func (c *InMemoryLookupCache) Set(ctx context.Context, name string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries.Store(name, &cacheEntry{data: data, expiresAt: time.Now().Add(c.ttl)})
	return nil
}

// Invalidate drops the named lists
func (c *InMemoryLookupCache) Invalidate(ctx context.Context, names ...string) error {
	for _, name := range names {
		c.entries.Delete(name)
	}
	c.logger.Debug("Invalidated lookup cache", zap.Strings("lookups", names))
	return nil
}

// Close stops the cleanup goroutine
func (c *InMemoryLookupCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// GetStats returns hit and miss counts
func (c *InMemoryLookupCache) GetStats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Count returns the number of stored entries, expired or not
func (c *InMemoryLookupCache) Count() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (c *InMemoryLookupCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.doCleanup()
		}
	}
}

func (c *InMemoryLookupCache) doCleanup() {
	removed := 0
	c.entries.Range(func(key, value any) bool {
		if value.(*cacheEntry).isExpired() {
			c.entries.Delete(key)
			removed++
		}
		return true
	})
	if removed > 0 {
		c.logger.Debug("Cleaned up expired lookup entries", zap.Int("removed", removed))
	}
}

var _ appshared.LookupCache = (*InMemoryLookupCache)(nil)
