package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList remembers logged-out access tokens by JTI until they
// would have expired anyway.
type RevocationList interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

const defaultRevocationPrefix = "teamhub:revoked:"

// RedisRevocationList shares revocations between API instances
type RedisRevocationList struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

func NewRedisRevocationList(client redis.UniversalClient, prefix string) *RedisRevocationList {
	if prefix == "" {
		prefix = defaultRevocationPrefix
	}
	return &RedisRevocationList{client: client, prefix: prefix, now: time.Now}
}

// Revoke lets Redis drop the key at the token's own expiry
func (r *RedisRevocationList) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if !expiresAt.After(r.now()) {
		return nil
	}
	err := r.client.SetArgs(ctx, r.prefix+jti, 1, redis.SetArgs{ExpireAt: expiresAt}).Err()
	if err != nil {
		return fmt.Errorf("revoke token %s: %w", jti, err)
	}
	return nil
}

func (r *RedisRevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, r.prefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check revocation of %s: %w", jti, err)
	}
	return n > 0, nil
}

// MemoryRevocationList is the single-process fallback when Redis is off
type MemoryRevocationList struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevocationList() *MemoryRevocationList {
	return &MemoryRevocationList{expires: make(map[string]time.Time), now: time.Now}
}

// Revoke records jti and drops entries whose tokens have since expired
func (m *MemoryRevocationList) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for id, exp := range m.expires {
		if !exp.After(now) {
			delete(m.expires, id)
		}
	}
	if expiresAt.After(now) {
		m.expires[jti] = expiresAt
	}
	return nil
}

func (m *MemoryRevocationList) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	exp, ok := m.expires[jti]
	return ok && exp.After(m.now()), nil
}

// Len counts the entries still held
func (m *MemoryRevocationList) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.expires)
}

var (
	_ RevocationList = (*RedisRevocationList)(nil)
	_ RevocationList = (*MemoryRevocationList)(nil)
)
