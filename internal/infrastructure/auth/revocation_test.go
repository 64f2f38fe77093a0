package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRevocationList(t *testing.T) {
	list := NewMemoryRevocationList()
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	list.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, list.Revoke(ctx, "jti-short", now.Add(time.Minute)))
	require.NoError(t, list.Revoke(ctx, "jti-long", now.Add(time.Hour)))
	require.NoError(t, list.Revoke(ctx, "jti-past", now.Add(-time.Second)))
	assert.Equal(t, 2, list.Len(), "an already expired token is not stored")

	for jti, want := range map[string]bool{"jti-short": true, "jti-long": true, "jti-past": false, "jti-other": false} {
		revoked, err := list.IsRevoked(ctx, jti)
		require.NoError(t, err)
		assert.Equal(t, want, revoked, jti)
	}

	now = now.Add(2 * time.Minute)
	revoked, err := list.IsRevoked(ctx, "jti-short")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, list.Revoke(ctx, "jti-new", now.Add(time.Minute)))
	assert.Equal(t, 2, list.Len(), "revoking sweeps expired entries")
}

func TestMemoryRevocationList_Concurrent(t *testing.T) {
	list := NewMemoryRevocationList()
	ctx := context.Background()
	expires := time.Now().Add(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			jti := string(rune('a' + i))
			assert.NoError(t, list.Revoke(ctx, jti, expires))
			revoked, err := list.IsRevoked(ctx, jti)
			assert.NoError(t, err)
			assert.True(t, revoked)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 20, list.Len())
}

func TestRevocation_OfAnIssuedToken(t *testing.T) {
	s := NewTokenService(testJWTConfig())
	list := NewMemoryRevocationList()
	ctx := context.Background()

	pair, err := s.Issue(testSession())
	require.NoError(t, err)
	claims, err := s.ParseAccess(pair.AccessToken)
	require.NoError(t, err)

	require.NoError(t, list.Revoke(ctx, claims.ID, claims.Expiry()))
	revoked, err := list.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}
