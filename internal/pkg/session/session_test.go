package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryRevoker(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryRevoker()

	revoked, err := m.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, m.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))
	revoked, err = m.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)
}

func TestMemoryRevokerForgetsExpired(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryRevoker()
	require.NoError(t, m.Revoke(ctx, "old", time.Now().Add(time.Minute)))

	m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	revoked, err := m.IsRevoked(ctx, "old")
	require.NoError(t, err)
	require.False(t, revoked)
	require.Empty(t, m.revoked)
}
