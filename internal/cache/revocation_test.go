package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevokeToken(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := NewClient("redis://" + mr.Addr())
	require.NoError(t, err)
	defer rdb.Close()

	ctx := context.Background()

	revoked, err := IsTokenRevoked(ctx, rdb, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, RevokeToken(ctx, rdb, "abc", time.Now().Add(time.Hour)))
	revoked, err = RevocationChecker(rdb)(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.True(t, mr.TTL("blacklist:abc") > 0)

	mr.FastForward(2 * time.Hour)
	revoked, err = IsTokenRevoked(ctx, rdb, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, RevokeToken(ctx, rdb, "expired", time.Now().Add(-time.Minute)))
	assert.False(t, mr.Exists("blacklist:expired"))
}

func TestRevocation_WithoutRedis(t *testing.T) {
	ctx := context.Background()
	assert.ErrorIs(t, RevokeToken(ctx, nil, "abc", time.Now().Add(time.Hour)), ErrNoRedis)

	revoked, err := IsTokenRevoked(ctx, nil, "abc")
	assert.NoError(t, err)
	assert.False(t, revoked)
}

func TestInitRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	InitRedis(mr.Addr())
	require.NotNil(t, GetClient())
	_ = GetClient().Close()

	InitRedis("")
	assert.Nil(t, GetClient())

	InitRedis("redis://%%bad")
	assert.Nil(t, GetClient())
}
