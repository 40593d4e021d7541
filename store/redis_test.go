package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/upsell/core"
)

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	rs, err := NewRedisStore(ctx, RedisOptions{Addr: mr.Addr()})
	require.NoError(t, err)
	defer rs.Close()
	assert.Equal(t, "redis", rs.Name())

	_, err = rs.Get(ctx, "missing")
	assert.True(t, core.IsStoreNotFound(err))

	require.NoError(t, rs.Set(ctx, "k", []byte("v"), 60))
	got, err := rs.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
	assert.Equal(t, 60*time.Second, mr.TTL("k"))

	mr.FastForward(61 * time.Second)
	_, err = rs.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, rs.Set(ctx, "k2", []byte("v")))
	require.NoError(t, rs.Delete(ctx, "k2"))
	assert.False(t, mr.Exists("k2"))
}

func TestNewRedisStore_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisStore(context.Background(), RedisOptions{Addr: addr})
	require.Error(t, err)
	assert.True(t, core.IsUnavailable(err))
}
