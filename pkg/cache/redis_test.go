package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T, opts ...RedisOption) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	c := NewRedisCacheFromClient(backend.NewClient(&backend.Options{Addr: mr.Addr()}), opts...)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	require.NoError(t, c.Ping(ctx))

	_, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "k", []byte("payload"), 0))
	assert.True(t, mr.Exists("mealyetf:k"), "key should carry the default prefix")

	data, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "payload", string(data))

	require.NoError(t, c.Delete(ctx, "k"))
	_, hit, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisCacheTTL(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("mealyetf:k"))

	mr.FastForward(2 * time.Minute)
	_, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, hit, "entry should expire")
}

func TestRedisCachePrefixAndClear(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t, WithRedisPrefix("test:"))

	require.NoError(t, mr.Set("other", "keep"))
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, c.Set(ctx, k, []byte(k), 0))
	}
	assert.True(t, mr.Exists("test:a"))

	require.NoError(t, c.Clear(ctx))
	assert.False(t, mr.Exists("test:a"))
	assert.False(t, mr.Exists("test:c"))
	assert.True(t, mr.Exists("other"), "Clear must not touch keys outside the prefix")
}

func TestRedisCacheServerDown(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	c := NewRedisCache(addr, "", 0)
	defer c.Close()

	_, _, err = c.Get(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, c.Ping(ctx))
}
