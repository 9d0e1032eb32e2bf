package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewRedisCache(RedisConfig{Addr: mr.Addr()})
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCacheSetGetDelete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	_, err := c.Get(ctx, "products:all")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(ctx, "products:all", []byte(`[{"name":"Fullface"}]`), time.Minute))
	val, err := c.Get(ctx, "products:all")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"Fullface"}]`, string(val))

	require.NoError(t, c.Delete(ctx, "products:all"))
	_, err = c.Get(ctx, "products:all")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisCacheExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "products:all", []byte("[]"), 60*time.Second))
	assert.Equal(t, 60*time.Second, mr.TTL("products:all"))

	mr.FastForward(61 * time.Second)
	_, err := c.Get(ctx, "products:all")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisCacheUnavailable(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	_, err := c.Get(context.Background(), "products:all")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
	assert.Error(t, c.Ping(context.Background()))
}

func TestNoopCache(t *testing.T) {
	var c Cache = Noop{}
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
	assert.NoError(t, c.Delete(ctx, "k"))
}
