package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewRedisCache(client)

	cleanup := func() {
		client.Close()
		mr.Close()
	}
	return cache, mr, cleanup
}

func TestRedisCache_GetMiss(t *testing.T) {
	cache, _, cleanup := setupTestCache(t)
	defer cleanup()

	data, err := cache.Get(context.Background(), "catalog:product:missing")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, data)
}

func TestRedisCache_SetGet(t *testing.T) {
	cache, _, cleanup := setupTestCache(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "catalog:product:tee", []byte(`{"handle":"tee"}`)))

	data, err := cache.Get(ctx, "catalog:product:tee")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"handle":"tee"}`), data)
}

func TestRedisCache_SetWithTTL(t *testing.T) {
	cache, mr, cleanup := setupTestCache(t)
	defer cleanup()

	require.NoError(t, cache.Set(context.Background(), "catalog:product:tee", []byte("x")))

	ttl := mr.TTL("catalog:product:tee")
	assert.True(t, ttl >= 15*time.Minute, "TTL should be at least base TTL")
	assert.True(t, ttl <= 20*time.Minute, "TTL should be base + max jitter")
}

func TestRedisCache_DeleteByPrefix(t *testing.T) {
	cache, mr, cleanup := setupTestCache(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "catalog:product:tee", []byte("a")))
	require.NoError(t, cache.Set(ctx, "catalog:product:hoodie", []byte("b")))
	require.NoError(t, cache.Set(ctx, "catalog:collections:10", []byte("c")))

	require.NoError(t, cache.DeleteByPrefix(ctx, "catalog:product:"))

	assert.False(t, mr.Exists("catalog:product:tee"))
	assert.False(t, mr.Exists("catalog:product:hoodie"))
	assert.True(t, mr.Exists("catalog:collections:10"))
}

func TestRedisCache_DeleteByPrefix_NoMatches(t *testing.T) {
	cache, _, cleanup := setupTestCache(t)
	defer cleanup()

	err := cache.DeleteByPrefix(context.Background(), "catalog:search:")
	assert.NoError(t, err)
}
