package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestCache(t *testing.T) *RedisCache {
	t.Helper()
	srv := miniredis.RunT(t)

	cache, err := NewRedisCache("redis://" + srv.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })

	return cache
}

func TestSubscribePublishRoundTrip(t *testing.T) {
	cache := setupTestCache(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, cleanup, err := cache.Subscribe(ctx, "live_class_chat:1")
	require.NoError(t, err)
	defer cleanup()

	require.NoError(t, cache.Publish(ctx, "live_class_chat:1", []byte(`{"id":1}`)))

	select {
	case payload, ok := <-ch:
		require.True(t, ok)
		assert.Equal(t, `{"id":1}`, string(payload))
	case <-time.After(2 * time.Second):
		t.Fatal("published message not delivered")
	}
}

func TestSubscribeClosesChannelOnContextCancel(t *testing.T) {
	cache := setupTestCache(t)

	ctx, cancel := context.WithCancel(context.Background())
	ch, cleanup, err := cache.Subscribe(ctx, "live_class_chat:2")
	require.NoError(t, err)
	defer cleanup()

	// Cancel while the subscription is idle: no message is in flight, so the
	// channel must close through the subscription teardown alone.
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel must close without delivering")
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after context cancel")
	}
}

func TestSubscribeClosesChannelOnCleanup(t *testing.T) {
	cache := setupTestCache(t)

	ch, cleanup, err := cache.Subscribe(context.Background(), "live_class_chat:3")
	require.NoError(t, err)

	cleanup()
	cleanup() // safe to call twice

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel must close after cleanup")
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cleanup")
	}
}

func TestCounterOperations(t *testing.T) {
	cache := setupTestCache(t)
	ctx := context.Background()

	n, err := cache.Increment(ctx, "attempts")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = cache.Increment(ctx, "attempts")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, cache.Expire(ctx, "attempts", time.Minute))
	ttl, err := cache.TTL(ctx, "attempts")
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	exists, err := cache.Exists(ctx, "attempts")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, cache.Delete(ctx, "attempts"))
	exists, err = cache.Exists(ctx, "attempts")
	require.NoError(t, err)
	assert.False(t, exists)
}
