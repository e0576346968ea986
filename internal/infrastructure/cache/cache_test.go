package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return srv, client
}

type stats struct {
	Difficulty string  `json:"_id"`
	AvgPrice   float64 `json:"avgPrice"`
}

func TestStore_SetGet(t *testing.T) {
	// Arrange
	srv, client := newTestClient(t)
	store := NewStore(client, "tours")
	ctx := context.Background()

	// Act
	require.NoError(t, store.Set(ctx, "stats", []stats{{Difficulty: "EASY", AvgPrice: 1272}}, time.Minute))

	var got []stats
	found, err := store.Get(ctx, "stats", &got)

	// Assert
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []stats{{Difficulty: "EASY", AvgPrice: 1272}}, got)
	assert.True(t, srv.Exists("tours:stats"))
	assert.Equal(t, time.Minute, srv.TTL("tours:stats"))
}

func TestStore_GetMiss(t *testing.T) {
	_, client := newTestClient(t)
	store := NewStore(client, "tours")

	var got []stats
	found, err := store.Get(context.Background(), "missing", &got)

	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
}

func TestStore_Delete(t *testing.T) {
	srv, client := newTestClient(t)
	store := NewStore(client, "tours")
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "stats", 1, 0))
	require.NoError(t, store.Set(ctx, "plan:2021", 2, 0))

	require.NoError(t, store.Delete(ctx, "stats", "plan:2021"))

	assert.False(t, srv.Exists("tours:stats"))
	assert.False(t, srv.Exists("tours:plan:2021"))
	assert.NoError(t, store.Delete(ctx))
}

func TestStore_GetCorruptValue(t *testing.T) {
	srv, client := newTestClient(t)
	store := NewStore(client, "")
	require.NoError(t, srv.Set("stats", "{not json"))

	var got []stats
	_, err := store.Get(context.Background(), "stats", &got)

	assert.Error(t, err)
}

func TestRateLimiter_Allow(t *testing.T) {
	// Arrange
	srv, client := newTestClient(t)
	limiter := NewRateLimiter(client, "ratelimit")
	ctx := context.Background()

	// Act & Assert
	for i := int64(1); i <= 3; i++ {
		allowed, remaining, err := limiter.Allow(ctx, "127.0.0.1", 3, time.Hour)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, 3-i, remaining)
	}

	allowed, remaining, err := limiter.Allow(ctx, "127.0.0.1", 3, time.Hour)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Zero(t, remaining)
	assert.Equal(t, time.Hour, srv.TTL("ratelimit:127.0.0.1"))

	allowed, _, err = limiter.Allow(ctx, "10.0.0.1", 3, time.Hour)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimiter_WindowExpires(t *testing.T) {
	srv, client := newTestClient(t)
	limiter := NewRateLimiter(client, "ratelimit")
	ctx := context.Background()

	allowed, _, err := limiter.Allow(ctx, "ip", 1, time.Minute)
	require.NoError(t, err)
	require.True(t, allowed)
	allowed, _, _ = limiter.Allow(ctx, "ip", 1, time.Minute)
	require.False(t, allowed)

	srv.FastForward(time.Minute + time.Second)

	allowed, _, err = limiter.Allow(ctx, "ip", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimiter_Reset(t *testing.T) {
	_, client := newTestClient(t)
	limiter := NewRateLimiter(client, "ratelimit")
	ctx := context.Background()

	_, _, _ = limiter.Allow(ctx, "ip", 1, time.Minute)
	require.NoError(t, limiter.Reset(ctx, "ip"))

	allowed, _, err := limiter.Allow(ctx, "ip", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}
