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

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStoreFromClient(client, "test:")
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

// storeContract проверяет поведение, общее для всех реализаций
func storeContract(t *testing.T, s Store, advance func(time.Duration)) {
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, s.Set(ctx, "k", "v", time.Minute))
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	ok, err := s.SetNX(ctx, "k", "other", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.SetNX(ctx, "fresh", "1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Set(ctx, "counter", "0", time.Minute))
	n, err := s.Incr(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = s.Incr(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, s.Delete(ctx, "k", "fresh"))
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)

	advance(2 * time.Minute)
	_, err = s.Get(ctx, "counter")
	assert.ErrorIs(t, err, ErrCacheMiss, "incr must keep the original ttl")

	assert.NoError(t, s.Ping(ctx))
}

func TestRedisStore(t *testing.T) {
	store, mr := newRedisStore(t)
	storeContract(t, store, mr.FastForward)

	require.NoError(t, store.Set(context.Background(), "prefixed", "x", 0))
	assert.True(t, mr.Exists("test:prefixed"))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	storeContract(t, store, func(d time.Duration) { now = now.Add(d) })
}

func TestJSONHelpers(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	type stats struct {
		Users int `json:"users"`
	}
	require.NoError(t, SetJSON(ctx, store, "stats", stats{Users: 42}, time.Minute))

	var got stats
	require.NoError(t, GetJSON(ctx, store, "stats", &got))
	assert.Equal(t, 42, got.Users)

	assert.ErrorIs(t, GetJSON(ctx, store, "nope", &got), ErrCacheMiss)
}

func TestNewRedisStore_InvalidURL(t *testing.T) {
	_, err := NewRedisStore("not a url", "")
	assert.Error(t, err)
}
