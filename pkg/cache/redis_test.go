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
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisStore_SetGet(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t)

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "k", []byte(`{"a":1}`), time.Minute, []string{"posts-zh"}))

	v, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"a":1}`, string(v))
	assert.NoError(t, store.Ping(ctx))
}

func TestRedisStore_TTL(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	require.NoError(t, store.Set(ctx, "k", []byte(`1`), 5*time.Second, nil))
	mr.FastForward(6 * time.Second)

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_Invalidate(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	require.NoError(t, store.Set(ctx, "list:zh", []byte(`1`), time.Minute, []string{"posts-zh"}))
	require.NoError(t, store.Set(ctx, "post:zh:a", []byte(`2`), time.Minute, []string{"post-zh-a", "posts-zh"}))
	require.NoError(t, store.Set(ctx, "list:en", []byte(`3`), time.Minute, []string{"posts-en"}))

	require.NoError(t, store.Invalidate(ctx, "posts-zh"))

	_, ok, _ := store.Get(ctx, "list:zh")
	assert.False(t, ok)
	_, ok, _ = store.Get(ctx, "post:zh:a")
	assert.False(t, ok)
	_, ok, _ = store.Get(ctx, "list:en")
	assert.True(t, ok)
	assert.False(t, mr.Exists(PrefixTag+"posts-zh"))
}

func TestFetch_WithRedis(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t)
	calls := 0

	for i := 0; i < 2; i++ {
		got, err := Fetch(ctx, store, "k", time.Minute, []string{"t"}, countingLoader(&calls, item{"r", 7}))
		require.NoError(t, err)
		assert.Equal(t, item{"r", 7}, got)
	}
	assert.Equal(t, 1, calls)
}
