package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	SetClient(rdb)
	t.Cleanup(func() {
		SetClient(nil)
		_ = rdb.Close()
	})
	return mr
}

type cachedThing struct {
	Name string `json:"name"`
}

func TestAside_MissThenHit(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *cachedThing) func() error {
		return func() error {
			calls++
			dest.Name = "from-db"
			return nil
		}
	}

	var first cachedThing
	require.NoError(t, Aside(ctx, "thing:1", &first, time.Minute, fetch(&first)))
	assert.Equal(t, "from-db", first.Name)
	assert.True(t, mr.Exists("thing:1"))

	var second cachedThing
	require.NoError(t, Aside(ctx, "thing:1", &second, time.Minute, fetch(&second)))
	assert.Equal(t, "from-db", second.Name)
	assert.Equal(t, 1, calls)
}

func TestAside_FetchErrorIsNotCached(t *testing.T) {
	mr := setupMiniredis(t)

	var dest cachedThing
	err := Aside(context.Background(), "thing:2", &dest, time.Minute, func() error {
		return errors.New("db down")
	})
	assert.Error(t, err)
	assert.False(t, mr.Exists("thing:2"))
}

func TestAside_WithoutRedisAlwaysFetches(t *testing.T) {
	SetClient(nil)
	calls := 0
	var dest cachedThing
	for i := 0; i < 2; i++ {
		require.NoError(t, Aside(context.Background(), "thing:3", &dest, time.Minute, func() error {
			calls++
			return nil
		}))
	}
	assert.Equal(t, 2, calls)
}

func TestAside_CorruptEntryFallsBackToFetch(t *testing.T) {
	mr := setupMiniredis(t)
	require.NoError(t, mr.Set("thing:4", "{not json"))

	var dest cachedThing
	require.NoError(t, Aside(context.Background(), "thing:4", &dest, time.Minute, func() error {
		dest.Name = "fresh"
		return nil
	}))
	assert.Equal(t, "fresh", dest.Name)
}

func TestInvalidatePosts(t *testing.T) {
	mr := setupMiniredis(t)
	require.NoError(t, mr.Set(PostsListKey, "[]"))
	require.NoError(t, mr.Set(UserKey(3), "{}"))

	InvalidatePosts(context.Background())
	InvalidateUser(context.Background(), 3)

	assert.False(t, mr.Exists(PostsListKey))
	assert.False(t, mr.Exists("user:3"))
}

func TestTokenBlacklist(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	bl := NewTokenBlacklist(rdb)
	ctx := context.Background()

	revoked, err := bl.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, bl.Revoke(ctx, "abc", time.Hour))
	revoked, err = bl.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Equal(t, time.Hour, mr.TTL("blacklist:abc"))

	mr.FastForward(2 * time.Hour)
	revoked, err = bl.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestTokenBlacklist_NilClient(t *testing.T) {
	bl := NewTokenBlacklist(nil)
	assert.NoError(t, bl.Revoke(context.Background(), "abc", time.Hour))
	revoked, err := bl.IsRevoked(context.Background(), "abc")
	assert.NoError(t, err)
	assert.False(t, revoked)
}
