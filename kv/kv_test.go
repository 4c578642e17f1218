package kv

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return New(Options{Addr: mr.Addr()}), mr
}

func TestSetGet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	err := store.Set(ctx, "query:abc", []byte(`{"hits":1}`), 30*time.Second)
	require.NoError(t, err)

	data, err := store.Get(ctx, "query:abc")
	require.NoError(t, err)
	assert.Equal(t, `{"hits":1}`, string(data))
}

func TestGetMissingReturnsErrNotFound(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTTLExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "query:expiring", []byte("v"), time.Second))
	mr.FastForward(2 * time.Second)

	_, err := store.Get(ctx, "query:expiring")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetOperations(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SAdd(ctx, "appts:all", "appt-1"))
	require.NoError(t, store.SAdd(ctx, "appts:all", "appt-2"))

	members, err := store.SMembers(ctx, "appts:all")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"appt-1", "appt-2"}, members)

	require.NoError(t, store.SRem(ctx, "appts:all", "appt-1"))
	members, err = store.SMembers(ctx, "appts:all")
	require.NoError(t, err)
	assert.Equal(t, []string{"appt-2"}, members)
}

func TestFlushNamespaceOnlyTouchesPrefix(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "query:a", []byte("1"), time.Minute))
	require.NoError(t, store.Set(ctx, "query:b", []byte("2"), time.Minute))
	require.NoError(t, store.Set(ctx, "knowledge:a", []byte("3"), time.Minute))

	require.NoError(t, store.FlushNamespace(ctx, "query:"))

	_, err := store.Get(ctx, "query:a")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, "query:b")
	assert.ErrorIs(t, err, ErrNotFound)

	data, err := store.Get(ctx, "knowledge:a")
	require.NoError(t, err)
	assert.Equal(t, "3", string(data))
}

func TestKeysOnlyReturnsPrefixMatches(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "memory:s1", []byte("1"), time.Minute))
	require.NoError(t, store.Set(ctx, "memory:s2", []byte("2"), time.Minute))
	require.NoError(t, store.Set(ctx, "appt:a1", []byte("3"), time.Minute))

	keys, err := store.Keys(ctx, "memory:")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"memory:s1", "memory:s2"}, keys)
}

func TestPingSucceedsAgainstReachableStore(t *testing.T) {
	store, _ := newTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}
