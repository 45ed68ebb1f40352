package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisStore(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	store, err := NewRedisStore(RedisOptions{
		Addr: mr.Addr(),
		TTL:  time.Hour,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return mr, store
}

func TestRedisStore_PutGet(t *testing.T) {
	_, store := setupRedisStore(t)
	ctx := context.Background()

	sess := NewSession("sess-1")
	sess.RecordExecution(4)
	require.NoError(t, store.Put(ctx, sess))

	got, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", got.ID)
	assert.Equal(t, 1, got.Executions)
	assert.Equal(t, 4, got.TotalCalls)
}

func TestRedisStore_GetMissing(t *testing.T) {
	_, store := setupRedisStore(t)

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_DeleteAndList(t *testing.T) {
	_, store := setupRedisStore(t)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, NewSession("a")))
	require.NoError(t, store.Put(ctx, NewSession("b")))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)

	require.NoError(t, store.Delete(ctx, "a"))
	_, err = store.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)

	ids, err = store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b"}, ids)
}

func TestRedisStore_ExpiredSessionDropsFromIndex(t *testing.T) {
	mr, store := setupRedisStore(t)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, NewSession("short")))

	mr.FastForward(2 * time.Hour)

	_, err := store.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrNotFound)

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRedisStore_Ping(t *testing.T) {
	mr, store := setupRedisStore(t)
	assert.NoError(t, store.Ping(context.Background()))

	mr.Close()
	assert.Error(t, store.Ping(context.Background()))
}
