package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_PutGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := NewSession("sess-1")
	require.NoError(t, store.Put(ctx, sess))

	got, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", got.ID)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, NewSession("sess-1")))

	first, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	first.Executions = 99

	second, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 0, second.Executions)
}

func TestMemoryStore_DeleteAndList(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, NewSession("a")))
	require.NoError(t, store.Put(ctx, NewSession("b")))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)

	require.NoError(t, store.Delete(ctx, "a"))
	require.NoError(t, store.Delete(ctx, "a")) // idempotent

	_, err = store.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewSession_GeneratesID(t *testing.T) {
	sess := NewSession("")
	assert.NotEmpty(t, sess.ID)
}

func TestSession_RecordExecution(t *testing.T) {
	sess := NewSession("s")
	before := sess.LastActiveAt

	sess.RecordExecution(3)
	sess.RecordExecution(0)

	assert.Equal(t, 2, sess.Executions)
	assert.Equal(t, 3, sess.TotalCalls)
	assert.False(t, sess.LastActiveAt.Before(before))
}
