package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runStoreTests(t *testing.T, store Store) {
	t.Helper()

	_, err := store.Get("missing")
	assert.Equal(t, ErrNotFound, err)

	require.NoError(t, store.Set("markaz:session", []byte(`{"userId":"u1"}`)))
	got, err := store.Get("markaz:session")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"userId":"u1"}`), got)

	// overwrite
	require.NoError(t, store.Set("markaz:session", []byte("v2")))
	got, err = store.Get("markaz:session")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)

	require.NoError(t, store.Delete("markaz:session"))
	_, err = store.Get("markaz:session")
	assert.Equal(t, ErrNotFound, err)

	// deleting an absent key is not an error
	require.NoError(t, store.Delete("markaz:session"))
}

func TestInMemStore(t *testing.T) {
	runStoreTests(t, NewInMemStore())
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	runStoreTests(t, store)
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	root := t.TempDir()

	store, err := NewFileStore(root)
	require.NoError(t, err)
	require.NoError(t, store.Set("markaz:session", []byte("persisted")))

	store2, err := NewFileStore(root)
	require.NoError(t, err)
	got, err := store2.Get("markaz:session")
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted"), got)
}

func TestInMemStoreReturnsCopies(t *testing.T) {
	store := NewInMemStore()
	require.NoError(t, store.Set("k", []byte("abc")))

	got, err := store.Get("k")
	require.NoError(t, err)
	got[0] = 'z'

	again, err := store.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}
