package kvstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLite(t *testing.T) *SQLite {
	t.Helper()
	store, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "data", "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := setupSQLite(t)

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "p:bazar_recently_viewed", `["a"]`))
	require.NoError(t, store.Set(ctx, "p:bazar_recently_viewed", `["b","a"]`))

	value, ok, err := store.Get(ctx, "p:bazar_recently_viewed")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `["b","a"]`, value)

	require.NoError(t, store.Remove(ctx, "p:bazar_recently_viewed"))
	_, ok, err = store.Get(ctx, "p:bazar_recently_viewed")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Ping(ctx))
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	first, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "k", "v"))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer second.Close()

	value, ok, err := second.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", value)
	assert.Equal(t, path, second.Path())
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	_, err := OpenSQLite(context.Background(), "")
	assert.Error(t, err)
}
