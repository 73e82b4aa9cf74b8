//go:build integration

package kvstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazzarna/storefront/internal/platform/config"
	pfirestore "github.com/bazzarna/storefront/internal/platform/firestore"
)

func TestFirestoreRoundTripAgainstEmulator(t *testing.T) {
	host := os.Getenv("FIRESTORE_EMULATOR_HOST")
	if host == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}

	provider := pfirestore.NewProvider(config.FirestoreConfig{ProjectID: "bazzarna-test", EmulatorHost: host})
	t.Cleanup(func() { _ = provider.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	store := NewFirestore(provider, "")
	key := "profile/1:bazar_recently_viewed"

	require.NoError(t, store.Set(ctx, key, `["p1"]`))
	value, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `["p1"]`, value)

	require.NoError(t, store.Remove(ctx, key))
	_, ok, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}
