package kvstore_test

import (
	"path/filepath"
	"testing"

	"github.com/rpggio/casedeck/internal/kvstore"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T, quota int64) map[string]kvstore.Store {
	t.Helper()

	sqlite, err := kvstore.NewSQLiteStore(filepath.Join(t.TempDir(), "kv.db"), quota)
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]kvstore.Store{
		"sqlite": sqlite,
		"memory": kvstore.NewMemoryStore(quota),
	}
}

func TestStore_RoundTrip(t *testing.T) {
	for name, store := range stores(t, 0) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get("missing")
			require.ErrorIs(t, err, kvstore.ErrNotFound)

			require.NoError(t, store.Set("a", "1"))
			require.NoError(t, store.Set("a", "2"))

			got, err := store.Get("a")
			require.NoError(t, err)
			require.Equal(t, "2", got)

			require.NoError(t, store.Remove("a"))
			_, err = store.Get("a")
			require.ErrorIs(t, err, kvstore.ErrNotFound)

			// Removing an absent key is not an error.
			require.NoError(t, store.Remove("a"))
		})
	}
}

func TestStore_QuotaExceeded(t *testing.T) {
	for name, store := range stores(t, 20) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Set("k1", "12345678"))

			err := store.Set("k2", "1234567890123456789")
			require.ErrorIs(t, err, kvstore.ErrQuotaExceeded)

			// The failed write must not have landed.
			_, err = store.Get("k2")
			require.ErrorIs(t, err, kvstore.ErrNotFound)

			// Replacing an existing key counts only the new value.
			require.NoError(t, store.Set("k1", "123456789012345678"))
		})
	}
}

func TestStore_KeysPrefix(t *testing.T) {
	for name, store := range stores(t, 0) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Set("tc:alpha:1", "a"))
			require.NoError(t, store.Set("tc:alpha:2", "b"))
			require.NoError(t, store.Set("tc:beta:1", "c"))
			require.NoError(t, store.Set("filters:alpha", "d"))

			keys, err := store.Keys("tc:alpha:")
			require.NoError(t, err)
			require.Equal(t, []string{"tc:alpha:1", "tc:alpha:2"}, keys)
		})
	}
}
