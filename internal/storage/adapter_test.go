package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/chartstore/pkg/types"
)

// runAdapterSuite exercises the StorageAdapter contract against a fresh
// adapter per subtest. Every implementation must pass it unchanged.
func runAdapterSuite(t *testing.T, open func(t *testing.T) types.StorageAdapter) {
	t.Helper()
	ctx := context.Background()

	t.Run("set get round trip", func(t *testing.T) {
		a := open(t)
		defer a.Close()

		require.NoError(t, a.Set(ctx, "patients", []byte(`[{"id":"p1"}]`)))
		got, err := a.Get(ctx, "patients")
		require.NoError(t, err)
		assert.Equal(t, []byte(`[{"id":"p1"}]`), got)
	})

	t.Run("get missing key", func(t *testing.T) {
		a := open(t)
		defer a.Close()

		_, err := a.Get(ctx, "nope")
		assert.ErrorIs(t, err, types.ErrKeyNotFound)
	})

	t.Run("set overwrites", func(t *testing.T) {
		a := open(t)
		defer a.Close()

		require.NoError(t, a.Set(ctx, "k", []byte("v1")))
		require.NoError(t, a.Set(ctx, "k", []byte("v2")))
		got, err := a.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), got)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		a := open(t)
		defer a.Close()

		require.NoError(t, a.Set(ctx, "k", []byte("v")))
		require.NoError(t, a.Delete(ctx, "k"))
		_, err := a.Get(ctx, "k")
		assert.ErrorIs(t, err, types.ErrKeyNotFound)
		require.NoError(t, a.Delete(ctx, "k"))
	})

	t.Run("keys filters by prefix and sorts", func(t *testing.T) {
		a := open(t)
		defer a.Close()

		// Underscore prefixes must match literally, not as wildcards.
		for _, k := range []string{"patients", "_synclog", "_metadata", "index:patients_by_mrn"} {
			require.NoError(t, a.Set(ctx, k, []byte("x")))
		}

		all, err := a.Keys(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"_metadata", "_synclog", "index:patients_by_mrn", "patients"}, all)

		reserved, err := a.Keys(ctx, "_")
		require.NoError(t, err)
		assert.Equal(t, []string{"_metadata", "_synclog"}, reserved)

		idx, err := a.Keys(ctx, types.IndexKeyPrefix)
		require.NoError(t, err)
		assert.Equal(t, []string{"index:patients_by_mrn"}, idx)
	})

	t.Run("clear removes only the prefix", func(t *testing.T) {
		a := open(t)
		defer a.Close()

		require.NoError(t, a.Set(ctx, "index:a", []byte("x")))
		require.NoError(t, a.Set(ctx, "index:b", []byte("x")))
		require.NoError(t, a.Set(ctx, "patients", []byte("x")))

		require.NoError(t, a.Clear(ctx, types.IndexKeyPrefix))

		keys, err := a.Keys(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"patients"}, keys)
	})

	t.Run("operations after close", func(t *testing.T) {
		a := open(t)
		require.NoError(t, a.Close())
		require.NoError(t, a.Close(), "close must be idempotent")

		_, err := a.Get(ctx, "k")
		assert.ErrorIs(t, err, types.ErrAdapterClosed)
		assert.ErrorIs(t, a.Set(ctx, "k", []byte("v")), types.ErrAdapterClosed)
	})
}

func TestMemoryAdapter(t *testing.T) {
	runAdapterSuite(t, func(t *testing.T) types.StorageAdapter {
		return NewMemory()
	})
}

func TestSQLiteAdapter(t *testing.T) {
	runAdapterSuite(t, func(t *testing.T) types.StorageAdapter {
		a, err := OpenSQLite(t.TempDir(), "chartstore_test", nil)
		require.NoError(t, err)
		return a
	})
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	defer m.Close()

	in := []byte("original")
	require.NoError(t, m.Set(ctx, "k", in))
	in[0] = 'X'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), got, "stored value must not alias caller bytes")

	got[0] = 'Y'
	again, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), again, "returned value must not alias stored bytes")
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	a, err := OpenSQLite(dir, "chartstore_test", nil)
	require.NoError(t, err)
	require.NoError(t, a.Set(ctx, "patients", []byte(`[{"id":"p1"}]`)))
	require.NoError(t, a.Close())

	b, err := OpenSQLite(dir, "chartstore_test", nil)
	require.NoError(t, err)
	defer b.Close()

	got, err := b.Get(ctx, "patients")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[{"id":"p1"}]`), got)
}
