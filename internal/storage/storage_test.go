package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/chartstore/pkg/types"
)

func TestNewSelectsAdapter(t *testing.T) {
	mem, err := New(types.Config{Adapter: types.AdapterMemory}, nil)
	require.NoError(t, err)
	defer mem.Close()
	assert.IsType(t, &Memory{}, mem)

	sq, err := New(types.Config{Adapter: types.AdapterSQLite, DataDir: t.TempDir()}, nil)
	require.NoError(t, err)
	defer sq.Close()
	assert.IsType(t, &SQLite{}, sq)
}

func TestNewRejectsUnknownAdapter(t *testing.T) {
	_, err := New(types.Config{Adapter: "mongodb"}, nil)
	assert.ErrorIs(t, err, types.ErrAdapterUnknown)
}
