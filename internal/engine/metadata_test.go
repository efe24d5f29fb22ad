package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/chartstore/pkg/types"
)

func TestMetadataLazyCreate(t *testing.T) {
	e, clock := newTestEngine(t)
	ctx := context.Background()

	md, err := e.Metadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.FormatVersion, md.Version)
	assert.Empty(t, md.LastMigration)
	assert.NotNil(t, md.Statistics)
	assert.Equal(t, clock.Now(), md.CreatedAt)

	// A later read returns the persisted singleton, not a new one.
	clock.Advance(time.Hour)
	again, err := e.Metadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, md.CreatedAt, again.CreatedAt)
}

func TestSetLastMigration(t *testing.T) {
	e, clock := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Metadata(ctx)
	require.NoError(t, err)

	clock.Advance(time.Minute)
	require.NoError(t, e.SetLastMigration(ctx, "1.1.0"))

	md, err := e.Metadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", md.LastMigration)
	assert.Equal(t, clock.Now(), md.UpdatedAt)
}

func TestUpdateStatistics(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	mustCreate(t, e, types.PatientsCollection, types.Document{"id": "pat-1"})
	mustCreate(t, e, types.PatientsCollection, types.Document{"id": "pat-2"})
	mustCreate(t, e, types.DoctorsCollection, types.Document{"id": "doc-a"})

	md, err := e.UpdateStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		types.PatientsCollection: 2,
		types.DoctorsCollection:  1,
	}, md.Statistics, "reserved keys must not be counted")
}

func TestMetadataCorruptRecreated(t *testing.T) {
	e, clock := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.adapter.Set(ctx, types.MetadataKey, []byte("{broken")))

	clock.Advance(time.Hour)
	md, err := e.Metadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.FormatVersion, md.Version)
	assert.Equal(t, clock.Now(), md.CreatedAt, "corrupt metadata is replaced, not preserved")
}
