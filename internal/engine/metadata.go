package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/chartstore/pkg/types"
)

// Metadata returns the bookkeeping singleton, creating and persisting it
// on first access.
func (e *Engine) Metadata(ctx context.Context) (*types.Metadata, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.metadataLocked(ctx)
}

func (e *Engine) metadataLocked(ctx context.Context) (*types.Metadata, error) {
	raw, err := e.adapter.Get(ctx, types.MetadataKey)
	if err == nil {
		var md types.Metadata
		if jerr := json.Unmarshal(raw, &md); jerr == nil {
			return &md, nil
		}
		e.logger.Warnw("corrupt metadata, recreating", "error", err)
	} else if !errors.Is(err, types.ErrKeyNotFound) {
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	now := e.now()
	md := &types.Metadata{
		Version:    types.FormatVersion,
		Statistics: map[string]int{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := e.writeMetadataLocked(ctx, md); err != nil {
		return nil, err
	}
	return md, nil
}

func (e *Engine) writeMetadataLocked(ctx context.Context, md *types.Metadata) error {
	raw, err := json.Marshal(md)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	if err := e.adapter.Set(ctx, types.MetadataKey, raw); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// SetLastMigration persists the highest applied migration version.
func (e *Engine) SetLastMigration(ctx context.Context, version string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	md, err := e.metadataLocked(ctx)
	if err != nil {
		return err
	}
	md.LastMigration = version
	md.UpdatedAt = e.now()
	return e.writeMetadataLocked(ctx, md)
}

// UpdateStatistics recounts every collection and persists the totals.
func (e *Engine) UpdateStatistics(ctx context.Context) (*types.Metadata, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	md, err := e.metadataLocked(ctx)
	if err != nil {
		return nil, err
	}
	cols, err := e.collections(ctx)
	if err != nil {
		return nil, err
	}

	stats := make(map[string]int, len(cols))
	for _, col := range cols {
		docs, err := e.readCollection(ctx, col)
		if err != nil {
			return nil, err
		}
		stats[col] = len(docs)
	}
	md.Statistics = stats
	md.UpdatedAt = e.now()
	if err := e.writeMetadataLocked(ctx, md); err != nil {
		return nil, err
	}
	return md, nil
}
