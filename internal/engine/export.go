package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/mesh-intelligence/chartstore/pkg/types"
)

// Export snapshots every collection plus the store metadata.
func (e *Engine) Export(ctx context.Context) (*types.Bundle, error) {
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

	bundle := &types.Bundle{
		Collections: make(map[string][]types.Document, len(cols)),
		Metadata:    md,
		ExportedAt:  e.now(),
	}
	for _, col := range cols {
		docs, err := e.readCollection(ctx, col)
		if err != nil {
			return nil, err
		}
		bundle.Collections[col] = docs
	}
	return bundle, nil
}

// Import loads a bundle. In merge mode each collection keeps its existing
// documents and gains only those whose id is new; otherwise collections
// are replaced wholesale. Documents are taken verbatim, timestamps
// included; indexes are rebuilt and one import event fires per collection
// carrying the resulting array. The bundle's metadata is not applied; the
// local migration state stays authoritative.
func (e *Engine) Import(ctx context.Context, bundle *types.Bundle, merge bool) error {
	if bundle == nil {
		return fmt.Errorf("import: nil bundle")
	}
	names := make([]string, 0, len(bundle.Collections))
	for name := range bundle.Collections {
		if err := checkCollection(name); err != nil {
			return err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	e.mu.Lock()
	events := make([]types.ChangeEvent, 0, len(names))
	for _, col := range names {
		final, err := e.importCollectionLocked(ctx, col, bundle.Collections[col], merge)
		if err != nil {
			e.mu.Unlock()
			return err
		}
		events = append(events, types.ChangeEvent{
			Collection: col,
			Action:     types.ActionImport,
			Docs:       cloneDocs(final),
		})
	}
	e.cache.reset()
	e.mu.Unlock()

	for _, ev := range events {
		operationsTotal.WithLabelValues(ev.Collection, types.ActionImport).Inc()
		e.notify(ev)
	}
	return nil
}

func (e *Engine) importCollectionLocked(ctx context.Context, col string, incoming []types.Document, merge bool) ([]types.Document, error) {
	if !merge {
		final := cloneDocs(incoming)
		if err := e.writeCollection(ctx, col, final); err != nil {
			return nil, err
		}
		e.refreshIndexesLocked(ctx, col, final)
		return final, nil
	}

	existing, err := e.readCollection(ctx, col)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(existing))
	for _, d := range existing {
		seen[d.ID()] = true
	}
	final := existing
	for _, d := range incoming {
		// Documents without ids cannot be deduplicated, so merge skips them.
		id := d.ID()
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		final = append(final, d.Clone())
	}
	if err := e.writeCollection(ctx, col, final); err != nil {
		return nil, err
	}
	e.refreshIndexesLocked(ctx, col, final)
	return final, nil
}
