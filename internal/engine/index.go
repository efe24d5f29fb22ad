package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/mesh-intelligence/chartstore/pkg/types"
)

// loadIndexSpecs reads the persisted registry once, at construction.
func (e *Engine) loadIndexSpecs(ctx context.Context) error {
	raw, err := e.adapter.Get(ctx, types.IndexRegistryKey)
	if errors.Is(err, types.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read index registry: %w", err)
	}
	var specs []types.IndexSpec
	if err := json.Unmarshal(raw, &specs); err != nil {
		e.logger.Warnw("corrupt index registry, starting empty", "error", err)
		return nil
	}
	for _, s := range specs {
		e.indexes[s.Name] = s
	}
	return nil
}

func (e *Engine) saveIndexSpecsLocked(ctx context.Context) error {
	specs := make([]types.IndexSpec, 0, len(e.indexes))
	for _, s := range e.indexes {
		specs = append(specs, s)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })

	raw, err := json.Marshal(specs)
	if err != nil {
		return fmt.Errorf("encode index registry: %w", err)
	}
	if err := e.adapter.Set(ctx, types.IndexRegistryKey, raw); err != nil {
		return fmt.Errorf("write index registry: %w", err)
	}
	return nil
}

// CreateIndex scans col and builds a value-to-ids map over field, persisted
// under the index key and registered under name. Creating over an existing
// name replaces that index.
func (e *Engine) CreateIndex(ctx context.Context, col, field, name string) error {
	if err := checkCollection(col); err != nil {
		return err
	}
	if name == "" || field == "" {
		return fmt.Errorf("create index on %s: name and field must not be empty", col)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	docs, err := e.readCollection(ctx, col)
	if err != nil {
		return err
	}
	if err := e.writeIndexData(ctx, name, buildIndex(docs, field)); err != nil {
		return err
	}
	e.indexes[name] = types.IndexSpec{Name: name, Collection: col, Field: field}
	return e.saveIndexSpecsLocked(ctx)
}

// DropIndex removes the index data and its registration.
// Returns ErrIndexNotFound for an unknown name.
func (e *Engine) DropIndex(ctx context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.indexes[name]; !ok {
		return fmt.Errorf("%w: %s", types.ErrIndexNotFound, name)
	}
	if err := e.adapter.Delete(ctx, types.IndexKeyPrefix+name); err != nil {
		return fmt.Errorf("drop index %s: %w", name, err)
	}
	delete(e.indexes, name)
	return e.saveIndexSpecsLocked(ctx)
}

// FindByIndex resolves value through the persisted index, then filters the
// live collection by the returned ids. Ids that no longer exist are
// silently excluded, so a stale index narrows results but never invents
// them.
func (e *Engine) FindByIndex(ctx context.Context, name string, value any) ([]types.Document, error) {
	e.mu.RLock()
	spec, ok := e.indexes[name]
	if !ok {
		e.mu.RUnlock()
		return nil, fmt.Errorf("%w: %s", types.ErrIndexNotFound, name)
	}
	data := e.readIndexData(ctx, name)
	docs, err := e.readCollection(ctx, spec.Collection)
	e.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	want := make(map[string]bool)
	for _, id := range data[fmt.Sprint(value)] {
		want[id] = true
	}
	var out []types.Document
	for _, d := range docs {
		if want[d.ID()] {
			out = append(out, d.Clone())
		}
	}
	return out, nil
}

// RebuildIndexes rebuilds every registered index of col from the live
// collection.
func (e *Engine) RebuildIndexes(ctx context.Context, col string) error {
	if err := checkCollection(col); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	docs, err := e.readCollection(ctx, col)
	if err != nil {
		return err
	}
	for _, spec := range e.indexes {
		if spec.Collection != col {
			continue
		}
		if err := e.writeIndexData(ctx, spec.Name, buildIndex(docs, spec.Field)); err != nil {
			return err
		}
	}
	return nil
}

// Indexes lists the registered index specs sorted by name.
func (e *Engine) Indexes() []types.IndexSpec {
	e.mu.RLock()
	defer e.mu.RUnlock()

	specs := make([]types.IndexSpec, 0, len(e.indexes))
	for _, s := range e.indexes {
		specs = append(specs, s)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs
}

// refreshIndexesLocked re-derives every index of col after a mutation.
// Failures leave a stale index, which FindByIndex tolerates, so they are
// logged rather than failing the mutation that triggered them.
func (e *Engine) refreshIndexesLocked(ctx context.Context, col string, docs []types.Document) {
	for _, spec := range e.indexes {
		if spec.Collection != col {
			continue
		}
		if err := e.writeIndexData(ctx, spec.Name, buildIndex(docs, spec.Field)); err != nil {
			e.logger.Warnw("index refresh failed", "index", spec.Name, "error", err)
		}
	}
}

func (e *Engine) writeIndexData(ctx context.Context, name string, data map[string][]string) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode index %s: %w", name, err)
	}
	if err := e.adapter.Set(ctx, types.IndexKeyPrefix+name, raw); err != nil {
		return fmt.Errorf("write index %s: %w", name, err)
	}
	return nil
}

// readIndexData loads persisted index data, reading absent or corrupt data
// as empty.
func (e *Engine) readIndexData(ctx context.Context, name string) map[string][]string {
	raw, err := e.adapter.Get(ctx, types.IndexKeyPrefix+name)
	if err != nil {
		if !errors.Is(err, types.ErrKeyNotFound) {
			e.logger.Warnw("index read failed", "index", name, "error", err)
		}
		return map[string][]string{}
	}
	var data map[string][]string
	if err := json.Unmarshal(raw, &data); err != nil {
		e.logger.Warnw("corrupt index payload", "index", name, "error", err)
		return map[string][]string{}
	}
	return data
}

// buildIndex maps the string form of each document's field value to the
// ids bearing it. Documents missing the field, or holding null, stay
// unindexed.
func buildIndex(docs []types.Document, field string) map[string][]string {
	out := make(map[string][]string)
	for _, d := range docs {
		v, ok := d.Field(field)
		if !ok || v == nil {
			continue
		}
		key := fmt.Sprint(v)
		out[key] = append(out[key], d.ID())
	}
	return out
}
