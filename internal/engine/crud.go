package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/mesh-intelligence/chartstore/pkg/types"
)

// Get returns the document with the given id, or nil when absent. Reads
// are cache-first and populate the cache on miss. A missing document is
// not an error.
func (e *Engine) Get(ctx context.Context, col, id string) (types.Document, error) {
	if err := checkCollection(col); err != nil {
		return nil, err
	}
	if d := e.cache.get(col, id); d != nil {
		cacheHitsTotal.Inc()
		return d, nil
	}
	cacheMissesTotal.Inc()

	e.mu.RLock()
	docs, err := e.readCollection(ctx, col)
	e.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	i := findDoc(docs, id)
	if i < 0 {
		return nil, nil
	}
	e.cache.put(col, docs[i])
	return docs[i].Clone(), nil
}

// GetAll returns every document of the collection. A collection that was
// never written reads as empty.
func (e *Engine) GetAll(ctx context.Context, col string) ([]types.Document, error) {
	if err := checkCollection(col); err != nil {
		return nil, err
	}
	e.mu.RLock()
	docs, err := e.readCollection(ctx, col)
	e.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	return cloneDocs(docs), nil
}

// Count returns the number of documents in the collection.
func (e *Engine) Count(ctx context.Context, col string) (int, error) {
	if err := checkCollection(col); err != nil {
		return 0, err
	}
	e.mu.RLock()
	docs, err := e.readCollection(ctx, col)
	e.mu.RUnlock()
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

// Create inserts doc. A missing id is generated; a supplied id that
// already exists is rejected with ErrDuplicateID and nothing is written.
// createdAt and updatedAt are stamped by the engine regardless of input.
func (e *Engine) Create(ctx context.Context, col string, doc types.Document) (types.Document, error) {
	if err := checkCollection(col); err != nil {
		return nil, err
	}
	e.mu.Lock()
	created, err := e.createLocked(ctx, col, doc)
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}
	operationsTotal.WithLabelValues(col, types.ActionCreate).Inc()
	e.notify(types.ChangeEvent{Collection: col, Action: types.ActionCreate, Doc: created.Clone()})
	return created, nil
}

func (e *Engine) createLocked(ctx context.Context, col string, doc types.Document) (types.Document, error) {
	docs, err := e.readCollection(ctx, col)
	if err != nil {
		return nil, err
	}
	d := doc.Clone()
	if d == nil {
		d = types.Document{}
	}
	if d.ID() == "" {
		d.SetID(e.newID())
	} else if findDoc(docs, d.ID()) >= 0 {
		return nil, fmt.Errorf("%w: %s/%s", types.ErrDuplicateID, col, d.ID())
	}
	delete(d, types.FieldCreatedAt)
	delete(d, types.FieldUpdatedAt)
	d.Stamp(e.now())

	docs = append(docs, d)
	if err := e.writeCollection(ctx, col, docs); err != nil {
		return nil, err
	}
	e.recordOp(types.Created{Col: col, Doc: d.Clone()})
	e.appendSyncLocked(ctx, col, types.ActionCreate, d.ID())
	e.refreshIndexesLocked(ctx, col, docs)
	e.cache.invalidateCollection(col)
	return d.Clone(), nil
}

// CreateMany inserts a batch in input order. The whole batch is staged in
// memory first, so a duplicate id anywhere rejects the entire call and
// nothing is written. Subscribers receive one event carrying every created
// document; the sync log receives one row per document.
func (e *Engine) CreateMany(ctx context.Context, col string, docs []types.Document) ([]types.Document, error) {
	if err := checkCollection(col); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return []types.Document{}, nil
	}

	e.mu.Lock()
	created, err := e.createManyLocked(ctx, col, docs)
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}
	operationsTotal.WithLabelValues(col, types.ActionCreate).Add(float64(len(created)))
	e.notify(types.ChangeEvent{Collection: col, Action: types.ActionCreate, Docs: cloneDocs(created)})
	return created, nil
}

func (e *Engine) createManyLocked(ctx context.Context, col string, input []types.Document) ([]types.Document, error) {
	docs, err := e.readCollection(ctx, col)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(docs)+len(input))
	for _, d := range docs {
		seen[d.ID()] = true
	}

	created := make([]types.Document, 0, len(input))
	for _, in := range input {
		d := in.Clone()
		if d == nil {
			d = types.Document{}
		}
		if d.ID() == "" {
			d.SetID(e.newID())
		}
		if seen[d.ID()] {
			return nil, fmt.Errorf("%w: %s/%s", types.ErrDuplicateID, col, d.ID())
		}
		seen[d.ID()] = true
		delete(d, types.FieldCreatedAt)
		delete(d, types.FieldUpdatedAt)
		d.Stamp(e.now())
		docs = append(docs, d)
		created = append(created, d)
	}

	if err := e.writeCollection(ctx, col, docs); err != nil {
		return nil, err
	}
	entries := make([]syncAppend, len(created))
	for i, d := range created {
		e.recordOp(types.Created{Col: col, Doc: d.Clone()})
		entries[i] = syncAppend{action: types.ActionCreate, docID: d.ID()}
	}
	e.appendSyncManyLocked(ctx, col, entries)
	e.refreshIndexesLocked(ctx, col, docs)
	e.cache.invalidateCollection(col)
	return cloneDocs(created), nil
}

// Update merges patch onto the stored document, preserving id and
// createdAt and bumping updatedAt. A missing id returns nil, nil; nothing
// is written or notified.
func (e *Engine) Update(ctx context.Context, col, id string, patch types.Document) (types.Document, error) {
	if err := checkCollection(col); err != nil {
		return nil, err
	}
	e.mu.Lock()
	updated, err := e.updateLocked(ctx, col, id, patch)
	e.mu.Unlock()
	if err != nil || updated == nil {
		return nil, err
	}
	operationsTotal.WithLabelValues(col, types.ActionUpdate).Inc()
	e.notify(types.ChangeEvent{Collection: col, Action: types.ActionUpdate, Doc: updated.Clone()})
	return updated, nil
}

func (e *Engine) updateLocked(ctx context.Context, col, id string, patch types.Document) (types.Document, error) {
	docs, err := e.readCollection(ctx, col)
	if err != nil {
		return nil, err
	}
	i := findDoc(docs, id)
	if i < 0 {
		return nil, nil
	}
	before := docs[i].Clone()
	updated := docs[i].Clone()
	updated.Merge(patch)
	updated.Stamp(e.now())
	docs[i] = updated

	if err := e.writeCollection(ctx, col, docs); err != nil {
		return nil, err
	}
	e.recordOp(types.Updated{Col: col, Before: before, After: updated.Clone()})
	e.appendSyncLocked(ctx, col, types.ActionUpdate, id)
	e.refreshIndexesLocked(ctx, col, docs)
	e.cache.invalidateCollection(col)
	return updated.Clone(), nil
}

// UpdateMany applies per-document patches keyed by id, skipping missing
// ids, and returns how many documents changed. One event carries every
// updated document.
func (e *Engine) UpdateMany(ctx context.Context, col string, patches map[string]types.Document) (int, error) {
	if err := checkCollection(col); err != nil {
		return 0, err
	}
	if len(patches) == 0 {
		return 0, nil
	}

	e.mu.Lock()
	updated, err := e.updateManyLocked(ctx, col, patches)
	e.mu.Unlock()
	if err != nil {
		return 0, err
	}
	if len(updated) == 0 {
		return 0, nil
	}
	operationsTotal.WithLabelValues(col, types.ActionUpdate).Add(float64(len(updated)))
	e.notify(types.ChangeEvent{Collection: col, Action: types.ActionUpdate, Docs: cloneDocs(updated)})
	return len(updated), nil
}

func (e *Engine) updateManyLocked(ctx context.Context, col string, patches map[string]types.Document) ([]types.Document, error) {
	docs, err := e.readCollection(ctx, col)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(patches))
	for id := range patches {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var updated []types.Document
	var entries []syncAppend
	for _, id := range ids {
		i := findDoc(docs, id)
		if i < 0 {
			continue
		}
		before := docs[i].Clone()
		next := docs[i].Clone()
		next.Merge(patches[id])
		next.Stamp(e.now())
		docs[i] = next
		updated = append(updated, next)
		e.recordOp(types.Updated{Col: col, Before: before, After: next.Clone()})
		entries = append(entries, syncAppend{action: types.ActionUpdate, docID: id})
	}
	if len(updated) == 0 {
		return nil, nil
	}

	if err := e.writeCollection(ctx, col, docs); err != nil {
		return nil, err
	}
	e.appendSyncManyLocked(ctx, col, entries)
	e.refreshIndexesLocked(ctx, col, docs)
	e.cache.invalidateCollection(col)
	return cloneDocs(updated), nil
}

// Upsert updates when doc's id exists and creates otherwise. A doc without
// an id always creates.
func (e *Engine) Upsert(ctx context.Context, col string, doc types.Document) (types.Document, error) {
	if err := checkCollection(col); err != nil {
		return nil, err
	}

	e.mu.Lock()
	var (
		result types.Document
		action = types.ActionCreate
		err    error
	)
	if id := doc.ID(); id != "" {
		result, err = e.updateLocked(ctx, col, id, doc)
		if err != nil {
			e.mu.Unlock()
			return nil, err
		}
		if result != nil {
			action = types.ActionUpdate
		}
	}
	if result == nil {
		result, err = e.createLocked(ctx, col, doc)
	}
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}
	operationsTotal.WithLabelValues(col, action).Inc()
	e.notify(types.ChangeEvent{Collection: col, Action: action, Doc: result.Clone()})
	return result, nil
}

// Delete removes the document with the given id and reports whether
// anything was removed. Subscribers are notified only on removal.
func (e *Engine) Delete(ctx context.Context, col, id string) (bool, error) {
	if err := checkCollection(col); err != nil {
		return false, err
	}
	e.mu.Lock()
	removed, err := e.deleteLocked(ctx, col, id)
	e.mu.Unlock()
	if err != nil || removed == nil {
		return false, err
	}
	operationsTotal.WithLabelValues(col, types.ActionDelete).Inc()
	e.notify(types.ChangeEvent{Collection: col, Action: types.ActionDelete, Doc: removed.Clone()})
	return true, nil
}

func (e *Engine) deleteLocked(ctx context.Context, col, id string) (types.Document, error) {
	docs, err := e.readCollection(ctx, col)
	if err != nil {
		return nil, err
	}
	i := findDoc(docs, id)
	if i < 0 {
		return nil, nil
	}
	removed := docs[i]
	docs = append(docs[:i], docs[i+1:]...)

	if err := e.writeCollection(ctx, col, docs); err != nil {
		return nil, err
	}
	e.recordOp(types.Deleted{Col: col, Doc: removed.Clone()})
	e.appendSyncLocked(ctx, col, types.ActionDelete, id)
	e.refreshIndexesLocked(ctx, col, docs)
	e.cache.invalidateCollection(col)
	return removed, nil
}

// DeleteMany removes every listed id that exists and returns the count.
// When nothing matches, nothing is written and no event fires.
func (e *Engine) DeleteMany(ctx context.Context, col string, ids []string) (int, error) {
	if err := checkCollection(col); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	e.mu.Lock()
	removed, err := e.deleteManyLocked(ctx, col, ids)
	e.mu.Unlock()
	if err != nil {
		return 0, err
	}
	if len(removed) == 0 {
		return 0, nil
	}
	operationsTotal.WithLabelValues(col, types.ActionDelete).Add(float64(len(removed)))
	e.notify(types.ChangeEvent{Collection: col, Action: types.ActionDelete, Docs: cloneDocs(removed)})
	return len(removed), nil
}

func (e *Engine) deleteManyLocked(ctx context.Context, col string, ids []string) ([]types.Document, error) {
	docs, err := e.readCollection(ctx, col)
	if err != nil {
		return nil, err
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	keep := docs[:0]
	var removed []types.Document
	for _, d := range docs {
		if drop[d.ID()] {
			removed = append(removed, d)
			continue
		}
		keep = append(keep, d)
	}
	if len(removed) == 0 {
		return nil, nil
	}

	if err := e.writeCollection(ctx, col, keep); err != nil {
		return nil, err
	}
	entries := make([]syncAppend, len(removed))
	for i, d := range removed {
		e.recordOp(types.Deleted{Col: col, Doc: d.Clone()})
		entries[i] = syncAppend{action: types.ActionDelete, docID: d.ID()}
	}
	e.appendSyncManyLocked(ctx, col, entries)
	e.refreshIndexesLocked(ctx, col, keep)
	e.cache.invalidateCollection(col)
	return removed, nil
}
