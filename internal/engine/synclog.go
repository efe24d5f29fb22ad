package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/chartstore/pkg/types"
)

// syncAppend is one pending log addition, batched so bulk mutations write
// the log once.
type syncAppend struct {
	action string
	docID  string
}

// readSyncLog loads the persisted log; absent or corrupt reads as empty.
func (e *Engine) readSyncLog(ctx context.Context) []types.SyncLogEntry {
	raw, err := e.adapter.Get(ctx, types.SyncLogKey)
	if err != nil {
		if !errors.Is(err, types.ErrKeyNotFound) {
			e.logger.Warnw("sync log read failed", "error", err)
		}
		return []types.SyncLogEntry{}
	}
	var log []types.SyncLogEntry
	if err := json.Unmarshal(raw, &log); err != nil {
		e.logger.Warnw("corrupt sync log, starting empty", "error", err)
		return []types.SyncLogEntry{}
	}
	return log
}

func (e *Engine) writeSyncLog(ctx context.Context, log []types.SyncLogEntry) error {
	raw, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("encode sync log: %w", err)
	}
	if err := e.adapter.Set(ctx, types.SyncLogKey, raw); err != nil {
		return fmt.Errorf("write sync log: %w", err)
	}
	return nil
}

// appendSyncLocked records one mutation in the outbound log. A log write
// failure never fails the mutation it describes; the change simply will
// not sync.
func (e *Engine) appendSyncLocked(ctx context.Context, col, action, docID string) {
	e.appendSyncManyLocked(ctx, col, []syncAppend{{action: action, docID: docID}})
}

func (e *Engine) appendSyncManyLocked(ctx context.Context, col string, entries []syncAppend) {
	if len(entries) == 0 {
		return
	}
	log := e.readSyncLog(ctx)
	now := e.now()
	for _, en := range entries {
		log = append(log, types.SyncLogEntry{
			ID:         e.newID(),
			Collection: col,
			Action:     en.action,
			DocumentID: en.docID,
			Timestamp:  now,
			Status:     types.SyncPending,
		})
	}
	if over := len(log) - types.SyncLogMax; over > 0 {
		log = append([]types.SyncLogEntry(nil), log[over:]...)
	}
	if err := e.writeSyncLog(ctx, log); err != nil {
		e.logger.Warnw("sync log append failed", "collection", col, "error", err)
		return
	}
	e.setSyncGauge(log)
}

func (e *Engine) setSyncGauge(log []types.SyncLogEntry) {
	pending := 0
	for _, en := range log {
		if en.Status != types.SyncSynced {
			pending++
		}
	}
	syncPendingGauge.Set(float64(pending))
}

// PendingSyncs returns the entries still awaiting a successful push,
// oldest first. Entries whose last push failed are included so the next
// pass retries them.
func (e *Engine) PendingSyncs(ctx context.Context) ([]types.SyncLogEntry, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []types.SyncLogEntry
	for _, en := range e.readSyncLog(ctx) {
		if en.Status != types.SyncSynced {
			out = append(out, en)
		}
	}
	return out, nil
}

// MarkSynced records that the remote acknowledged the entry.
func (e *Engine) MarkSynced(ctx context.Context, entryID string) error {
	return e.markSync(ctx, entryID, types.SyncSynced)
}

// MarkSyncError records a failed push. The entry stays in the log and is
// picked up again by the next sync pass.
func (e *Engine) MarkSyncError(ctx context.Context, entryID string) error {
	return e.markSync(ctx, entryID, types.SyncError)
}

func (e *Engine) markSync(ctx context.Context, entryID, status string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	log := e.readSyncLog(ctx)
	for i := range log {
		if log[i].ID != entryID {
			continue
		}
		log[i].Status = status
		if err := e.writeSyncLog(ctx, log); err != nil {
			return err
		}
		e.setSyncGauge(log)
		return nil
	}
	// Entry already fell off the ring; nothing to update.
	return nil
}
