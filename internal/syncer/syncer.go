package syncer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/chartstore/internal/engine"
	"github.com/mesh-intelligence/chartstore/pkg/types"
)

// Manager drives two-way sync between the engine and the configured
// remote.
type Manager struct {
	engine *engine.Engine
	cfg    types.SyncConfig
	client *remoteClient
	logger *zap.SugaredLogger

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// Report summarizes one sync pass.
type Report struct {
	Pushed  int `json:"pushed"`
	Failed  int `json:"failed"`
	Pulled  int `json:"pulled"`
	Applied int `json:"applied"`
}

// New builds a manager. The config is expected to have passed
// types.Config.Validate.
func New(eng *engine.Engine, cfg types.SyncConfig, logger *zap.SugaredLogger) *Manager {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Manager{
		engine: eng,
		cfg:    cfg,
		client: newRemoteClient(cfg),
		logger: logger,
	}
}

// Sync runs one full pass: push every pending sync-log entry, then pull
// and apply the changes feed for each configured collection. Push and
// pull failures are counted and logged but never abort the pass; only a
// local storage failure does.
func (m *Manager) Sync(ctx context.Context) (*Report, error) {
	rep := &Report{}

	pending, err := m.engine.PendingSyncs(ctx)
	if err != nil {
		return nil, err
	}
	for _, entry := range pending {
		ch, ok, err := m.changeFor(ctx, entry)
		if err != nil {
			return rep, err
		}
		if !ok {
			// The document is gone and a later delete entry covers it.
			if err := m.engine.MarkSynced(ctx, entry.ID); err != nil {
				return rep, err
			}
			continue
		}
		if err := m.client.push(ctx, entry.Collection, ch); err != nil {
			rep.Failed++
			conflictsTotal.Inc()
			m.logger.Warnw("push failed",
				"entry", entry.ID, "collection", entry.Collection,
				"document", entry.DocumentID, "error", err)
			if err := m.engine.MarkSyncError(ctx, entry.ID); err != nil {
				return rep, err
			}
			continue
		}
		if err := m.engine.MarkSynced(ctx, entry.ID); err != nil {
			return rep, err
		}
		rep.Pushed++
	}

	for _, col := range m.cfg.Collections {
		changes, err := m.client.pull(ctx, col)
		if err != nil {
			conflictsTotal.Inc()
			m.logger.Warnw("pull failed", "collection", col, "error", err)
			continue
		}
		rep.Pulled += len(changes)
		for _, ch := range changes {
			applied, err := m.applyRemoteChange(ctx, col, ch)
			if err != nil {
				conflictsTotal.Inc()
				m.logger.Warnw("apply failed",
					"collection", col, "document", ch.DocumentID, "error", err)
				continue
			}
			if applied {
				rep.Applied++
			}
		}
	}

	outcome := "clean"
	if rep.Failed > 0 {
		outcome = "partial"
	}
	passesTotal.WithLabelValues(outcome).Inc()
	m.logger.Debugw("sync pass complete",
		"pushed", rep.Pushed, "failed", rep.Failed,
		"pulled", rep.Pulled, "applied", rep.Applied)
	return rep, nil
}

// changeFor builds the outbound wire change for one log entry. ok is
// false when there is nothing left to say about the entry.
func (m *Manager) changeFor(ctx context.Context, entry types.SyncLogEntry) (types.RemoteChange, bool, error) {
	ch := types.RemoteChange{
		Action:     entry.Action,
		DocumentID: entry.DocumentID,
		Timestamp:  entry.Timestamp.UTC().Format(types.TimeFormat),
	}
	if entry.Action == types.ActionDelete {
		return ch, true, nil
	}
	doc, err := m.engine.Get(ctx, entry.Collection, entry.DocumentID)
	if err != nil {
		return ch, false, err
	}
	if doc == nil {
		return ch, false, nil
	}
	ch.Data = doc
	return ch, true, nil
}

// Start launches the interval loop. Starting a running manager is a
// no-op.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stop != nil {
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	m.stop, m.done = stop, done
	go m.loop(ctx, stop, done)
	m.logger.Infow("sync started",
		"endpoint", m.cfg.Endpoint, "interval", m.cfg.Interval,
		"policy", m.cfg.ConflictPolicy)
}

func (m *Manager) loop(ctx context.Context, stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := m.Sync(ctx); err != nil {
				m.logger.Warnw("sync pass failed", "error", err)
			}
		case <-stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop halts the interval loop and waits for an in-flight pass to finish.
// Stopping a stopped manager is a no-op.
func (m *Manager) Stop() {
	m.mu.Lock()
	stop, done := m.stop, m.done
	m.stop, m.done = nil, nil
	m.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
	m.logger.Infow("sync stopped")
}

// Ping probes the remote health endpoint.
func (m *Manager) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return m.client.ping(ctx)
}
