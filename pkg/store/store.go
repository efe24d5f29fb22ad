// Package store is the public face of the data layer. Open wires the
// configured storage adapter, the document engine, the clinic validator,
// migrations, optional seeding, and optional background sync into one
// value; the methods expose the validated caller surface.
package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/chartstore/internal/engine"
	"github.com/mesh-intelligence/chartstore/internal/migrate"
	"github.com/mesh-intelligence/chartstore/internal/seed"
	"github.com/mesh-intelligence/chartstore/internal/storage"
	"github.com/mesh-intelligence/chartstore/internal/syncer"
	"github.com/mesh-intelligence/chartstore/internal/validation"
	"github.com/mesh-intelligence/chartstore/pkg/types"
)

// Store owns one opened data layer. Construct with Open; Close releases
// the adapter and stops background sync.
type Store struct {
	cfg       types.Config
	engine    *engine.Engine
	validator *validation.Validator
	runner    *migrate.Runner
	seeder    *seed.Seeder
	sync      *syncer.Manager
	logger    *zap.SugaredLogger
}

type options struct {
	logger *zap.SugaredLogger
}

// Option adjusts Open.
type Option func(*options)

// WithLogger sets the logger shared by every layer of the store. A nil
// logger is replaced by a no-op.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Open validates cfg, builds the adapter and engine, runs migrations,
// seeds when configured, and starts background sync when enabled. A
// migration or seed failure aborts the open; running against a partially
// migrated store is unsafe. The ctx bounds startup work and the lifetime
// of the sync loop.
func Open(ctx context.Context, cfg types.Config, opts ...Option) (*Store, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{logger: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(&o)
	}

	adapter, err := storage.New(cfg, o.logger)
	if err != nil {
		return nil, err
	}
	eng, err := engine.New(ctx, adapter,
		engine.WithLogger(o.logger),
		engine.WithCacheTTL(cfg.CacheTTL))
	if err != nil {
		_ = adapter.Close()
		return nil, err
	}

	s := &Store{
		cfg:       cfg,
		engine:    eng,
		validator: validation.DefaultValidator(eng, o.logger),
		runner:    migrate.New(eng, o.logger),
		seeder:    seed.New(eng, o.logger),
		logger:    o.logger,
	}

	if _, err := s.runner.Run(ctx); err != nil {
		_ = eng.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	if cfg.SeedOnOpen {
		if _, err := s.seeder.Seed(ctx, false); err != nil {
			_ = eng.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}
	if cfg.Sync.Enabled {
		s.sync = syncer.New(eng, cfg.Sync, o.logger)
		s.sync.Start(ctx)
	}
	return s, nil
}

// Close stops background sync and releases the storage adapter.
func (s *Store) Close() error {
	if s.sync != nil {
		s.sync.Stop()
	}
	return s.engine.Close()
}

// Config returns the effective configuration after defaults.
func (s *Store) Config() types.Config {
	return s.cfg
}

// Engine exposes the raw, unvalidated engine. Writes through it skip
// schema and constraint checks.
func (s *Store) Engine() *engine.Engine {
	return s.engine
}

// Create validates doc against col's schema, constraints, and business
// rules, then writes it.
func (s *Store) Create(ctx context.Context, col string, doc types.Document) (types.Document, error) {
	return s.validator.CreateValidated(ctx, col, doc)
}

// Get returns the document or nil when absent.
func (s *Store) Get(ctx context.Context, col, id string) (types.Document, error) {
	return s.engine.Get(ctx, col, id)
}

// GetAll returns every document in col.
func (s *Store) GetAll(ctx context.Context, col string) ([]types.Document, error) {
	return s.engine.GetAll(ctx, col)
}

// Query filters, orders, paginates, and projects col.
func (s *Store) Query(ctx context.Context, col string, opts types.QueryOptions) (*types.QueryResult, error) {
	return s.engine.Query(ctx, col, opts)
}

// Update validates the patch and the merged result, then applies it.
// Returns nil for an unknown id.
func (s *Store) Update(ctx context.Context, col, id string, patch types.Document) (types.Document, error) {
	return s.validator.UpdateValidated(ctx, col, id, patch)
}

// Delete enforces referential integrity, performs cascade and set-null
// side effects, then removes the document.
func (s *Store) Delete(ctx context.Context, col, id string) (bool, error) {
	return s.validator.DeleteValidated(ctx, col, id)
}

// Count returns the number of documents in col.
func (s *Store) Count(ctx context.Context, col string) (int, error) {
	return s.engine.Count(ctx, col)
}

// Aggregate groups col by a field and computes the requested numeric
// summaries.
func (s *Store) Aggregate(ctx context.Context, col, groupBy string, opts types.AggregateOptions) (map[string]*types.AggregateGroup, error) {
	return s.engine.Aggregate(ctx, col, groupBy, opts)
}

// Subscribe registers fn for change events on col and returns the
// unsubscribe function.
func (s *Store) Subscribe(col string, fn types.Subscriber) func() {
	return s.engine.Subscribe(col, fn)
}

// Export snapshots every collection plus metadata.
func (s *Store) Export(ctx context.Context) (*types.Bundle, error) {
	return s.engine.Export(ctx)
}

// Import loads a bundle, merging or replacing per collection.
func (s *Store) Import(ctx context.Context, bundle *types.Bundle, merge bool) error {
	return s.engine.Import(ctx, bundle, merge)
}

// Stats refreshes collection counts and returns the metadata singleton.
func (s *Store) Stats(ctx context.Context) (*types.Metadata, error) {
	return s.engine.UpdateStatistics(ctx)
}

// Seed loads the starter dataset. force clears the standard collections
// first.
func (s *Store) Seed(ctx context.Context, force bool) (int, error) {
	return s.seeder.Seed(ctx, force)
}

// Rollback reverts migrations down to target.
func (s *Store) Rollback(ctx context.Context, target string) (int, error) {
	return s.runner.Rollback(ctx, target)
}

// IntegrityReport scans for dangling references.
func (s *Store) IntegrityReport(ctx context.Context, collections ...string) ([]validation.Orphan, error) {
	return s.validator.IntegrityReport(ctx, collections...)
}

// Sync runs one sync pass immediately. Errors with ErrSyncDisabled when
// sync is not configured.
func (s *Store) Sync(ctx context.Context) (*syncer.Report, error) {
	if s.sync == nil {
		return nil, types.ErrSyncDisabled
	}
	return s.sync.Sync(ctx)
}

// Ping probes the sync remote. Errors with ErrSyncDisabled when sync is
// not configured.
func (s *Store) Ping(ctx context.Context) error {
	if s.sync == nil {
		return types.ErrSyncDisabled
	}
	return s.sync.Ping(ctx)
}
