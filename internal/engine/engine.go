package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/chartstore/pkg/types"
)

// Engine is the document engine over one StorageAdapter. Construct with New
// and share the value; do not copy it.
type Engine struct {
	mu      sync.RWMutex
	adapter types.StorageAdapter
	cache   *docCache
	subs    subscriberSet
	indexes map[string]types.IndexSpec
	txn     *types.Transaction
	logger  *zap.SugaredLogger
	now     func() time.Time
	newID   func() string
}

// Option adjusts engine construction.
type Option func(*Engine)

// WithLogger sets the engine logger. A nil logger is replaced by a no-op.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithCacheTTL overrides the document cache TTL. Zero or negative disables
// expiry-based reuse checks in tests only; production callers should keep
// the default.
func WithCacheTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.cache.ttl = ttl
	}
}

// WithClock substitutes the time source. Used by tests to make stamps
// deterministic.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDFunc substitutes the id generator. Used by tests for stable ids.
func WithIDFunc(gen func() string) Option {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// New builds an engine over adapter and loads the persisted index registry.
// The ctx only covers that initial read.
func New(ctx context.Context, adapter types.StorageAdapter, opts ...Option) (*Engine, error) {
	e := &Engine{
		adapter: adapter,
		cache:   newDocCache(types.DefaultCacheTTL),
		indexes: make(map[string]types.IndexSpec),
		logger:  zap.NewNop().Sugar(),
		now:     time.Now,
		newID:   types.NewID,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.cache.now = e.now

	if err := e.loadIndexSpecs(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// Close releases the underlying adapter.
func (e *Engine) Close() error {
	return e.adapter.Close()
}

// checkCollection rejects reserved storage keys used as collection names.
func checkCollection(col string) error {
	if col == "" || types.IsReservedKey(col) {
		return fmt.Errorf("%w: %q", types.ErrCollectionReserved, col)
	}
	return nil
}

// readCollection loads a collection array. A missing key reads as empty; a
// corrupt payload is logged and reads as empty rather than wedging every
// caller on one bad row.
func (e *Engine) readCollection(ctx context.Context, col string) ([]types.Document, error) {
	raw, err := e.adapter.Get(ctx, col)
	if errors.Is(err, types.ErrKeyNotFound) {
		return []types.Document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", col, err)
	}
	var docs []types.Document
	if err := json.Unmarshal(raw, &docs); err != nil {
		e.logger.Warnw("corrupt collection payload, treating as empty",
			"collection", col, "error", err)
		return []types.Document{}, nil
	}
	return docs, nil
}

func (e *Engine) writeCollection(ctx context.Context, col string, docs []types.Document) error {
	if docs == nil {
		docs = []types.Document{}
	}
	raw, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("encode %s: %w", col, err)
	}
	if err := e.adapter.Set(ctx, col, raw); err != nil {
		return fmt.Errorf("write %s: %w", col, err)
	}
	return nil
}

// findDoc returns the index of id within docs, or -1.
func findDoc(docs []types.Document, id string) int {
	for i, d := range docs {
		if d.ID() == id {
			return i
		}
	}
	return -1
}

// collections lists every non-reserved storage key.
func (e *Engine) collections(ctx context.Context) ([]string, error) {
	keys, err := e.adapter.Keys(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	var cols []string
	for _, k := range keys {
		if !types.IsReservedKey(k) {
			cols = append(cols, k)
		}
	}
	return cols, nil
}

// cloneDocs deep-copies a document slice for handing across the API
// boundary.
func cloneDocs(docs []types.Document) []types.Document {
	out := make([]types.Document, len(docs))
	for i, d := range docs {
		out[i] = d.Clone()
	}
	return out
}
