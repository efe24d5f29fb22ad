package schema

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mesh-intelligence/chartstore/pkg/types"
)

// Registry maps collection names to their schemas. Registration normally
// happens once at startup; Lookup is safe from any goroutine.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*Schema
}

func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*Schema)}
}

// Register adds or replaces the schema for its collection.
func (r *Registry) Register(s *Schema) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.schemas[s.Collection] = s
}

// Lookup returns the schema for col, or ErrSchemaNotFound.
func (r *Registry) Lookup(col string) (*Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.schemas[col]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrSchemaNotFound, col)
	}
	return s, nil
}

// Collections lists the registered collection names, sorted.
func (r *Registry) Collections() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cols := make([]string, 0, len(r.schemas))
	for col := range r.schemas {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}
