package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/mesh-intelligence/chartstore/pkg/types"
)

// Memory is a map-backed adapter. Values are copied on the way in and out
// so callers can never alias the stored bytes.
type Memory struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// NewMemory returns an empty in-memory adapter.
func NewMemory() *Memory {
	return &Memory{
		data: make(map[string][]byte),
	}
}

// Get implements types.StorageAdapter.
func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, types.ErrAdapterClosed
	}
	v, ok := m.data[key]
	if !ok {
		return nil, types.ErrKeyNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Set implements types.StorageAdapter.
func (m *Memory) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return types.ErrAdapterClosed
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored
	return nil
}

// Delete implements types.StorageAdapter. Absent keys are ignored.
func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return types.ErrAdapterClosed
	}
	delete(m.data, key)
	return nil
}

// Keys implements types.StorageAdapter.
func (m *Memory) Keys(ctx context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, types.ErrAdapterClosed
	}
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Clear implements types.StorageAdapter.
func (m *Memory) Clear(ctx context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return types.ErrAdapterClosed
	}
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
	return nil
}

// Close implements types.StorageAdapter. Close is idempotent.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.data = nil
	return nil
}
