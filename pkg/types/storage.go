package types

import "context"

// StorageAdapter is the persistence boundary for the engine. Keys are
// collection names plus the reserved bookkeeping keys; values are JSON
// blobs produced by the engine. Implementations must be safe for
// concurrent use.
type StorageAdapter interface {
	// Get returns the value stored under key.
	// Returns ErrKeyNotFound if the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns every stored key beginning with prefix, sorted
	// ascending. An empty prefix returns all keys.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Clear deletes every key beginning with prefix. An empty prefix
	// wipes the store.
	Clear(ctx context.Context, prefix string) error

	// Close releases adapter resources. Operations after Close return
	// ErrAdapterClosed.
	Close() error
}
