// Package storage provides the StorageAdapter implementations the engine
// persists through: an in-memory map for tests and ephemeral stores, a
// SQLite-backed key/value table for durable local data, and a Redis client
// for shared deployments. All adapters store opaque JSON blobs; the engine
// owns serialization.
package storage
