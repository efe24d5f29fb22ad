// Package engine implements the document engine on top of a StorageAdapter:
// CRUD and batch operations, filtered queries with pagination and
// projection, secondary indexes, a TTL read cache, change notification,
// compensating transactions, the outbound sync log, export/import, and
// store metadata.
//
// Collections are stored as whole JSON arrays under their collection name.
// The engine serializes access with one RWMutex, so a single engine value
// can be shared across goroutines; two engines over the same adapter are
// not coordinated.
package engine
