package types

import "time"

// Sync entry states.
const (
	SyncPending = "pending"
	SyncSynced  = "synced"
	SyncError   = "error"
)

// SyncLogMax caps the persisted sync log. When the cap is exceeded the
// oldest entries fall off first, synced or not.
const SyncLogMax = 1000

// SyncLogEntry is one queued outbound mutation. The engine appends an entry
// per affected document on every successful mutation; the sync manager
// drains pending entries toward the remote peer.
type SyncLogEntry struct {
	ID         string    `json:"id"`
	Collection string    `json:"collection"`
	Action     string    `json:"action"`
	DocumentID string    `json:"documentId"`
	Timestamp  time.Time `json:"timestamp"`
	Status     string    `json:"status"`
}

// RemoteChange is the wire shape shared by push bodies and pull responses.
// Data is omitted for deletes. Timestamp is a TimeFormat string.
type RemoteChange struct {
	Action     string   `json:"action"`
	DocumentID string   `json:"documentId"`
	Data       Document `json:"data,omitempty"`
	Timestamp  string   `json:"timestamp"`
}
