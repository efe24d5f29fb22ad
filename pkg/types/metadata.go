package types

import "time"

// FormatVersion identifies the on-disk data layout. Bumped only when the
// storage key scheme changes incompatibly.
const FormatVersion = "1"

// Metadata is the engine's bookkeeping singleton, persisted under
// MetadataKey and created lazily on first access. LastMigration holds the
// highest applied migration version; Statistics maps collection names to
// document counts as of the last refresh.
type Metadata struct {
	Version       string         `json:"version"`
	LastMigration string         `json:"lastMigration"`
	Statistics    map[string]int `json:"statistics"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}
