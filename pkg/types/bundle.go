package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// Top-level bundle keys that never hold collection data.
const (
	bundleMetadataKey   = "metadata"
	bundleExportedAtKey = "exportedAt"
)

// Bundle is a full-store snapshot produced by Export and consumed by
// Import. Its JSON form is flat: one top-level key per collection holding
// the document array, plus "metadata" and "exportedAt".
type Bundle struct {
	Collections map[string][]Document
	Metadata    *Metadata
	ExportedAt  time.Time
}

// MarshalJSON flattens the bundle into its wire form. Collections named
// "metadata" or "exportedAt" cannot be represented and are rejected.
func (b Bundle) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(b.Collections)+2)
	for name, docs := range b.Collections {
		if name == bundleMetadataKey || name == bundleExportedAtKey {
			return nil, fmt.Errorf("collection name %q collides with a bundle key", name)
		}
		if docs == nil {
			docs = []Document{}
		}
		flat[name] = docs
	}
	if b.Metadata != nil {
		flat[bundleMetadataKey] = b.Metadata
	}
	flat[bundleExportedAtKey] = b.ExportedAt.UTC().Format(TimeFormat)
	return json.Marshal(flat)
}

// UnmarshalJSON is the inverse of MarshalJSON. Every key other than
// "metadata" and "exportedAt" must decode as a document array.
func (b *Bundle) UnmarshalJSON(data []byte) error {
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	b.Collections = make(map[string][]Document)
	b.Metadata = nil
	b.ExportedAt = time.Time{}
	for key, raw := range flat {
		switch key {
		case bundleMetadataKey:
			var md Metadata
			if err := json.Unmarshal(raw, &md); err != nil {
				return fmt.Errorf("decode bundle metadata: %w", err)
			}
			b.Metadata = &md
		case bundleExportedAtKey:
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return fmt.Errorf("decode bundle exportedAt: %w", err)
			}
			t, err := time.Parse(TimeFormat, s)
			if err != nil {
				return fmt.Errorf("parse bundle exportedAt: %w", err)
			}
			b.ExportedAt = t
		default:
			var docs []Document
			if err := json.Unmarshal(raw, &docs); err != nil {
				return fmt.Errorf("decode bundle collection %s: %w", key, err)
			}
			b.Collections[key] = docs
		}
	}
	return nil
}
