package types

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Reserved document fields managed by the engine. The engine stamps
// createdAt and updatedAt on every write; caller-supplied values for those
// fields are overwritten. A caller-supplied id is preserved.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// TimeFormat is the wire format for document timestamps.
const TimeFormat = time.RFC3339Nano

// Document is a single schemaless record. Keys are field names; values are
// the JSON-compatible kinds produced by encoding/json: string, float64,
// bool, nil, map[string]any, and []any.
type Document map[string]any

// NewID returns a fresh document ID. IDs are UUID v7 and therefore sort by
// creation time.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ID returns the document's id field, or "" when unset or not a string.
func (d Document) ID() string {
	id, _ := d[FieldID].(string)
	return id
}

// SetID sets the document's id field.
func (d Document) SetID(id string) {
	d[FieldID] = id
}

// CreatedAt returns the parsed createdAt timestamp, or the zero time when
// the field is absent or malformed.
func (d Document) CreatedAt() time.Time {
	return d.timeField(FieldCreatedAt)
}

// UpdatedAt returns the parsed updatedAt timestamp, or the zero time when
// the field is absent or malformed.
func (d Document) UpdatedAt() time.Time {
	return d.timeField(FieldUpdatedAt)
}

func (d Document) timeField(field string) time.Time {
	s, ok := d[field].(string)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(TimeFormat, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Stamp sets updatedAt to now and fills createdAt when it is empty.
// Timestamps are stored as TimeFormat strings in UTC.
func (d Document) Stamp(now time.Time) {
	ts := now.UTC().Format(TimeFormat)
	if s, ok := d[FieldCreatedAt].(string); !ok || s == "" {
		d[FieldCreatedAt] = ts
	}
	d[FieldUpdatedAt] = ts
}

// Clone returns a deep copy of the document. Nested maps and slices are
// copied recursively; scalar values are shared.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case Document:
		return map[string]any(val.Clone())
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// Field returns the value at a dot-separated path such as
// "address.city" or "serviceLines.0.code". The second return is false when
// any path segment is missing or not traversable.
func (d Document) Field(path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	var cur any = map[string]any(d)
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case Document:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// Merge applies patch onto the document in place. The id and createdAt
// fields are never overwritten by the patch. Nested values are replaced
// wholesale, not merged.
func (d Document) Merge(patch Document) {
	for k, v := range patch {
		if k == FieldID || k == FieldCreatedAt {
			continue
		}
		d[k] = cloneValue(v)
	}
}

// Number coerces a document value to float64. JSON numbers decode as
// float64 already; int variants cover values built in Go code.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
