// Package schema holds the declarative structural validators for each
// collection. A Schema describes field types, required fields, enums, and
// numeric bounds; the validation layer runs it before every validated
// write. Unknown fields pass through untouched so newer producers can add
// fields without breaking older readers.
package schema
