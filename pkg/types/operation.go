package types

import "time"

// Transaction states.
const (
	TxnPending    = "pending"
	TxnCommitted  = "committed"
	TxnRolledBack = "rolledback"
)

// Operation is one step recorded inside a transaction. The concrete types
// carry the before and after images rollback needs.
type Operation interface {
	// Collection returns the collection the operation touched.
	Collection() string
}

// Created records a document insert. Rolling back removes Doc.
type Created struct {
	Col string
	Doc Document
}

// Collection implements Operation.
func (o Created) Collection() string { return o.Col }

// Updated records a document replacement. Rolling back restores Before.
type Updated struct {
	Col    string
	Before Document
	After  Document
}

// Collection implements Operation.
func (o Updated) Collection() string { return o.Col }

// Deleted records a document removal. Rolling back reinserts Doc.
type Deleted struct {
	Col string
	Doc Document
}

// Collection implements Operation.
func (o Deleted) Collection() string { return o.Col }

// Transaction is an operation log with snapshot rollback. It does not
// isolate: operations apply to live data as they happen, and rollback
// restores before-images in reverse order. One transaction may be active
// per engine at a time.
type Transaction struct {
	ID        string
	Status    string
	StartedAt time.Time
	Ops       []Operation
}
