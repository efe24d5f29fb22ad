package types

// Actions carried by change events and sync log entries.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionImport = "import"
)

// ChangeEvent describes one committed mutation on a collection. Doc is set
// for single-document actions; Docs carries the affected snapshot for batch
// and import actions. Documents in events are copies and may be retained.
type ChangeEvent struct {
	Collection string
	Action     string
	Doc        Document
	Docs       []Document
}

// Subscriber receives change events for one collection. Subscribers run
// synchronously on the mutating goroutine, after the mutation and before
// the mutating call returns. A subscriber must not invoke mutating engine
// operations; doing so would observe its own event mid-delivery.
type Subscriber func(ChangeEvent)
