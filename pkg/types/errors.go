package types

import (
	"errors"
	"fmt"
	"strings"
)

// Storage adapter errors.
var (
	ErrKeyNotFound   = errors.New("key not found")
	ErrAdapterClosed = errors.New("storage adapter is closed")
)

// Engine operation errors.
var (
	ErrDuplicateID         = errors.New("document id already exists")
	ErrCollectionReserved  = errors.New("collection name is reserved")
	ErrIndexNotFound       = errors.New("index not found")
	ErrTransactionActive   = errors.New("a transaction is already active")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrTransactionClosed   = errors.New("transaction is already finished")
)

// Configuration errors.
var (
	ErrAdapterEmpty          = errors.New("adapter must not be empty")
	ErrAdapterUnknown        = errors.New("unknown storage adapter")
	ErrEndpointEmpty         = errors.New("sync endpoint must not be empty")
	ErrSyncIntervalInvalid   = errors.New("sync interval must be positive")
	ErrConflictPolicyUnknown = errors.New("unknown conflict policy")
	ErrSyncDisabled          = errors.New("sync is not enabled")
)

// Schema errors.
var (
	ErrSchemaNotFound = errors.New("no schema registered for collection")
)

// FieldError describes a single schema or rule violation. Path uses dot
// notation with numeric segments for array elements, e.g.
// "serviceLines.2.code".
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError reports one or more violations found before a write.
// Writes rejected with a ValidationError leave the store untouched.
type ValidationError struct {
	Collection string
	Errors     []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("validation failed for %s", e.Collection)
	}
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Path + ": " + fe.Message
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Collection, strings.Join(parts, "; "))
}

// IsValidation unwraps err to a ValidationError when it carries one.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// IntegrityError reports a constraint violation: a unique collision on
// create or update, or a delete blocked by referential integrity.
// Constraint carries the violated kind; BlockedBy names the collections
// still holding references when a delete is restricted.
type IntegrityError struct {
	Constraint string
	Collection string
	DocumentID string
	Field      string
	BlockedBy  []string
}

func (e *IntegrityError) Error() string {
	if e.Constraint == ConstraintUnique {
		return fmt.Sprintf("unique constraint violated on %s.%s", e.Collection, e.Field)
	}
	return fmt.Sprintf("cannot delete %s/%s: referenced by %s",
		e.Collection, e.DocumentID, strings.Join(e.BlockedBy, ", "))
}

// IsIntegrity unwraps err to an IntegrityError when it carries one.
func IsIntegrity(err error) (*IntegrityError, bool) {
	var ie *IntegrityError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}
