package types

import "strings"

// Clinic collection names seeded and validated out of the box. The engine
// itself accepts any collection name that is not a reserved storage key.
const (
	DoctorsCollection      = "doctors"
	PatientsCollection     = "patients"
	PoliciesCollection     = "policies"
	AppointmentsCollection = "appointments"
	ClaimsCollection       = "claims"
)

// StandardCollections lists the clinic collections in dependency order:
// referenced collections come before the collections that point at them.
var StandardCollections = []string{
	DoctorsCollection,
	PatientsCollection,
	PoliciesCollection,
	AppointmentsCollection,
	ClaimsCollection,
}

// Reserved storage keys. These hold engine bookkeeping, never collection
// data.
const (
	MetadataKey      = "_metadata"
	SyncLogKey       = "_synclog"
	IndexRegistryKey = "_indexes"
	IndexKeyPrefix   = "index:"
)

// IsReservedKey reports whether key addresses engine bookkeeping rather
// than a collection.
func IsReservedKey(key string) bool {
	return strings.HasPrefix(key, "_") || strings.HasPrefix(key, IndexKeyPrefix)
}
