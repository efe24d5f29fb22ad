package types

// Delete policies for ReferenceConstraint.OnDelete.
const (
	OnDeleteRestrict = "restrict"
	OnDeleteCascade  = "cascade"
	OnDeleteSetNull  = "set-null"
)

// Constraint kinds carried by IntegrityError.
const (
	ConstraintUnique    = "unique"
	ConstraintReference = "reference"
)

// ReferenceConstraint declares that Source.Field holds the id of a document
// in Target. OnDelete selects what happens to referencing documents when
// the target is deleted: restrict blocks the delete, cascade removes the
// referencing documents, set-null clears the field.
type ReferenceConstraint struct {
	Source   string `json:"source"`
	Field    string `json:"field"`
	Target   string `json:"target"`
	OnDelete string `json:"onDelete"`
}

// UniqueConstraint declares that the combination of Fields must be unique
// across the documents of Collection. Documents missing every listed field
// are exempt from the check.
type UniqueConstraint struct {
	Collection string   `json:"collection"`
	Fields     []string `json:"fields"`
}
