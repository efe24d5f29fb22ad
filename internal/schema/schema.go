package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/chartstore/pkg/types"
)

// Field types.
const (
	TypeString = "string"
	TypeNumber = "number"
	TypeBool   = "bool"
	TypeObject = "object"
	TypeArray  = "array"
)

// Field describes one document field. Enum restricts string values; Min
// and Max bound numbers inclusively; Elem types the elements of an array;
// Fields types the members of an object. Zero sub-constraints mean the
// value is only type-checked.
type Field struct {
	Type     string
	Required bool
	Enum     []string
	Min      *float64
	Max      *float64
	Elem     *Field
	Fields   map[string]*Field
}

// Schema is the declarative validator for one collection. Reserved
// document fields (id and the stamps) are engine-owned and never declared
// here.
type Schema struct {
	Collection string
	Fields     map[string]*Field
}

// Validate checks doc against the full schema, for creates. It returns
// nil or a *types.ValidationError listing every violation.
func (s *Schema) Validate(doc types.Document) error {
	return s.run(doc, false)
}

// ValidatePartial checks only the fields present in doc, for update
// patches. Required fields may be absent; present fields must still
// conform.
func (s *Schema) ValidatePartial(doc types.Document) error {
	return s.run(doc, true)
}

func (s *Schema) run(doc types.Document, partial bool) error {
	errs := checkFields(doc, s.Fields, "", partial)
	if len(errs) == 0 {
		return nil
	}
	sort.Slice(errs, func(i, j int) bool { return errs[i].Path < errs[j].Path })
	return &types.ValidationError{Collection: s.Collection, Errors: errs}
}

func checkFields(doc map[string]any, fields map[string]*Field, prefix string, partial bool) []types.FieldError {
	var errs []types.FieldError
	for name, f := range fields {
		path := joinPath(prefix, name)
		v, ok := doc[name]
		if !ok || v == nil {
			if f.Required && !partial {
				errs = append(errs, types.FieldError{Path: path, Message: "is required"})
			}
			continue
		}
		errs = append(errs, checkValue(v, f, path)...)
	}
	return errs
}

func checkValue(v any, f *Field, path string) []types.FieldError {
	switch f.Type {
	case TypeString:
		s, ok := v.(string)
		if !ok {
			return []types.FieldError{{Path: path, Message: "must be a string"}}
		}
		if len(f.Enum) > 0 && !contains(f.Enum, s) {
			return []types.FieldError{{
				Path:    path,
				Message: "must be one of " + strings.Join(f.Enum, ", "),
			}}
		}

	case TypeNumber:
		n, ok := types.Number(v)
		if !ok {
			return []types.FieldError{{Path: path, Message: "must be a number"}}
		}
		if f.Min != nil && n < *f.Min {
			return []types.FieldError{{
				Path:    path,
				Message: fmt.Sprintf("must be at least %g", *f.Min),
			}}
		}
		if f.Max != nil && n > *f.Max {
			return []types.FieldError{{
				Path:    path,
				Message: fmt.Sprintf("must be at most %g", *f.Max),
			}}
		}

	case TypeBool:
		if _, ok := v.(bool); !ok {
			return []types.FieldError{{Path: path, Message: "must be a boolean"}}
		}

	case TypeObject:
		obj, ok := v.(map[string]any)
		if !ok {
			return []types.FieldError{{Path: path, Message: "must be an object"}}
		}
		// Nested objects are validated in full even inside a partial
		// patch: a patch replaces the whole object value.
		return checkFields(obj, f.Fields, path, false)

	case TypeArray:
		arr, ok := v.([]any)
		if !ok {
			return []types.FieldError{{Path: path, Message: "must be an array"}}
		}
		if f.Elem == nil {
			return nil
		}
		var errs []types.FieldError
		for i, el := range arr {
			errs = append(errs, checkValue(el, f.Elem, joinPath(path, strconv.Itoa(i)))...)
		}
		return errs

	default:
		return []types.FieldError{{
			Path:    path,
			Message: fmt.Sprintf("schema declares unknown type %q", f.Type),
		}}
	}
	return nil
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
