package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/chartstore/pkg/types"
)

func claimsSchema(t *testing.T) *Schema {
	t.Helper()

	s, err := DefaultRegistry().Lookup(types.ClaimsCollection)
	require.NoError(t, err)
	return s
}

func validClaim() types.Document {
	return types.Document{
		"patientId":   "pat-1",
		"policyId":    "pol-1",
		"serviceDate": "2026-03-10",
		"status":      "draft",
		"amount":      150.0,
		"serviceLines": []any{
			map[string]any{"code": "99213", "description": "office visit", "quantity": 1.0, "unitPrice": 150.0, "total": 150.0},
		},
	}
}

func TestValidateAcceptsValidDocument(t *testing.T) {
	assert.NoError(t, claimsSchema(t).Validate(validClaim()))
}

func TestValidateCollectsAllViolations(t *testing.T) {
	doc := types.Document{
		"status": "nonsense",
		"amount": "not a number",
	}
	err := claimsSchema(t).Validate(doc)
	require.Error(t, err)

	ve, ok := types.IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, types.ClaimsCollection, ve.Collection)
	assert.Equal(t, []types.FieldError{
		{Path: "amount", Message: "must be a number"},
		{Path: "patientId", Message: "is required"},
		{Path: "serviceDate", Message: "is required"},
		{Path: "status", Message: "must be one of draft, submitted, approved, denied, paid"},
	}, ve.Errors, "violations are reported sorted by path")
}

func TestValidateNestedObjectPath(t *testing.T) {
	reg := DefaultRegistry()
	s, err := reg.Lookup(types.PatientsCollection)
	require.NoError(t, err)

	doc := types.Document{
		"mrn":       "MRN-1001",
		"firstName": "Ana",
		"lastName":  "Diaz",
		"address":   map[string]any{"city": "Springfield", "zip": 62704},
	}
	verr := s.Validate(doc)
	require.Error(t, verr)

	ve, _ := types.IsValidation(verr)
	require.Len(t, ve.Errors, 1)
	assert.Equal(t, "address.zip", ve.Errors[0].Path)
	assert.Equal(t, "must be a string", ve.Errors[0].Message)
}

func TestValidateArrayElementPath(t *testing.T) {
	doc := validClaim()
	doc["serviceLines"] = []any{
		map[string]any{"code": "99213", "total": 100.0},
		map[string]any{"code": "99214"},
	}
	err := claimsSchema(t).Validate(doc)
	require.Error(t, err)

	ve, _ := types.IsValidation(err)
	require.Len(t, ve.Errors, 1)
	assert.Equal(t, "serviceLines.1.total", ve.Errors[0].Path)
	assert.Equal(t, "is required", ve.Errors[0].Message)
}

func TestValidateNumericBounds(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(types.Document)
		path    string
		message string
	}{
		{
			name:    "amount below minimum",
			mutate:  func(d types.Document) { d["amount"] = -5.0 },
			path:    "amount",
			message: "must be at least 0",
		},
		{
			name: "quantity below minimum",
			mutate: func(d types.Document) {
				d["serviceLines"] = []any{
					map[string]any{"code": "99213", "quantity": 0.0, "total": 10.0},
				}
			},
			path:    "serviceLines.0.quantity",
			message: "must be at least 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validClaim()
			tt.mutate(doc)
			err := claimsSchema(t).Validate(doc)
			require.Error(t, err)

			ve, _ := types.IsValidation(err)
			require.Len(t, ve.Errors, 1)
			assert.Equal(t, tt.path, ve.Errors[0].Path)
			assert.Equal(t, tt.message, ve.Errors[0].Message)
		})
	}
}

func TestValidatePartial(t *testing.T) {
	s := claimsSchema(t)

	// Required fields may be absent from a patch.
	assert.NoError(t, s.ValidatePartial(types.Document{"status": "submitted"}))

	// Present fields must still conform.
	err := s.ValidatePartial(types.Document{"status": "bogus"})
	require.Error(t, err)

	// A patched object is replaced wholesale, so it is validated in full.
	reg := DefaultRegistry()
	ps, lerr := reg.Lookup(types.PatientsCollection)
	require.NoError(t, lerr)
	perr := ps.ValidatePartial(types.Document{"address": map[string]any{"zip": 62704}})
	require.Error(t, perr)
}

func TestValidateToleratesUnknownFields(t *testing.T) {
	doc := validClaim()
	doc["futureField"] = "whatever"
	doc["priorityScore"] = 42

	assert.NoError(t, claimsSchema(t).Validate(doc))
}

func TestValidateIgnoresExplicitNullOptional(t *testing.T) {
	doc := validClaim()
	doc["policyId"] = nil

	assert.NoError(t, claimsSchema(t).Validate(doc))
}

func TestValidateNullRequiredField(t *testing.T) {
	doc := validClaim()
	doc["patientId"] = nil

	err := claimsSchema(t).Validate(doc)
	require.Error(t, err)
	ve, _ := types.IsValidation(err)
	require.Len(t, ve.Errors, 1)
	assert.Equal(t, "patientId", ve.Errors[0].Path)
	assert.Equal(t, "is required", ve.Errors[0].Message)
}
