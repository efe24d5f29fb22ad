package validation

import "github.com/mesh-intelligence/chartstore/pkg/types"

// ClinicReferences declares the foreign-key edges between the standard
// collections. Appointments and claims pin their patient (and doctor)
// rows in place; policies follow their patient out; a deleted policy
// detaches from its claims rather than taking them along.
func ClinicReferences() []types.ReferenceConstraint {
	return []types.ReferenceConstraint{
		{Source: types.AppointmentsCollection, Field: "patientId", Target: types.PatientsCollection, OnDelete: types.OnDeleteRestrict},
		{Source: types.AppointmentsCollection, Field: "doctorId", Target: types.DoctorsCollection, OnDelete: types.OnDeleteRestrict},
		{Source: types.ClaimsCollection, Field: "patientId", Target: types.PatientsCollection, OnDelete: types.OnDeleteRestrict},
		{Source: types.ClaimsCollection, Field: "policyId", Target: types.PoliciesCollection, OnDelete: types.OnDeleteSetNull},
		{Source: types.PoliciesCollection, Field: "patientId", Target: types.PatientsCollection, OnDelete: types.OnDeleteCascade},
	}
}

// ClinicUniques declares the natural keys of the standard collections.
func ClinicUniques() []types.UniqueConstraint {
	return []types.UniqueConstraint{
		{Collection: types.PatientsCollection, Fields: []string{"mrn"}},
		{Collection: types.DoctorsCollection, Fields: []string{"licenseNumber"}},
		{Collection: types.PoliciesCollection, Fields: []string{"policyNumber"}},
	}
}
