package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/chartstore/pkg/types"
)

// seedClinic creates the doctor, patient, and policy the rule tests hang
// appointments and claims off.
func seedClinic(t *testing.T, v *Validator) {
	t.Helper()
	ctx := context.Background()

	_, err := v.CreateValidated(ctx, types.DoctorsCollection, doctorDoc("d1", "LIC-100"))
	require.NoError(t, err)
	_, err = v.CreateValidated(ctx, types.PatientsCollection, patientDoc("p1", "MRN-2024-001"))
	require.NoError(t, err)
	_, err = v.CreateValidated(ctx, types.PoliciesCollection, policyDoc("pol-1", "p1", "POL-100"))
	require.NoError(t, err)
}

func TestAppointmentOverlapRejected(t *testing.T) {
	v, _ := newTestValidator(t)
	seedClinic(t, v)
	ctx := context.Background()

	_, err := v.CreateValidated(ctx, types.AppointmentsCollection,
		appointmentDoc("a1", "p1", "d1", "2026-03-10", "09:00", "09:30"))
	require.NoError(t, err)

	_, err = v.CreateValidated(ctx, types.AppointmentsCollection,
		appointmentDoc("a2", "p1", "d1", "2026-03-10", "09:15", "09:45"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "overlaps appointment a1 for doctor d1 on 2026-03-10")
}

func TestAppointmentTouchingIntervalsAllowed(t *testing.T) {
	v, _ := newTestValidator(t)
	seedClinic(t, v)
	ctx := context.Background()

	_, err := v.CreateValidated(ctx, types.AppointmentsCollection,
		appointmentDoc("a1", "p1", "d1", "2026-03-10", "09:00", "09:30"))
	require.NoError(t, err)

	// Back-to-back slots share an endpoint without overlapping.
	_, err = v.CreateValidated(ctx, types.AppointmentsCollection,
		appointmentDoc("a2", "p1", "d1", "2026-03-10", "09:30", "10:00"))
	assert.NoError(t, err)
}

func TestAppointmentOverlapScopedToDoctorAndDate(t *testing.T) {
	v, _ := newTestValidator(t)
	seedClinic(t, v)
	ctx := context.Background()

	_, err := v.CreateValidated(ctx, types.DoctorsCollection, doctorDoc("d2", "LIC-200"))
	require.NoError(t, err)
	_, err = v.CreateValidated(ctx, types.AppointmentsCollection,
		appointmentDoc("a1", "p1", "d1", "2026-03-10", "09:00", "09:30"))
	require.NoError(t, err)

	_, err = v.CreateValidated(ctx, types.AppointmentsCollection,
		appointmentDoc("a2", "p1", "d2", "2026-03-10", "09:00", "09:30"))
	assert.NoError(t, err, "other doctor, same slot")

	_, err = v.CreateValidated(ctx, types.AppointmentsCollection,
		appointmentDoc("a3", "p1", "d1", "2026-03-11", "09:00", "09:30"))
	assert.NoError(t, err, "same doctor, other day")
}

func TestAppointmentCancelledDoesNotBlock(t *testing.T) {
	v, _ := newTestValidator(t)
	seedClinic(t, v)
	ctx := context.Background()

	cancelled := appointmentDoc("a1", "p1", "d1", "2026-03-10", "09:00", "09:30")
	cancelled["status"] = "cancelled"
	_, err := v.CreateValidated(ctx, types.AppointmentsCollection, cancelled)
	require.NoError(t, err)

	_, err = v.CreateValidated(ctx, types.AppointmentsCollection,
		appointmentDoc("a2", "p1", "d1", "2026-03-10", "09:00", "09:30"))
	assert.NoError(t, err, "cancelled appointments hold no slot")

	// And a cancelled newcomer may land on a live slot.
	late := appointmentDoc("a3", "p1", "d1", "2026-03-10", "09:00", "09:30")
	late["status"] = "cancelled"
	_, err = v.CreateValidated(ctx, types.AppointmentsCollection, late)
	assert.NoError(t, err)
}

func TestAppointmentUpdateExcludesSelf(t *testing.T) {
	v, _ := newTestValidator(t)
	seedClinic(t, v)
	ctx := context.Background()

	_, err := v.CreateValidated(ctx, types.AppointmentsCollection,
		appointmentDoc("a1", "p1", "d1", "2026-03-10", "09:00", "09:30"))
	require.NoError(t, err)

	updated, err := v.UpdateValidated(ctx, types.AppointmentsCollection, "a1",
		types.Document{"endTime": "09:45"})
	require.NoError(t, err, "an appointment does not overlap itself")
	assert.Equal(t, "09:45", updated["endTime"])
}

func TestClaimServiceDateOutsideCoverage(t *testing.T) {
	v, _ := newTestValidator(t)
	seedClinic(t, v)
	ctx := context.Background()

	for _, date := range []string{"2025-12-31", "2027-01-01"} {
		claim := claimDoc("c-"+date, "p1", "pol-1")
		claim["serviceDate"] = date
		_, err := v.CreateValidated(ctx, types.ClaimsCollection, claim)
		require.Error(t, err, "service date %s", date)
		assert.ErrorContains(t, err, "outside policy coverage 2026-01-01 to 2026-12-31")
	}

	edge := claimDoc("c-edge", "p1", "pol-1")
	edge["serviceDate"] = "2026-12-31"
	_, err := v.CreateValidated(ctx, types.ClaimsCollection, edge)
	assert.NoError(t, err, "coverage bounds are inclusive")
}

func TestClaimUnknownPolicyRejected(t *testing.T) {
	v, _ := newTestValidator(t)
	seedClinic(t, v)

	_, err := v.CreateValidated(context.Background(), types.ClaimsCollection,
		claimDoc("c1", "p1", "ghost"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "references unknown policy ghost")
}

func TestClaimWithoutPolicyPasses(t *testing.T) {
	v, _ := newTestValidator(t)
	seedClinic(t, v)

	_, err := v.CreateValidated(context.Background(), types.ClaimsCollection,
		claimDoc("c1", "p1", ""))
	assert.NoError(t, err)
}

func TestClaimAmountCeiling(t *testing.T) {
	v, _ := newTestValidator(t)
	seedClinic(t, v)

	claim := claimDoc("c1", "p1", "")
	claim["amount"] = 150000.0
	_, err := v.CreateValidated(context.Background(), types.ClaimsCollection, claim)
	require.Error(t, err)
	assert.ErrorContains(t, err, "exceeds the maximum claim amount of 100000")
}

func TestClaimAmountMustMatchServiceLines(t *testing.T) {
	v, _ := newTestValidator(t)
	seedClinic(t, v)
	ctx := context.Background()

	claim := claimDoc("c1", "p1", "")
	claim["serviceLines"] = []any{
		map[string]any{"code": "99213", "total": 100.0},
		map[string]any{"code": "99214", "total": 49.0},
	}
	_, err := v.CreateValidated(ctx, types.ClaimsCollection, claim)
	require.Error(t, err)
	assert.ErrorContains(t, err, "150.00 does not match the service line total 149.00")

	within := claimDoc("c2", "p1", "")
	within["serviceLines"] = []any{
		map[string]any{"code": "99213", "total": 100.0},
		map[string]any{"code": "99214", "total": 50.005},
	}
	_, err = v.CreateValidated(ctx, types.ClaimsCollection, within)
	assert.NoError(t, err, "sub-cent drift is tolerated")
}

func TestClaimWithoutServiceLinesSkipsReconciliation(t *testing.T) {
	v, _ := newTestValidator(t)
	seedClinic(t, v)

	claim := claimDoc("c1", "p1", "")
	delete(claim, "serviceLines")
	_, err := v.CreateValidated(context.Background(), types.ClaimsCollection, claim)
	assert.NoError(t, err)
}
