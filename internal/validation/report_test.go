package validation

import (
	"context"
	"testing"

	"github.com/mesh-intelligence/chartstore/pkg/types"
)

func TestIntegrityReportFindsOrphans(t *testing.T) {
	v, eng := newTestValidator(t)
	ctx := context.Background()

	// Dangling references enter through the raw engine, never through the
	// validated wrappers.
	if _, err := eng.Create(ctx, types.ClaimsCollection, claimDoc("c1", "ghost", "")); err != nil {
		t.Fatalf("raw create failed: %v", err)
	}
	if _, err := eng.Create(ctx, types.AppointmentsCollection,
		appointmentDoc("a1", "ghost", "d-missing", "2026-03-10", "09:00", "09:30")); err != nil {
		t.Fatalf("raw create failed: %v", err)
	}

	orphans, err := v.IntegrityReport(ctx)
	if err != nil {
		t.Fatalf("IntegrityReport failed: %v", err)
	}
	if len(orphans) != 3 {
		t.Fatalf("orphans = %d, want 3: %+v", len(orphans), orphans)
	}

	// Constraint declaration order: appointment patient, appointment
	// doctor, then claim patient.
	first := orphans[0]
	if first.Collection != types.AppointmentsCollection || first.Field != "patientId" ||
		first.MissingID != "ghost" || first.DocumentID != "a1" {
		t.Errorf("first orphan = %+v", first)
	}
	second := orphans[1]
	if second.Field != "doctorId" || second.MissingID != "d-missing" {
		t.Errorf("second orphan = %+v", second)
	}
	third := orphans[2]
	if third.Collection != types.ClaimsCollection || third.Target != types.PatientsCollection {
		t.Errorf("third orphan = %+v", third)
	}
}

func TestIntegrityReportCleanStore(t *testing.T) {
	v, _ := newTestValidator(t)
	seedClinic(t, v)
	ctx := context.Background()

	if _, err := v.CreateValidated(ctx, types.ClaimsCollection, claimDoc("c1", "p1", "pol-1")); err != nil {
		t.Fatalf("CreateValidated failed: %v", err)
	}

	orphans, err := v.IntegrityReport(ctx)
	if err != nil {
		t.Fatalf("IntegrityReport failed: %v", err)
	}
	if len(orphans) != 0 {
		t.Errorf("orphans = %+v, want none", orphans)
	}
}

func TestIntegrityReportScopedToCollections(t *testing.T) {
	v, eng := newTestValidator(t)
	ctx := context.Background()

	if _, err := eng.Create(ctx, types.ClaimsCollection, claimDoc("c1", "ghost", "")); err != nil {
		t.Fatalf("raw create failed: %v", err)
	}
	if _, err := eng.Create(ctx, types.AppointmentsCollection,
		appointmentDoc("a1", "ghost", "d-missing", "2026-03-10", "09:00", "09:30")); err != nil {
		t.Fatalf("raw create failed: %v", err)
	}

	orphans, err := v.IntegrityReport(ctx, types.ClaimsCollection)
	if err != nil {
		t.Fatalf("IntegrityReport failed: %v", err)
	}
	if len(orphans) != 1 || orphans[0].Collection != types.ClaimsCollection {
		t.Errorf("scoped orphans = %+v, want one claims entry", orphans)
	}
}

func TestIntegrityReportIgnoresNullReferences(t *testing.T) {
	v, eng := newTestValidator(t)
	seedClinic(t, v)
	ctx := context.Background()

	claim := claimDoc("c1", "p1", "")
	claim["policyId"] = nil
	if _, err := eng.Create(ctx, types.ClaimsCollection, claim); err != nil {
		t.Fatalf("raw create failed: %v", err)
	}

	orphans, err := v.IntegrityReport(ctx)
	if err != nil {
		t.Fatalf("IntegrityReport failed: %v", err)
	}
	if len(orphans) != 0 {
		t.Errorf("orphans = %+v, want none for nulled reference", orphans)
	}
}
