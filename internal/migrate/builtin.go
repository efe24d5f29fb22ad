package migrate

import (
	"context"
	"errors"

	"github.com/mesh-intelligence/chartstore/internal/engine"
	"github.com/mesh-intelligence/chartstore/pkg/types"
)

// Builtin returns the standard migration list. Index builds replace any
// existing index of the same name, so replaying a step is harmless.
func Builtin() []Migration {
	return []Migration{
		{
			Version: "1.0.0",
			Name:    "core lookup indexes",
			Up: buildIndexes(
				indexSpec{types.PatientsCollection, "mrn", "patients_by_mrn"},
				indexSpec{types.AppointmentsCollection, "doctorId", "appointments_by_doctor"},
			),
			Down: dropIndexes("patients_by_mrn", "appointments_by_doctor"),
		},
		{
			Version: "1.1.0",
			Name:    "billing indexes",
			Up: buildIndexes(
				indexSpec{types.ClaimsCollection, "status", "claims_by_status"},
				indexSpec{types.PoliciesCollection, "patientId", "policies_by_patient"},
			),
			Down: dropIndexes("claims_by_status", "policies_by_patient"),
		},
		{
			Version: "1.2.0",
			Name:    "appointment calendar index",
			Up: buildIndexes(
				indexSpec{types.AppointmentsCollection, "date", "appointments_by_date"},
			),
			Down: dropIndexes("appointments_by_date"),
		},
	}
}

type indexSpec struct {
	collection string
	field      string
	name       string
}

func buildIndexes(specs ...indexSpec) func(context.Context, *engine.Engine) error {
	return func(ctx context.Context, eng *engine.Engine) error {
		for _, s := range specs {
			if err := eng.CreateIndex(ctx, s.collection, s.field, s.name); err != nil {
				return err
			}
		}
		return nil
	}
}

// dropIndexes tolerates an already-missing index so a partially applied
// step can still roll back.
func dropIndexes(names ...string) func(context.Context, *engine.Engine) error {
	return func(ctx context.Context, eng *engine.Engine) error {
		for _, name := range names {
			if err := eng.DropIndex(ctx, name); err != nil && !errors.Is(err, types.ErrIndexNotFound) {
				return err
			}
		}
		return nil
	}
}
