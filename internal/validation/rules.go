package validation

import (
	"context"
	"fmt"
	"math"

	"github.com/mesh-intelligence/chartstore/internal/engine"
	"github.com/mesh-intelligence/chartstore/pkg/types"
)

// MaxClaimAmount is the hard ceiling on a single claim.
const MaxClaimAmount = 100000.0

// amountTolerance absorbs float drift when reconciling a claim amount
// against its service lines.
const amountTolerance = 0.01

const statusCancelled = "cancelled"

// AppointmentOverlap rejects an appointment whose time interval intersects
// another appointment for the same doctor on the same date. Cancelled
// appointments on either side conflict with nothing. Times are zero-padded
// HH:MM strings, so lexicographic comparison orders them correctly.
func AppointmentOverlap(ctx context.Context, eng *engine.Engine, doc types.Document, selfID string) error {
	if stringField(doc, "status") == statusCancelled {
		return nil
	}
	doctorID := stringField(doc, "doctorId")
	date := stringField(doc, "date")
	start := stringField(doc, "startTime")
	end := stringField(doc, "endTime")
	if doctorID == "" || date == "" || start == "" || end == "" {
		return nil
	}

	docs, err := eng.GetAll(ctx, types.AppointmentsCollection)
	if err != nil {
		return err
	}
	for _, other := range docs {
		if other.ID() == selfID ||
			stringField(other, "doctorId") != doctorID ||
			stringField(other, "date") != date ||
			stringField(other, "status") == statusCancelled {
			continue
		}
		otherStart := stringField(other, "startTime")
		otherEnd := stringField(other, "endTime")
		if start < otherEnd && otherStart < end {
			return &types.ValidationError{
				Collection: types.AppointmentsCollection,
				Errors: []types.FieldError{{
					Path: "startTime",
					Message: fmt.Sprintf("overlaps appointment %s for doctor %s on %s",
						other.ID(), doctorID, date),
				}},
			}
		}
	}
	return nil
}

// ClaimPolicyDates requires a claim's service date to fall inside the
// coverage period of its linked policy. Claims without a policy pass.
func ClaimPolicyDates(ctx context.Context, eng *engine.Engine, doc types.Document, selfID string) error {
	policyID := stringField(doc, "policyId")
	if policyID == "" {
		return nil
	}
	policy, err := eng.Get(ctx, types.PoliciesCollection, policyID)
	if err != nil {
		return err
	}
	if policy == nil {
		return &types.ValidationError{
			Collection: types.ClaimsCollection,
			Errors: []types.FieldError{{
				Path:    "policyId",
				Message: fmt.Sprintf("references unknown policy %s", policyID),
			}},
		}
	}

	serviceDate := stringField(doc, "serviceDate")
	startDate := stringField(policy, "startDate")
	endDate := stringField(policy, "endDate")
	if serviceDate == "" || startDate == "" || endDate == "" {
		return nil
	}
	if serviceDate < startDate || serviceDate > endDate {
		return &types.ValidationError{
			Collection: types.ClaimsCollection,
			Errors: []types.FieldError{{
				Path: "serviceDate",
				Message: fmt.Sprintf("is outside policy coverage %s to %s",
					startDate, endDate),
			}},
		}
	}
	return nil
}

// ClaimAmount enforces the claim ceiling and reconciles the declared
// amount against the itemized service-line totals. Claims without service
// lines skip reconciliation.
func ClaimAmount(ctx context.Context, eng *engine.Engine, doc types.Document, selfID string) error {
	amount, ok := types.Number(doc["amount"])
	if !ok {
		return nil
	}
	if amount > MaxClaimAmount {
		return &types.ValidationError{
			Collection: types.ClaimsCollection,
			Errors: []types.FieldError{{
				Path:    "amount",
				Message: fmt.Sprintf("exceeds the maximum claim amount of %.0f", MaxClaimAmount),
			}},
		}
	}

	lines, ok := doc["serviceLines"].([]any)
	if !ok || len(lines) == 0 {
		return nil
	}
	var sum float64
	for _, line := range lines {
		m, ok := line.(map[string]any)
		if !ok {
			continue
		}
		if n, ok := types.Number(m["total"]); ok {
			sum += n
		}
	}
	if math.Abs(sum-amount) > amountTolerance {
		return &types.ValidationError{
			Collection: types.ClaimsCollection,
			Errors: []types.FieldError{{
				Path:    "amount",
				Message: fmt.Sprintf("%.2f does not match the service line total %.2f", amount, sum),
			}},
		}
	}
	return nil
}

func stringField(d types.Document, field string) string {
	v, ok := d.Field(field)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
