package validation

import (
	"context"
	"reflect"
	"strings"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/chartstore/internal/engine"
	"github.com/mesh-intelligence/chartstore/internal/schema"
	"github.com/mesh-intelligence/chartstore/pkg/types"
)

// Rule checks one business invariant on the document about to be written.
// selfID is empty for creates and carries the stored id for updates so a
// rule can exclude the document itself from collection scans.
type Rule func(ctx context.Context, eng *engine.Engine, doc types.Document, selfID string) error

// Validator owns the pre-write checks for every validated CRUD entry
// point. Construct with New or DefaultValidator.
type Validator struct {
	engine   *engine.Engine
	registry *schema.Registry
	uniques  []types.UniqueConstraint
	refs     []types.ReferenceConstraint
	rules    map[string][]Rule
	logger   *zap.SugaredLogger
}

// Option adjusts validator construction.
type Option func(*Validator)

// WithLogger sets the validator logger. A nil logger is replaced by a
// no-op.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithUniques adds unique constraints.
func WithUniques(uniques ...types.UniqueConstraint) Option {
	return func(v *Validator) {
		v.uniques = append(v.uniques, uniques...)
	}
}

// WithReferences adds referential-integrity constraints.
func WithReferences(refs ...types.ReferenceConstraint) Option {
	return func(v *Validator) {
		v.refs = append(v.refs, refs...)
	}
}

// WithRule registers a business rule for col. Rules run in registration
// order after schema and uniqueness checks.
func WithRule(col string, rule Rule) Option {
	return func(v *Validator) {
		v.rules[col] = append(v.rules[col], rule)
	}
}

// New builds a validator over eng using the given schema registry.
func New(eng *engine.Engine, reg *schema.Registry, opts ...Option) *Validator {
	v := &Validator{
		engine:   eng,
		registry: reg,
		rules:    make(map[string][]Rule),
		logger:   zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// DefaultValidator wires the clinic schemas, constraints, and business
// rules.
func DefaultValidator(eng *engine.Engine, logger *zap.SugaredLogger) *Validator {
	return New(eng, schema.DefaultRegistry(),
		WithLogger(logger),
		WithUniques(ClinicUniques()...),
		WithReferences(ClinicReferences()...),
		WithRule(types.AppointmentsCollection, AppointmentOverlap),
		WithRule(types.ClaimsCollection, ClaimPolicyDates),
		WithRule(types.ClaimsCollection, ClaimAmount),
	)
}

// Engine exposes the underlying engine for callers that need the raw
// primitives next to the validated ones.
func (v *Validator) Engine() *engine.Engine {
	return v.engine
}

func (v *Validator) runRules(ctx context.Context, col string, doc types.Document, selfID string) error {
	for _, rule := range v.rules[col] {
		if err := rule(ctx, v.engine, doc, selfID); err != nil {
			return err
		}
	}
	return nil
}

// checkUniques scans col for another document matching every field of a
// declared unique constraint. Documents carrying none of the listed
// fields are exempt.
func (v *Validator) checkUniques(ctx context.Context, col string, doc types.Document, selfID string) error {
	for _, uc := range v.uniques {
		if uc.Collection != col {
			continue
		}
		values := make(map[string]any, len(uc.Fields))
		for _, f := range uc.Fields {
			if val, ok := doc.Field(f); ok && val != nil {
				values[f] = val
			}
		}
		if len(values) == 0 {
			continue
		}

		docs, err := v.engine.GetAll(ctx, col)
		if err != nil {
			return err
		}
		for _, other := range docs {
			if other.ID() == selfID {
				continue
			}
			if matchesAll(other, uc.Fields, values) {
				return &types.IntegrityError{
					Constraint: types.ConstraintUnique,
					Collection: col,
					DocumentID: other.ID(),
					Field:      strings.Join(uc.Fields, ", "),
				}
			}
		}
	}
	return nil
}

func matchesAll(d types.Document, fields []string, values map[string]any) bool {
	for _, f := range fields {
		want, declared := values[f]
		if !declared {
			return false
		}
		got, ok := d.Field(f)
		if !ok || !sameValue(got, want) {
			return false
		}
	}
	return true
}

// sameValue compares loosely across numeric kinds, matching the query
// layer's equality.
func sameValue(a, b any) bool {
	if an, ok := types.Number(a); ok {
		bn, ok := types.Number(b)
		return ok && an == bn
	}
	return reflect.DeepEqual(a, b)
}
