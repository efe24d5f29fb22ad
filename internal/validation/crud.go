package validation

import (
	"context"

	"github.com/mesh-intelligence/chartstore/pkg/types"
)

// CreateValidated runs schema, uniqueness, and business-rule checks, in
// that order, then performs the create. The first failing check aborts and
// nothing is written.
func (v *Validator) CreateValidated(ctx context.Context, col string, doc types.Document) (types.Document, error) {
	s, err := v.registry.Lookup(col)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(doc); err != nil {
		return nil, err
	}
	if err := v.checkUniques(ctx, col, doc, ""); err != nil {
		return nil, err
	}
	if err := v.runRules(ctx, col, doc, ""); err != nil {
		return nil, err
	}
	return v.engine.Create(ctx, col, doc)
}

// UpdateValidated validates the patch on its own, then the merged result
// against uniqueness and business rules, then performs the update. A
// missing id returns nil, nil without running constraint checks.
func (v *Validator) UpdateValidated(ctx context.Context, col, id string, patch types.Document) (types.Document, error) {
	s, err := v.registry.Lookup(col)
	if err != nil {
		return nil, err
	}
	if err := s.ValidatePartial(patch); err != nil {
		return nil, err
	}

	current, err := v.engine.Get(ctx, col, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, nil
	}
	merged := current.Clone()
	merged.Merge(patch)

	if err := v.checkUniques(ctx, col, merged, id); err != nil {
		return nil, err
	}
	if err := v.runRules(ctx, col, merged, id); err != nil {
		return nil, err
	}
	return v.engine.Update(ctx, col, id, patch)
}

// DeleteValidated enforces referential integrity before deleting: restrict
// constraints block the delete, cascade constraints remove the dependents,
// set-null constraints clear the referencing field.
func (v *Validator) DeleteValidated(ctx context.Context, col, id string) (bool, error) {
	if err := v.CheckDeleteConstraints(ctx, col, id); err != nil {
		return false, err
	}
	if err := v.HandleDeleteCascade(ctx, col, id); err != nil {
		return false, err
	}
	return v.engine.Delete(ctx, col, id)
}

// CheckDeleteConstraints reports an IntegrityError naming every restrict
// source collection that still references col/id.
func (v *Validator) CheckDeleteConstraints(ctx context.Context, col, id string) error {
	var blockedBy []string
	for _, ref := range v.refs {
		if ref.Target != col || ref.OnDelete != types.OnDeleteRestrict {
			continue
		}
		referenced, err := v.anyReference(ctx, ref, id)
		if err != nil {
			return err
		}
		if referenced {
			blockedBy = append(blockedBy, ref.Source)
		}
	}
	if len(blockedBy) > 0 {
		return &types.IntegrityError{
			Constraint: types.ConstraintReference,
			Collection: col,
			DocumentID: id,
			BlockedBy:  blockedBy,
		}
	}
	return nil
}

func (v *Validator) anyReference(ctx context.Context, ref types.ReferenceConstraint, id string) (bool, error) {
	docs, err := v.engine.GetAll(ctx, ref.Source)
	if err != nil {
		return false, err
	}
	for _, d := range docs {
		if val, ok := d.Field(ref.Field); ok {
			if s, ok := val.(string); ok && s == id {
				return true, nil
			}
		}
	}
	return false, nil
}

// HandleDeleteCascade performs the side effects of cascade and set-null
// constraints targeting col/id. Cascade removals are single-level engine
// deletes; they do not re-run constraint checks on the removed documents.
func (v *Validator) HandleDeleteCascade(ctx context.Context, col, id string) error {
	for _, ref := range v.refs {
		if ref.Target != col {
			continue
		}
		switch ref.OnDelete {
		case types.OnDeleteCascade:
			ids, err := v.referencingIDs(ctx, ref, id)
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				continue
			}
			n, err := v.engine.DeleteMany(ctx, ref.Source, ids)
			if err != nil {
				return err
			}
			v.logger.Infow("cascade delete",
				"target", col, "id", id, "source", ref.Source, "removed", n)

		case types.OnDeleteSetNull:
			ids, err := v.referencingIDs(ctx, ref, id)
			if err != nil {
				return err
			}
			for _, refID := range ids {
				if _, err := v.engine.Update(ctx, ref.Source, refID, types.Document{ref.Field: nil}); err != nil {
					return err
				}
			}
			if len(ids) > 0 {
				v.logger.Infow("cleared references",
					"target", col, "id", id, "source", ref.Source, "field", ref.Field, "count", len(ids))
			}
		}
	}
	return nil
}

func (v *Validator) referencingIDs(ctx context.Context, ref types.ReferenceConstraint, id string) ([]string, error) {
	docs, err := v.engine.GetAll(ctx, ref.Source)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, d := range docs {
		if val, ok := d.Field(ref.Field); ok {
			if s, ok := val.(string); ok && s == id {
				ids = append(ids, d.ID())
			}
		}
	}
	return ids, nil
}
