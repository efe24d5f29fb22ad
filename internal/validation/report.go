package validation

import (
	"context"
)

// Orphan is one dangling foreign key found by IntegrityReport.
type Orphan struct {
	Collection string `json:"collection"`
	DocumentID string `json:"documentId"`
	Field      string `json:"field"`
	Target     string `json:"target"`
	MissingID  string `json:"missingId"`
}

// IntegrityReport scans for references to documents that no longer exist.
// It is read-only; nothing is repaired. With no arguments every source
// collection of a declared constraint is scanned, otherwise only the named
// ones.
func (v *Validator) IntegrityReport(ctx context.Context, collections ...string) ([]Orphan, error) {
	scan := make(map[string]bool, len(collections))
	for _, col := range collections {
		scan[col] = true
	}

	targets := make(map[string]map[string]bool)
	var orphans []Orphan
	for _, ref := range v.refs {
		if len(scan) > 0 && !scan[ref.Source] {
			continue
		}
		known, ok := targets[ref.Target]
		if !ok {
			docs, err := v.engine.GetAll(ctx, ref.Target)
			if err != nil {
				return nil, err
			}
			known = make(map[string]bool, len(docs))
			for _, d := range docs {
				known[d.ID()] = true
			}
			targets[ref.Target] = known
		}

		docs, err := v.engine.GetAll(ctx, ref.Source)
		if err != nil {
			return nil, err
		}
		for _, d := range docs {
			val, ok := d.Field(ref.Field)
			if !ok || val == nil {
				continue
			}
			id, ok := val.(string)
			if !ok || id == "" || known[id] {
				continue
			}
			orphans = append(orphans, Orphan{
				Collection: ref.Source,
				DocumentID: d.ID(),
				Field:      ref.Field,
				Target:     ref.Target,
				MissingID:  id,
			})
		}
	}
	return orphans, nil
}
