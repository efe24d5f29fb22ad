package engine

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/mesh-intelligence/chartstore/pkg/types"
)

// Query filters, orders, paginates, and projects a collection, in that
// order. Total in the result counts every match before pagination.
func (e *Engine) Query(ctx context.Context, col string, opts types.QueryOptions) (*types.QueryResult, error) {
	if err := checkCollection(col); err != nil {
		return nil, err
	}
	if len(opts.Include) > 0 && len(opts.Exclude) > 0 {
		return nil, fmt.Errorf("query %s: include and exclude are mutually exclusive", col)
	}

	e.mu.RLock()
	docs, err := e.readCollection(ctx, col)
	e.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	matched := filterDocs(docs, opts)
	if opts.OrderBy != "" {
		sortDocs(matched, opts.OrderBy, opts.Order)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = types.DefaultLimit
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	total := len(matched)
	start := offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	page := matched[start:end]
	out := make([]types.Document, len(page))
	for i, d := range page {
		out[i] = project(d, opts.Include, opts.Exclude)
	}

	return &types.QueryResult{
		Data:       out,
		Total:      total,
		Page:       offset/limit + 1,
		PageSize:   limit,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

// Aggregate groups the collection by one field and folds the numeric
// fields named in opts per group. Documents missing the groupBy field land
// in the "" group. Sum and Avg treat non-numeric values as 0; Min and Max
// skip them.
func (e *Engine) Aggregate(ctx context.Context, col, groupBy string, opts types.AggregateOptions) (map[string]*types.AggregateGroup, error) {
	if err := checkCollection(col); err != nil {
		return nil, err
	}
	e.mu.RLock()
	docs, err := e.readCollection(ctx, col)
	e.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	groups := make(map[string]*types.AggregateGroup)
	for _, d := range docs {
		key := ""
		if v, ok := d.Field(groupBy); ok && v != nil {
			key = fmt.Sprint(v)
		}
		g := groups[key]
		if g == nil {
			g = &types.AggregateGroup{Key: key}
			groups[key] = g
		}
		g.Count++

		if opts.SumField != "" {
			n, _ := numericField(d, opts.SumField)
			g.Sum = addFloat(g.Sum, n)
		}
		if opts.AvgField != "" {
			n, _ := numericField(d, opts.AvgField)
			g.Avg = addFloat(g.Avg, n)
		}
		if opts.MinField != "" {
			if n, ok := numericField(d, opts.MinField); ok {
				g.Min = minFloat(g.Min, n)
			}
		}
		if opts.MaxField != "" {
			if n, ok := numericField(d, opts.MaxField); ok {
				g.Max = maxFloat(g.Max, n)
			}
		}
	}

	// Avg accumulated as a running sum above.
	if opts.AvgField != "" {
		for _, g := range groups {
			if g.Avg != nil && g.Count > 0 {
				v := *g.Avg / float64(g.Count)
				g.Avg = &v
			}
		}
	}
	return groups, nil
}

func filterDocs(docs []types.Document, opts types.QueryOptions) []types.Document {
	if opts.Predicate == nil && len(opts.Where) == 0 {
		out := make([]types.Document, len(docs))
		copy(out, docs)
		return out
	}
	var out []types.Document
	for _, d := range docs {
		if opts.Predicate != nil {
			if opts.Predicate(d) {
				out = append(out, d)
			}
			continue
		}
		if matchWhere(d, opts.Where) {
			out = append(out, d)
		}
	}
	return out
}

func matchWhere(d types.Document, where map[string]any) bool {
	for path, want := range where {
		got, ok := d.Field(path)
		if !ok || !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

// valuesEqual compares loosely across numeric kinds so a Go int in a where
// clause matches a JSON float64.
func valuesEqual(a, b any) bool {
	if an, ok := types.Number(a); ok {
		bn, ok := types.Number(b)
		return ok && an == bn
	}
	return reflect.DeepEqual(a, b)
}

func sortDocs(docs []types.Document, field, direction string) {
	desc := direction == types.Descending
	sort.SliceStable(docs, func(i, j int) bool {
		if desc {
			return compareField(docs[j], docs[i], field) < 0
		}
		return compareField(docs[i], docs[j], field) < 0
	})
}

// compareField orders missing values first, numbers numerically, and
// everything else by string form.
func compareField(a, b types.Document, field string) int {
	av, aok := a.Field(field)
	bv, bok := b.Field(field)
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return -1
	case !bok:
		return 1
	}
	if an, ok := types.Number(av); ok {
		if bn, ok := types.Number(bv); ok {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(fmt.Sprint(av), fmt.Sprint(bv))
}

// project copies d down to the requested field set. id always survives.
func project(d types.Document, include, exclude []string) types.Document {
	c := d.Clone()
	if len(include) > 0 {
		out := types.Document{}
		if id, ok := c[types.FieldID]; ok {
			out[types.FieldID] = id
		}
		for _, f := range include {
			if v, ok := c[f]; ok {
				out[f] = v
			}
		}
		return out
	}
	for _, f := range exclude {
		if f == types.FieldID {
			continue
		}
		delete(c, f)
	}
	return c
}

func numericField(d types.Document, field string) (float64, bool) {
	v, ok := d.Field(field)
	if !ok {
		return 0, false
	}
	return types.Number(v)
}

func addFloat(p *float64, n float64) *float64 {
	if p == nil {
		v := n
		return &v
	}
	*p += n
	return p
}

func minFloat(p *float64, n float64) *float64 {
	if p == nil || n < *p {
		v := n
		return &v
	}
	return p
}

func maxFloat(p *float64, n float64) *float64 {
	if p == nil || n > *p {
		v := n
		return &v
	}
	return p
}
