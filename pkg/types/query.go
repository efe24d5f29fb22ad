package types

// Sort directions for QueryOptions.Order.
const (
	Ascending  = "asc"
	Descending = "desc"
)

// DefaultLimit caps a result page when QueryOptions.Limit is zero.
const DefaultLimit = 50

// QueryOptions narrows, orders, paginates, and projects a collection scan.
// Where matches on equality per dot-separated field path; Predicate, when
// set, replaces Where entirely. Include and Exclude are mutually exclusive
// projections applied to top-level fields; id survives every projection.
type QueryOptions struct {
	Where     map[string]any
	Predicate func(Document) bool
	OrderBy   string
	Order     string
	Limit     int
	Offset    int
	Include   []string
	Exclude   []string
}

// QueryResult is one page of matches. Total counts every match before
// pagination, so callers can page without a second query.
type QueryResult struct {
	Data       []Document `json:"data"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
	TotalPages int        `json:"totalPages"`
}

// AggregateOptions names the numeric fields to fold per group. Unset
// fields leave the corresponding group statistic nil.
type AggregateOptions struct {
	SumField string
	AvgField string
	MinField string
	MaxField string
}

// AggregateGroup is one groupBy bucket. Non-numeric values contribute 0 to
// Sum and Avg and are skipped for Min and Max.
type AggregateGroup struct {
	Key   string   `json:"key"`
	Count int      `json:"count"`
	Sum   *float64 `json:"sum,omitempty"`
	Avg   *float64 `json:"avg,omitempty"`
	Min   *float64 `json:"min,omitempty"`
	Max   *float64 `json:"max,omitempty"`
}

// IndexSpec registers a secondary index over one field of a collection.
// Index data is persisted under IndexKeyPrefix+Name as a map from field
// value to document ids.
type IndexSpec struct {
	Name       string `json:"name"`
	Collection string `json:"collection"`
	Field      string `json:"field"`
}
