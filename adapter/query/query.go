// Package query contains the logical query description consumed by the
// translation layer. A [Query] is immutable after construction; grouped
// execution derives per-group copies instead of rewriting a shared one.
package query

import (
	"maps"
	"slices"
	"strings"

	"github.com/docdao/docdao/domain"
)

// Query describes one logical query: an id filter, a criteria multimap,
// pagination, ordering, projection, grouping and count flags.
type Query struct {
	ids             []any
	criteria        map[string][]any
	offset          int64
	limit           int64
	order           domain.Sort
	fields          []string
	groupBy         string
	syncMatchFields []string
	countTotal      bool
	countOnly       bool
	indexValidation bool
}

// New returns a new [Query]. Index validation is on unless disabled with
// [WithoutIndexValidation].
func New(options ...Option) *Query {
	q := &Query{
		criteria:        map[string][]any{},
		indexValidation: true,
	}
	for _, option := range options {
		option(q)
	}
	return q
}

// IDs returns the id filter values.
func (q *Query) IDs() []any {
	return slices.Clone(q.ids)
}

// HasIDs reports whether an id filter is present.
func (q *Query) HasIDs() bool {
	return len(q.ids) > 0
}

// CriteriaFields returns the criteria field names in sorted order.
func (q *Query) CriteriaFields() []string {
	fields := slices.Collect(maps.Keys(q.criteria))
	slices.Sort(fields)
	return fields
}

// Values returns the value set under one criteria field.
func (q *Query) Values(field string) []any {
	return slices.Clone(q.criteria[field])
}

// HasCriteria reports whether any criterion is present.
func (q *Query) HasCriteria() bool {
	return len(q.criteria) > 0
}

// Offset returns the number of documents to skip.
func (q *Query) Offset() int64 {
	return q.offset
}

// Limit returns the maximum page size. Zero means return no documents, which
// is still meaningful combined with [Query.CountTotal].
func (q *Query) Limit() int64 {
	return q.limit
}

// Order returns the sort specification.
func (q *Query) Order() domain.Sort {
	return slices.Clone(q.order)
}

// Fields returns the projected field paths. The special field "*" disables
// projection.
func (q *Query) Fields() []string {
	return slices.Clone(q.fields)
}

// GroupBy returns the grouping field, or "" when the query is not grouped.
func (q *Query) GroupBy() string {
	return q.groupBy
}

// SyncMatchFields returns the nested-array prefixes whose sub-criteria must
// match against a single array element.
func (q *Query) SyncMatchFields() []string {
	return slices.Clone(q.syncMatchFields)
}

// CountTotal reports whether the total match count was requested.
func (q *Query) CountTotal() bool {
	return q.countTotal
}

// CountOnly reports whether only the count was requested, with no documents.
func (q *Query) CountOnly() bool {
	return q.countOnly
}

// IndexValidation reports whether the index safety check applies.
func (q *Query) IndexValidation() bool {
	return q.indexValidation
}

// WithGroupValue returns a copy of the query with the grouping field pinned to
// exactly one value and grouping cleared, for one group iteration.
func (q *Query) WithGroupValue(value any) *Query {
	derived := q.clone()
	derived.criteria[q.groupBy] = []any{value}
	derived.groupBy = ""
	return derived
}

// Ungrouped returns a copy of the query with grouping cleared but the
// grouping criterion intact, used for the global total count.
func (q *Query) Ungrouped() *Query {
	derived := q.clone()
	derived.groupBy = ""
	return derived
}

func (q *Query) clone() *Query {
	derived := *q
	derived.criteria = make(map[string][]any, len(q.criteria))
	for field, values := range q.criteria {
		derived.criteria[field] = slices.Clone(values)
	}
	return &derived
}

// Shape returns a stable signature of the query's criteria field names,
// independent of values. Dots are replaced so the signature can be embedded
// in a metrics key. A query filtering only by ids reports "ids".
func (q *Query) Shape() string {
	if len(q.criteria) == 0 {
		if len(q.ids) > 0 {
			return "ids"
		}
		return "all"
	}
	fields := make([]string, 0, len(q.criteria))
	for field := range q.criteria {
		base, _ := ParseField(field)
		fields = append(fields, strings.ReplaceAll(base, ".", "-"))
	}
	slices.Sort(fields)
	fields = slices.Compact(fields)
	return strings.Join(fields, "_")
}
