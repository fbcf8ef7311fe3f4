package domain

// Sort represents an ordered list of fields used to sort query results,
// applied in sequence.
type Sort = []SortName

// SortName represents a single field and sort direction. A positive Order
// means ascending, a negative one descending.
type SortName struct {
	Key   string
	Order int64
}

// NativeQuery is the executable form of a service query: an operator-document
// filter plus the paging, ordering and projection the executor applies.
// Mutation-mode translations carry only the collection and the filter.
type NativeQuery struct {
	Collection string
	Filter     map[string]any
	Projection []string
	Offset     int64
	Limit      int64
	Sort       Sort
}

// Page is one page of decoded entities. TotalItems is nil when a total count
// was not requested.
type Page[T any] struct {
	Items      []T
	TotalItems *int64
}

// Result is the outcome of a query execution: either a flat page or, for
// grouped queries, a page per group value. TotalItems on a grouped result is
// the global pre-grouping count, when requested.
type Result[T any] struct {
	Items      []T
	TotalItems *int64
	Groups     map[any]Page[T]
}

// Grouped reports whether the result carries per-group pages.
func (r Result[T]) Grouped() bool {
	return r.Groups != nil
}
