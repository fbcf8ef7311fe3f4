package query

import (
	"slices"

	"github.com/docdao/docdao/domain"
)

// Option configures a [Query] during construction.
type Option func(*Query)

// WithIDs filters by primary-key values. One value translates to an equality
// predicate, several to set membership.
func WithIDs(ids ...any) Option {
	return func(q *Query) {
		q.ids = slices.Clone(ids)
	}
}

// WithCriterion adds values to the value set of one criteria field. Repeated
// calls on the same field accumulate.
func WithCriterion(field string, values ...any) Option {
	return func(q *Query) {
		q.criteria[field] = append(q.criteria[field], values...)
	}
}

// WithOffset sets the number of documents to skip.
func WithOffset(offset int64) Option {
	return func(q *Query) {
		q.offset = offset
	}
}

// WithLimit sets the maximum page size.
func WithLimit(limit int64) Option {
	return func(q *Query) {
		q.limit = limit
	}
}

// WithOrder sets the sort specification.
func WithOrder(order ...domain.SortName) Option {
	return func(q *Query) {
		q.order = slices.Clone(order)
	}
}

// WithFields restricts the returned documents to the given field paths. The
// id field is always kept. Passing "*" disables projection.
func WithFields(fields ...string) Option {
	return func(q *Query) {
		q.fields = slices.Clone(fields)
	}
}

// WithGroupBy groups the result by one criteria field. The field must carry
// criteria values enumerating the candidate groups.
func WithGroupBy(field string) Option {
	return func(q *Query) {
		q.groupBy = field
	}
}

// WithSyncMatch declares nested-array prefixes whose sub-criteria must all be
// satisfied by the same array element.
func WithSyncMatch(fields ...string) Option {
	return func(q *Query) {
		q.syncMatchFields = slices.Clone(fields)
	}
}

// WithCountTotal requests the total match count alongside the page.
func WithCountTotal() Option {
	return func(q *Query) {
		q.countTotal = true
	}
}

// WithCountOnly requests only the total match count, fetching no documents.
func WithCountOnly() Option {
	return func(q *Query) {
		q.countOnly = true
		q.countTotal = true
	}
}

// WithoutIndexValidation disables the index safety check for this query.
func WithoutIndexValidation() Option {
	return func(q *Query) {
		q.indexValidation = false
	}
}
