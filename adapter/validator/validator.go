// Package validator applies the structural and index-safety rules a query
// must pass before translation.
package validator

import (
	"github.com/docdao/docdao/adapter/query"
	"github.com/docdao/docdao/domain"
)

// Validator checks queries against the structural invariants and the declared
// index catalog of a collection.
type Validator struct {
	catalog domain.IndexCatalog
}

// NewValidator returns a new [Validator] backed by an index catalog.
func NewValidator(catalog domain.IndexCatalog) *Validator {
	return &Validator{catalog: catalog}
}

// Validate checks a query against one collection. Rules apply in order: the
// limit cannot be negative, a grouping field must carry criteria values, and
// unless disabled, a query with criteria and no id filter must touch at least
// one indexed field.
func (v *Validator) Validate(q *query.Query, collection string) error {
	if q.Limit() < 0 {
		return domain.QueryErrorf("limit cannot be negative, got %d", q.Limit())
	}
	if groupBy := q.GroupBy(); groupBy != "" && len(q.Values(groupBy)) == 0 {
		return domain.QueryErrorf("grouping field %q carries no criteria values to enumerate groups", groupBy)
	}
	if !q.IndexValidation() || !q.HasCriteria() || q.HasIDs() {
		return nil
	}
	if v.IsSafe(q, collection) {
		return nil
	}
	return domain.ErrUnsafeQuery{
		Fields:  baseFields(q),
		Indexes: v.catalog.Indexes(collection),
	}
}

// IsSafe reports whether at least one criteria field is the leading field of
// a declared index. A query without criteria, or with an id filter, is always
// safe.
func (v *Validator) IsSafe(q *query.Query, collection string) bool {
	if !q.HasCriteria() || q.HasIDs() {
		return true
	}
	prefixes := map[string]bool{}
	for _, idx := range v.catalog.Indexes(collection) {
		if len(idx) > 0 {
			prefixes[idx[0]] = true
		}
	}
	for _, field := range baseFields(q) {
		if prefixes[field] {
			return true
		}
	}
	return false
}

func baseFields(q *query.Query) []string {
	fields := q.CriteriaFields()
	for n, field := range fields {
		fields[n], _ = query.ParseField(field)
	}
	return fields
}
