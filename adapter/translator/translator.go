// Package translator converts logical queries into the native
// operator-document form executed by a store.
package translator

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/docdao/docdao/adapter/query"
	"github.com/docdao/docdao/domain"
)

var rangeOperators = map[query.RangeOp]string{
	query.RangeGT:  "$gt",
	query.RangeGTE: "$gte",
	query.RangeLT:  "$lt",
	query.RangeLTE: "$lte",
}

// Translator builds native queries for one entity type.
type Translator struct {
	schema domain.EntitySchema
}

// NewTranslator returns a new [Translator] for the given entity schema.
func NewTranslator(schema domain.EntitySchema) *Translator {
	return &Translator{schema: schema}
}

// Translate converts a logical query into a native one. When projecting is
// true the result carries projection, offset, limit and ordering; mutation
// paths pass false so updates and deletes are never limited or ordered.
func (t *Translator) Translate(q *query.Query, projecting bool) (domain.NativeQuery, error) {
	nq := domain.NativeQuery{
		Collection: t.schema.Collection(),
		Filter:     map[string]any{},
	}

	if ids := q.IDs(); len(ids) == 1 {
		nq.Filter[t.schema.IDField()] = ids[0]
	} else if len(ids) > 1 {
		nq.Filter[t.schema.IDField()] = map[string]any{"$in": ids}
	}

	// criteria under a sync prefix are grouped and matched jointly against
	// one array element instead of independently
	synced := map[string]map[string][]any{}
	for _, field := range q.CriteriaFields() {
		values := q.Values(field)
		if prefix, rest, ok := t.syncPrefix(q, field); ok {
			sub := synced[prefix]
			if sub == nil {
				sub = map[string][]any{}
				synced[prefix] = sub
			}
			sub[rest] = values
			continue
		}
		if err := applyCriterion(nq.Filter, field, values); err != nil {
			return domain.NativeQuery{}, err
		}
	}

	for _, prefix := range slices.Sorted(maps.Keys(synced)) {
		if _, err := t.schema.Elem(prefix); err != nil {
			return domain.NativeQuery{}, err
		}
		subFilter := map[string]any{}
		for _, field := range slices.Sorted(maps.Keys(synced[prefix])) {
			if err := applyCriterion(subFilter, field, synced[prefix][field]); err != nil {
				return domain.NativeQuery{}, err
			}
		}
		nq.Filter[prefix] = map[string]any{"$elemMatch": subFilter}
	}

	if !projecting {
		return nq, nil
	}
	if fields := q.Fields(); len(fields) > 0 && !slices.Contains(fields, "*") {
		nq.Projection = fields
	}
	nq.Offset = q.Offset()
	nq.Limit = q.Limit()
	nq.Sort = q.Order()
	return nq, nil
}

// syncPrefix reports whether a criteria field falls under one of the query's
// synchronized-match prefixes, returning the prefix and the remainder of the
// field name with any range suffix intact.
func (t *Translator) syncPrefix(q *query.Query, field string) (string, string, bool) {
	base, _ := query.ParseField(field)
	for _, prefix := range q.SyncMatchFields() {
		if strings.HasPrefix(base, prefix+".") {
			return prefix, field[len(prefix)+1:], true
		}
	}
	return "", "", false
}

func applyCriterion(filter map[string]any, field string, values []any) error {
	base, op := query.ParseField(field)
	switch {
	case len(values) == 0:
		return nil
	case len(values) > 1:
		mergeOperator(filter, base, "$in", values)
		return nil
	}

	value := values[0]
	if op != query.RangeNone {
		mergeOperator(filter, base, rangeOperators[op], value)
		return nil
	}
	if reserved, ok := query.ParseReserved(value); ok {
		switch reserved {
		case query.Exists:
			mergeOperator(filter, base, "$exists", true)
		case query.Null:
			filter[base] = nil
		case query.Any:
			// wildcard, no predicate
		default:
			return domain.ErrGeneral{Reason: fmt.Sprintf("unknown reserved value %q", reserved)}
		}
		return nil
	}
	filter[base] = value
	return nil
}

// mergeOperator sets an operator predicate under a field, merging with any
// operator document already there so "a>" and "a<" compose into one range.
func mergeOperator(filter map[string]any, field, operator string, value any) {
	if existing, ok := filter[field].(map[string]any); ok {
		existing[operator] = value
		return
	}
	filter[field] = map[string]any{operator: value}
}
