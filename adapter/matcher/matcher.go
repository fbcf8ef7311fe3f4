// Package matcher contains the default [domain.Matcher] implementation,
// evaluating operator-document filters against documents.
package matcher

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/docdao/docdao/adapter/comparer"
	"github.com/docdao/docdao/adapter/data"
	"github.com/docdao/docdao/adapter/fieldnavigator"
	"github.com/docdao/docdao/domain"
)

type oper func(domain.Document, []string, any) (bool, error)

type matchFn func(any, any) (bool, error)

// Matcher implements [domain.Matcher].
type Matcher struct {
	documentFactory domain.DocumentFactory
	comparer        domain.Comparer
	fieldNavigator  domain.FieldNavigator
	compFuncs       map[string]oper
	logicOps        map[string]func(domain.Document, any) (bool, error)
}

// NewMatcher returns a new implementation of [domain.Matcher].
func NewMatcher(options ...Option) domain.Matcher {
	m := &Matcher{
		documentFactory: data.NewDocument,
		comparer:        comparer.NewComparer(),
	}
	for _, option := range options {
		option(m)
	}
	if m.fieldNavigator == nil {
		m.fieldNavigator = fieldnavigator.NewFieldNavigator(m.documentFactory)
	}

	m.logicOps = map[string]func(domain.Document, any) (bool, error){
		"$and": m.and,
		"$or":  m.or,
		"$not": m.not,
	}
	m.compFuncs = map[string]oper{
		"$regex":     m.regex,
		"$ne":        m.ne,
		"$lt":        m.lt,
		"$lte":       m.lte,
		"$gt":        m.gt,
		"$gte":       m.gte,
		"$in":        m.in,
		"$nin":       m.nin,
		"$exists":    m.exists,
		"$elemMatch": m.elemMatch,
	}
	return m
}

// Match implements [domain.Matcher].
func (m *Matcher) Match(val any, filter map[string]any) (bool, error) {
	if len(filter) == 0 {
		return true, nil
	}
	doc, ok := val.(domain.Document)
	if !ok {
		var err error
		if doc, err = m.documentFactory(val); err != nil {
			return false, err
		}
	}

	hasOps, err := m.checkMixed(filter)
	if err != nil {
		return false, err
	}

	matchFunction := m.matchSimpleField
	if hasOps {
		matchFunction = m.matchLogicOp
	}

	for field, value := range filter {
		matches, err := matchFunction(doc, field, value)
		if err != nil || !matches {
			return false, err
		}
	}
	return true, nil
}

func (m *Matcher) checkMixed(filter map[string]any) (bool, error) {
	dollar := 0
	for field := range filter {
		if strings.HasPrefix(field, "$") {
			dollar++
		}
	}
	if dollar != 0 && dollar != len(filter) {
		return false, fmt.Errorf("cannot mix operators and normal fields")
	}
	return dollar != 0, nil
}

func (m *Matcher) matchLogicOp(doc domain.Document, op string, value any) (bool, error) {
	fn, ok := m.logicOps[op]
	if !ok {
		return false, fmt.Errorf("unknown logical operator %s", op)
	}
	return fn(doc, value)
}

func (m *Matcher) matchSimpleField(doc domain.Document, field string, value any) (bool, error) {
	addr, err := m.fieldNavigator.GetAddress(field)
	if err != nil {
		return false, err
	}

	opDoc, ok := value.(map[string]any)
	if !ok || len(opDoc) == 0 {
		return m.eq(doc, addr, value)
	}

	hasOps, err := m.checkMixed(opDoc)
	if err != nil {
		return false, err
	}
	if !hasOps {
		// plain sub-document, match by equality
		return m.eq(doc, addr, value)
	}

	for op := range opDoc {
		if _, ok := m.compFuncs[op]; !ok {
			return false, fmt.Errorf("unknown comparison operator %s", op)
		}
	}
	for op, arg := range opDoc {
		matches, err := m.compFuncs[op](doc, addr, arg)
		if err != nil || !matches {
			return false, err
		}
	}
	return true, nil
}

func (m *Matcher) and(doc domain.Document, value any) (bool, error) {
	arr, ok := value.([]any)
	if !ok {
		return false, fmt.Errorf("$and operator used without an array")
	}
	for _, item := range arr {
		sub, ok := item.(map[string]any)
		if !ok {
			return false, fmt.Errorf("$and operand must be a filter document")
		}
		matches, err := m.Match(doc, sub)
		if err != nil || !matches {
			return false, err
		}
	}
	return true, nil
}

func (m *Matcher) or(doc domain.Document, value any) (bool, error) {
	arr, ok := value.([]any)
	if !ok {
		return false, fmt.Errorf("$or operator used without an array")
	}
	for _, item := range arr {
		sub, ok := item.(map[string]any)
		if !ok {
			return false, fmt.Errorf("$or operand must be a filter document")
		}
		matches, err := m.Match(doc, sub)
		if err != nil || matches {
			return matches, err
		}
	}
	return false, nil
}

func (m *Matcher) not(doc domain.Document, value any) (bool, error) {
	sub, ok := value.(map[string]any)
	if !ok {
		return false, fmt.Errorf("$not operand must be a filter document")
	}
	matches, err := m.Match(doc, sub)
	if err != nil {
		return false, err
	}
	return !matches, nil
}

func (m *Matcher) matchList(doc domain.Document, addr []string, value any, fn matchFn) (bool, error) {
	fields, _, err := m.fieldNavigator.GetField(doc, addr...)
	if err != nil {
		return false, err
	}
	for _, field := range fields {
		matches, err := m.matchGetter(field, value, fn)
		if err != nil || matches {
			return matches, err
		}
	}
	return false, nil
}

func (m *Matcher) matchGetter(field domain.Getter, value any, fn matchFn) (bool, error) {
	fieldVal, _ := field.Get()
	arr, ok := fieldVal.([]any)
	if !ok {
		arr = []any{field}
	}
	for _, item := range arr {
		matches, err := fn(item, value)
		if err != nil || matches {
			return matches, err
		}
	}
	return false, nil
}

func (m *Matcher) eq(doc domain.Document, addr []string, value any) (bool, error) {
	if sub, ok := value.(map[string]any); ok {
		parsed, err := m.documentFactory(sub)
		if err != nil {
			return false, err
		}
		value = parsed
	}

	fields, _, err := m.fieldNavigator.GetField(doc, addr...)
	if err != nil {
		return false, err
	}
	for _, field := range fields {
		matches, err := m.compare(field, value)
		if err != nil {
			return false, err
		}
		if matches {
			return true, nil
		}
	}
	return false, nil
}

func (m *Matcher) compare(field domain.Getter, value any) (bool, error) {
	if rgx, ok := value.(*regexp.Regexp); ok {
		return m.regexValue(field, rgx)
	}
	fieldValue, defined := field.Get()
	if !defined {
		return false, nil
	}
	arr, ok := fieldValue.([]any)
	if !ok {
		c, err := m.comparer.Compare(fieldValue, value)
		return c == 0, err
	}

	if valueArr, ok := value.([]any); ok {
		c, err := m.comparer.Compare(arr, valueArr)
		return c == 0, err
	}

	// a criterion against an array field matches any element
	for _, item := range arr {
		c, err := m.comparer.Compare(item, value)
		if err != nil || c == 0 {
			return c == 0, err
		}
	}
	return false, nil
}

func (m *Matcher) regex(doc domain.Document, addr []string, arg any) (bool, error) {
	return m.matchList(doc, addr, arg, func(value, param any) (bool, error) {
		rgx, ok := param.(*regexp.Regexp)
		if !ok {
			return false, fmt.Errorf("$regex operator called with non regular expression")
		}
		return m.regexValue(value, rgx)
	})
}

func (m *Matcher) regexValue(v any, rgx *regexp.Regexp) (bool, error) {
	val, defined := m.getValue(v)
	if !defined {
		return false, nil
	}
	if str, ok := val.(string); ok {
		return rgx.MatchString(str), nil
	}
	return false, nil
}

func (m *Matcher) getValue(v any) (any, bool) {
	if g, ok := v.(domain.Getter); ok {
		return g.Get()
	}
	return v, true
}

func (m *Matcher) ne(doc domain.Document, addr []string, arg any) (bool, error) {
	matches, err := m.eq(doc, addr, arg)
	if err != nil {
		return false, err
	}
	return !matches, nil
}

func (m *Matcher) lt(doc domain.Document, addr []string, arg any) (bool, error) {
	return m.rangeOp(doc, addr, arg, func(c int) bool { return c < 0 })
}

func (m *Matcher) lte(doc domain.Document, addr []string, arg any) (bool, error) {
	return m.rangeOp(doc, addr, arg, func(c int) bool { return c <= 0 })
}

func (m *Matcher) gt(doc domain.Document, addr []string, arg any) (bool, error) {
	return m.rangeOp(doc, addr, arg, func(c int) bool { return c > 0 })
}

func (m *Matcher) gte(doc domain.Document, addr []string, arg any) (bool, error) {
	return m.rangeOp(doc, addr, arg, func(c int) bool { return c >= 0 })
}

func (m *Matcher) rangeOp(doc domain.Document, addr []string, arg any, want func(int) bool) (bool, error) {
	return m.matchList(doc, addr, arg, func(value, param any) (bool, error) {
		if !m.comparer.Comparable(value, param) {
			return false, nil
		}
		c, err := m.comparer.Compare(value, param)
		if err != nil {
			return false, err
		}
		return want(c), nil
	})
}

func (m *Matcher) in(doc domain.Document, addr []string, arg any) (bool, error) {
	return m.matchList(doc, addr, arg, func(value, param any) (bool, error) {
		arr, ok := param.([]any)
		if !ok {
			return false, fmt.Errorf("$in operator called with a non-array")
		}
		for _, item := range arr {
			c, err := m.comparer.Compare(value, item)
			if err != nil {
				return false, err
			}
			if c == 0 {
				return true, nil
			}
		}
		return false, nil
	})
}

func (m *Matcher) nin(doc domain.Document, addr []string, arg any) (bool, error) {
	matches, err := m.in(doc, addr, arg)
	if err != nil {
		return false, err
	}
	return !matches, nil
}

func (m *Matcher) exists(doc domain.Document, addr []string, arg any) (bool, error) {
	fields, _, err := m.fieldNavigator.GetField(doc, addr...)
	if err != nil {
		return false, err
	}

	wantExistent, ok := arg.(bool)
	if !ok {
		return false, fmt.Errorf("$exists operator called without a boolean")
	}

	for _, field := range fields {
		if _, defined := field.Get(); defined {
			return wantExistent, nil
		}
	}
	return !wantExistent, nil
}

func (m *Matcher) elemMatch(doc domain.Document, addr []string, arg any) (bool, error) {
	sub, ok := arg.(map[string]any)
	if !ok {
		return false, fmt.Errorf("$elemMatch operand must be a filter document")
	}

	fields, _, err := m.fieldNavigator.GetField(doc, addr...)
	if err != nil {
		return false, err
	}

	for _, field := range fields {
		value, _ := field.Get()
		arr, ok := value.([]any)
		if !ok {
			continue
		}
		for _, item := range arr {
			matches, err := m.Match(item, sub)
			if err != nil || matches {
				return matches, err
			}
		}
	}
	return false, nil
}
