// Package comparer contains the default [domain.Comparer] implementation.
//
// Values are ordered by type class first (nil < numbers < strings < booleans
// < dates < arrays < documents) and within a class by their natural order.
package comparer

import (
	"cmp"
	"fmt"
	"math/big"
	"slices"
	"time"

	"github.com/docdao/docdao/domain"
)

// Comparer implements [domain.Comparer].
type Comparer struct{}

// NewComparer returns a new implementation of [domain.Comparer].
func NewComparer() domain.Comparer {
	return &Comparer{}
}

// Comparable implements [domain.Comparer].
func (c *Comparer) Comparable(a, b any) bool {
	if !c.isSet(a) || !c.isSet(b) {
		return false
	}
	a, b = c.getVal(a), c.getVal(b)

	if _, ok := c.asNumber(a); ok {
		_, equal := c.asNumber(b)
		return equal
	}

	equal := false
	switch a.(type) {
	case string:
		_, equal = b.(string)
	case time.Time:
		_, equal = b.(time.Time)
	}
	return equal
}

// Compare implements [domain.Comparer].
func (c *Comparer) Compare(a any, b any) (int, error) {

	// undefined sorts before everything
	if comp, ok, err := c.checkUndefined(a, b); err != nil || ok {
		return comp, err
	}

	a, b = c.getVal(a), c.getVal(b)

	if comp, ok := c.checkNil(a, b); ok {
		return comp, nil
	}
	if comp, ok := c.checkNumbers(a, b); ok {
		return comp, nil
	}
	if comp, ok := c.checkStrings(a, b); ok {
		return comp, nil
	}
	if comp, ok := c.checkBooleans(a, b); ok {
		return comp, nil
	}
	if comp, ok := c.checkTime(a, b); ok {
		return comp, nil
	}
	if comp, ok, err := c.checkArrays(a, b); err != nil || ok {
		return comp, err
	}
	if comp, ok, err := c.checkDocs(a, b); err != nil || ok {
		return comp, err
	}

	return 0, fmt.Errorf("cannot compare unexpected types %T and %T", a, b)
}

func (c *Comparer) checkUndefined(a, b any) (int, bool, error) {
	if !c.isSet(a) {
		if !c.isSet(b) {
			return 0, true, nil
		}
		return -1, true, nil
	}
	if !c.isSet(b) {
		return 1, true, nil
	}
	return 0, false, nil
}

func (c *Comparer) checkNil(a, b any) (int, bool) {
	if a == nil {
		if b == nil {
			return 0, true
		}
		return -1, true
	}
	if b == nil {
		return 1, true
	}
	return 0, false
}

func (c *Comparer) checkNumbers(a, b any) (int, bool) {
	if a, ok := c.asNumber(a); ok {
		// big.Float compares float64 and int64 without precision loss
		if b, ok := c.asNumber(b); ok {
			return a.Cmp(b), true
		}
		return -1, true
	}
	if _, ok := c.asNumber(b); ok {
		return 1, true
	}
	return 0, false
}

func (c *Comparer) checkStrings(a, b any) (int, bool) {
	if a, ok := a.(string); ok {
		if b, ok := b.(string); ok {
			return cmp.Compare(a, b), true
		}
		return -1, true
	}
	if _, ok := b.(string); ok {
		return 1, true
	}
	return 0, false
}

func (c *Comparer) checkBooleans(a, b any) (int, bool) {
	if a, ok := a.(bool); ok {
		if b, ok := b.(bool); ok {
			if a == b {
				return 0, true
			}
			if a {
				return 1, true
			}
			return -1, true
		}
		return -1, true
	}
	if _, ok := b.(bool); ok {
		return 1, true
	}
	return 0, false
}

func (c *Comparer) checkTime(a, b any) (int, bool) {
	if a, ok := a.(time.Time); ok {
		if b, ok := b.(time.Time); ok {
			return a.Compare(b), true
		}
		return -1, true
	}
	if _, ok := b.(time.Time); ok {
		return 1, true
	}
	return 0, false
}

func (c *Comparer) checkArrays(a, b any) (int, bool, error) {
	if a, ok := a.([]any); ok {
		if b, ok := b.([]any); ok {
			comp, err := c.compareArray(a, b)
			return comp, true, err
		}
		return -1, true, nil
	}
	if _, ok := b.([]any); ok {
		return 1, true, nil
	}
	return 0, false, nil
}

func (c *Comparer) checkDocs(a, b any) (int, bool, error) {
	if a, ok := a.(domain.Document); ok {
		if b, ok := b.(domain.Document); ok {
			comp, err := c.compareDoc(a, b)
			return comp, true, err
		}
		return -1, true, nil
	}
	if _, ok := b.(domain.Document); ok {
		return 1, true, nil
	}
	return 0, false, nil
}

func (c *Comparer) compareArray(a, b []any) (int, error) {
	for i := range min(len(a), len(b)) {
		comp, err := c.Compare(a[i], b[i])
		if err != nil {
			return 0, err
		}
		if comp != 0 {
			return comp, nil
		}
	}
	// common section was identical, longest one wins
	return cmp.Compare(len(a), len(b)), nil
}

func (c *Comparer) compareDoc(a domain.Document, b domain.Document) (int, error) {
	aKeys := slices.Sorted(a.Keys())
	bKeys := slices.Sorted(b.Keys())

	for i := range min(len(aKeys), len(bKeys)) {
		if comp := cmp.Compare(aKeys[i], bKeys[i]); comp != 0 {
			return comp, nil
		}
		comp, err := c.Compare(a.Get(aKeys[i]), b.Get(bKeys[i]))
		if err != nil {
			return 0, err
		}
		if comp != 0 {
			return comp, nil
		}
	}
	return cmp.Compare(a.Len(), b.Len()), nil
}

func (c *Comparer) asNumber(v any) (*big.Float, bool) {
	r := big.NewFloat(0)
	switch n := v.(type) {
	case int:
		r.SetInt64(int64(n))
	case int8:
		r.SetInt64(int64(n))
	case int16:
		r.SetInt64(int64(n))
	case int32:
		r.SetInt64(int64(n))
	case int64:
		r.SetInt64(n)
	case uint:
		r.SetUint64(uint64(n))
	case uint8:
		r.SetUint64(uint64(n))
	case uint16:
		r.SetUint64(uint64(n))
	case uint32:
		r.SetUint64(uint64(n))
	case uint64:
		r.SetUint64(n)
	case float32:
		r.SetFloat64(float64(n))
	case float64:
		r.SetFloat64(n)
	case time.Duration:
		r.SetInt64(int64(n))
	default:
		return nil, false
	}
	return r, true
}

func (c *Comparer) isSet(v any) bool {
	g, ok := v.(domain.Getter)
	if !ok {
		return true
	}
	_, defined := g.Get()
	return defined
}

func (c *Comparer) getVal(v any) any {
	for {
		g, ok := v.(domain.Getter)
		if !ok {
			return v
		}
		v, _ = g.Get()
	}
}
