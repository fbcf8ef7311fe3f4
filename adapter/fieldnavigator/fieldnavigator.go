// Package fieldnavigator contains the default [domain.FieldNavigator]
// implementation, providing dotted-path access to nested documents with
// array expansion.
package fieldnavigator

import (
	"strconv"
	"strings"

	"github.com/docdao/docdao/domain"
)

// FieldNavigator implements [domain.FieldNavigator].
type FieldNavigator struct {
	docFac domain.DocumentFactory
}

// NewFieldNavigator returns a new instance of [domain.FieldNavigator].
func NewFieldNavigator(docFac domain.DocumentFactory) domain.FieldNavigator {
	return &FieldNavigator{docFac: docFac}
}

// GetAddress implements [domain.FieldNavigator].
func (fn *FieldNavigator) GetAddress(field string) ([]string, error) {
	return strings.Split(field, "."), nil
}

// GetField implements [domain.FieldNavigator].
func (fn *FieldNavigator) GetField(obj any, fieldParts ...string) ([]domain.GetSetter, bool, error) {
	return fn.getField(obj, fieldParts, false)
}

// EnsureField implements [domain.FieldNavigator].
func (fn *FieldNavigator) EnsureField(obj any, fieldParts ...string) ([]domain.GetSetter, error) {
	res, _, err := fn.getField(obj, fieldParts, true)
	return res, err
}

type nav struct {
	v          any
	expandable bool
	gs         domain.GetSetter
}

func (fn *FieldNavigator) getField(obj any, fieldParts []string, ensure bool) ([]domain.GetSetter, bool, error) {
	invalid := []domain.GetSetter{NewGetSetterEmpty()}
	if obj == nil || len(fieldParts) == 0 {
		return invalid, false, nil
	}

	// curr has to be a list to carry array-expanded branches
	curr := []nav{{v: obj, expandable: true}}
	expanded := false

	for idx, part := range fieldParts {
		last := idx == len(fieldParts)-1
		next := make([]nav, 0, len(curr))
		work := curr

		for len(work) > 0 {
			item := work[0]
			work = work[1:]

			switch t := item.v.(type) {
			case domain.Document:
				if !t.Has(part) && !expanded {
					if !ensure {
						return invalid, false, nil
					}
					if !last {
						newDoc, err := fn.docFac(nil)
						if err != nil {
							return nil, false, err
						}
						t.Set(part, newDoc)
					} else {
						t.Set(part, nil)
					}
				}
				next = append(next, nav{
					v:          t.Get(part),
					expandable: true,
					gs:         NewGetSetterWithDoc(t, part),
				})
			case []any:
				i, err := strconv.Atoi(part)
				if err != nil {
					// a non-numeric part against an array
					// reruns the same part on every element
					if !item.expandable {
						continue
					}
					expanded = true
					elems := make([]nav, len(t))
					for n, v := range t {
						elems[n] = nav{v: v, gs: NewGetSetterWithArrayIndex(t, n)}
					}
					work = append(elems, work...)
					continue
				}
				if i < 0 || i >= len(t) {
					if expanded {
						continue
					}
					return invalid, false, nil
				}
				next = append(next, nav{
					v:          t[i],
					expandable: true,
					gs:         NewGetSetterWithArrayIndex(t, i),
				})
			default:
				if !expanded {
					return invalid, false, nil
				}
			}
		}
		curr = next
	}

	if len(curr) == 0 {
		return invalid, expanded, nil
	}

	res := make([]domain.GetSetter, len(curr))
	for n, v := range curr {
		res[n] = v.gs
	}
	return res, expanded, nil
}
