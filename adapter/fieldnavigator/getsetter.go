package fieldnavigator

import "github.com/docdao/docdao/domain"

// ListGetSetter is a [domain.GetSetter] that reads and writes one index of a
// slice of [any].
type ListGetSetter struct {
	List  []any
	Index int
}

// NewGetSetterWithArrayIndex returns a [domain.GetSetter] representing a value
// inside a slice of [any].
func NewGetSetterWithArrayIndex(list []any, index int) domain.GetSetter {
	return &ListGetSetter{List: list, Index: index}
}

// Get implements [domain.GetSetter].
func (l *ListGetSetter) Get() (value any, defined bool) {
	if l.Index >= 0 && l.Index < len(l.List) {
		return l.List[l.Index], true
	}
	return nil, false
}

// Set implements [domain.GetSetter].
func (l *ListGetSetter) Set(value any) {
	if l.Index >= 0 && l.Index < len(l.List) {
		l.List[l.Index] = value
	}
}

// Unset implements [domain.GetSetter].
func (l *ListGetSetter) Unset() {
	if l.Index >= 0 && l.Index < len(l.List) {
		l.List[l.Index] = nil
	}
}

// DocGetSetter is a [domain.GetSetter] that reads and writes one key of a
// [domain.Document].
type DocGetSetter struct {
	Doc domain.Document
	Key string
}

// NewGetSetterWithDoc returns a [domain.GetSetter] representing a value inside
// a [domain.Document].
func NewGetSetterWithDoc(doc domain.Document, key string) domain.GetSetter {
	return &DocGetSetter{Doc: doc, Key: key}
}

// Get implements [domain.GetSetter].
func (d *DocGetSetter) Get() (value any, defined bool) {
	return d.Doc.Get(d.Key), d.Doc.Has(d.Key)
}

// Set implements [domain.GetSetter].
func (d *DocGetSetter) Set(value any) {
	d.Doc.Set(d.Key, value)
}

// Unset implements [domain.GetSetter].
func (d *DocGetSetter) Unset() {
	d.Doc.Unset(d.Key)
}

// EmptyGetSetter is a [domain.GetSetter] representing an undefined value.
// Set and Unset are no-ops.
type EmptyGetSetter struct{}

// NewGetSetterEmpty returns a [domain.GetSetter] for an undefined address.
func NewGetSetterEmpty() domain.GetSetter {
	return EmptyGetSetter{}
}

// Get implements [domain.GetSetter].
func (EmptyGetSetter) Get() (value any, defined bool) { return nil, false }

// Set implements [domain.GetSetter].
func (EmptyGetSetter) Set(any) {}

// Unset implements [domain.GetSetter].
func (EmptyGetSetter) Unset() {}
