// Package data contains the default [domain.Document] implementation and the
// conversion of user structs and maps into documents.
package data

import (
	"fmt"
	"iter"
	"maps"
	"reflect"
	"slices"
	"strings"
	"time"

	goreflect "github.com/goccy/go-reflect"

	"github.com/docdao/docdao/domain"
)

// TagName is the struct tag honored when converting entities to documents and
// when decoding documents back into entities.
const TagName = "docdao"

var timeTyp = goreflect.TypeOf(*new(time.Time))

// M implements [domain.Document] using a map. Duplicates replace old values.
type M map[string]any

// NewDocument returns a new [domain.Document] built from a map or struct.
func NewDocument(in any) (domain.Document, error) {
	if in == nil {
		return M{}, nil
	}
	if doc, ok := in.(domain.Document); ok {
		return doc, nil
	}
	if m, ok := in.(map[string]any); ok {
		return parseMap(m)
	}

	r := goreflect.ValueNoEscapeOf(in)
	k := r.Kind()
	for k == goreflect.Interface || k == goreflect.Ptr {
		if r.IsNil() {
			return M{}, nil
		}
		r = r.Elem()
		k = r.Kind()
	}
	if k != goreflect.Struct && k != goreflect.Map {
		return nil, fmt.Errorf("expected map or struct, got %s", r.Type().String())
	}
	parsed, err := parseReflect(r)
	if err != nil {
		return nil, err
	}
	doc, ok := parsed.(domain.Document)
	if !ok {
		return nil, fmt.Errorf("value of type %T is not a document", in)
	}
	return doc, nil
}

func parseMap(v map[string]any) (domain.Document, error) {
	res := make(M, len(v))
	for k, item := range v {
		parsed, err := parseValue(item)
		if err != nil {
			return nil, err
		}
		res[k] = parsed
	}
	return res, nil
}

func parseValue(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case domain.Document:
		return t, nil
	case map[string]any:
		return parseMap(t)
	case []any:
		res := make([]any, len(t))
		for n, item := range t {
			parsed, err := parseValue(item)
			if err != nil {
				return nil, err
			}
			res[n] = parsed
		}
		return res, nil
	case string, bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, time.Time, time.Duration:
		return t, nil
	default:
		return parseReflect(goreflect.ValueNoEscapeOf(v))
	}
}

func parseReflect(r goreflect.Value) (any, error) {
	for r.Kind() == goreflect.Ptr || r.Kind() == goreflect.Interface {
		if r.IsNil() {
			return nil, nil
		}
		r = r.Elem()
	}
	switch r.Kind() {
	case goreflect.Invalid:
		return nil, nil
	case goreflect.Slice:
		if r.IsNil() {
			return nil, nil
		}
		fallthrough
	case goreflect.Array:
		return parseList(r)
	case goreflect.Struct:
		if r.Type() == timeTyp {
			return r.Interface(), nil
		}
		return parseStruct(r)
	case goreflect.Map:
		if r.IsNil() {
			return nil, nil
		}
		return parseMapReflect(r)
	case goreflect.Chan, goreflect.Func:
		return nil, fmt.Errorf("cannot store a %s in a document", r.Kind())
	default:
		return r.Interface(), nil
	}
}

func parseStruct(r goreflect.Value) (domain.Document, error) {
	typ := r.Type()
	numField := r.NumField()

	res := make(M, numField)

	for n := range numField {
		f := typ.Field(n)
		if f.PkgPath != "" {
			continue
		}
		info, err := parseField(r.Field(n), f)
		if err != nil {
			return nil, err
		}
		if info == nil {
			continue
		}
		res[info.name] = info.value
	}
	return res, nil
}

func parseMapReflect(v goreflect.Value) (domain.Document, error) {
	res := make(M, v.Len())
	for _, k := range v.MapKeys() {
		str := k.String()
		var err error
		if res[str], err = parseReflect(v.MapIndex(k)); err != nil {
			return nil, err
		}
	}
	return res, nil
}

type field struct {
	name  string
	value any
}

func parseField(r goreflect.Value, typ goreflect.StructField) (*field, error) {
	name := typ.Name
	var tagSegments []string
	if tag, ok := typ.Tag.Lookup(TagName); ok {
		if tag == "-" {
			return nil, nil
		}
		tagSegments = strings.Split(tag, ",")
		if tagSegments[0] != "" {
			name = tagSegments[0]
		}
		tagSegments = tagSegments[1:]
	}
	if slices.Contains(tagSegments, "omitempty") && isNullable(typ.Type) && r.IsNil() {
		return nil, nil
	}
	if slices.Contains(tagSegments, "omitzero") && r.IsZero() {
		return nil, nil
	}

	value, err := parseReflect(r)
	if err != nil {
		return nil, err
	}
	return &field{name: name, value: value}, nil
}

func parseList(r goreflect.Value) (any, error) {
	length := r.Len()
	res := make([]any, length)
	for i := range length {
		item, err := parseReflect(r.Index(i))
		if err != nil {
			return nil, err
		}
		res[i] = item
	}
	return res, nil
}

func isNullable(t goreflect.Type) bool {
	k := t.Kind()
	return k == reflect.Pointer ||
		k == reflect.Slice ||
		k == reflect.Map ||
		k == reflect.Interface
}

// Get implements [domain.Document].
func (d M) Get(key string) any {
	return d[key]
}

// Set implements [domain.Document].
func (d M) Set(key string, value any) {
	d[key] = value
}

// Unset implements [domain.Document].
func (d M) Unset(key string) {
	delete(d, key)
}

// Has implements [domain.Document].
func (d M) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// Iter implements [domain.Document].
func (d M) Iter() iter.Seq2[string, any] {
	return maps.All(d)
}

// Keys implements [domain.Document].
func (d M) Keys() iter.Seq[string] {
	return maps.Keys(d)
}

// Len implements [domain.Document].
func (d M) Len() int {
	return len(d)
}

// Clone returns a deep copy of the document. Nested documents and arrays are
// copied, scalar values are shared.
func (d M) Clone() M {
	res := make(M, len(d))
	for k, v := range d {
		res[k] = cloneValue(v)
	}
	return res
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case M:
		return t.Clone()
	case domain.Document:
		res := make(M, t.Len())
		for k, item := range t.Iter() {
			res[k] = cloneValue(item)
		}
		return res
	case []any:
		res := make([]any, len(t))
		for n, item := range t {
			res[n] = cloneValue(item)
		}
		return res
	default:
		return v
	}
}
