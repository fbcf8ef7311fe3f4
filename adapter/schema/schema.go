// Package schema builds [domain.EntitySchema] values from sample entity
// structs. The walk happens once at registration time; queries only consult
// the resulting path tables.
package schema

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	goreflect "github.com/goccy/go-reflect"

	"github.com/docdao/docdao/adapter/data"
	"github.com/docdao/docdao/domain"
)

var timeTyp = goreflect.TypeOf(*new(time.Time))

// EntitySchema implements [domain.EntitySchema] with precomputed field-path
// tables.
type EntitySchema struct {
	collection string
	idField    string
	fields     map[string]reflect.Type
	elems      map[string]*EntitySchema
}

// NewEntitySchema builds a schema from a sample entity value, which must be a
// struct or a pointer to one. Field names follow the same tag rules as
// document conversion. The collection defaults to the lowercased struct name
// and the primary-key field to "id".
func NewEntitySchema(sample any, options ...Option) (domain.EntitySchema, error) {
	typ := goreflect.TypeOf(sample)
	for typ != nil && typ.Kind() == goreflect.Ptr {
		typ = typ.Elem()
	}
	if typ == nil || typ.Kind() != goreflect.Struct {
		return nil, fmt.Errorf("expected struct entity, got %T", sample)
	}

	s, err := buildSchema(typ, map[goreflect.Type]bool{})
	if err != nil {
		return nil, err
	}
	s.collection = strings.ToLower(typ.Name())
	s.idField = "id"
	for _, option := range options {
		option(s)
	}
	s.propagateIDField()
	return s, nil
}

// propagateIDField pushes the id field down into the nested-array sub-schemas,
// which are built before the parent's id field is known.
func (s *EntitySchema) propagateIDField() {
	for _, sub := range s.elems {
		sub.idField = s.idField
		sub.propagateIDField()
	}
}

func buildSchema(typ goreflect.Type, seen map[goreflect.Type]bool) (*EntitySchema, error) {
	if seen[typ] {
		return nil, fmt.Errorf("entity type %s is self referential", typ.String())
	}
	seen[typ] = true
	defer delete(seen, typ)

	s := &EntitySchema{
		fields: map[string]reflect.Type{},
		elems:  map[string]*EntitySchema{},
	}
	if err := s.walk(typ, "", seen); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *EntitySchema) walk(typ goreflect.Type, prefix string, seen map[goreflect.Type]bool) error {
	for n := range typ.NumField() {
		f := typ.Field(n)
		if f.PkgPath != "" {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup(data.TagName); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		if err := s.addField(prefix+name, f.Type, seen); err != nil {
			return err
		}
	}
	return nil
}

func (s *EntitySchema) addField(path string, typ goreflect.Type, seen map[goreflect.Type]bool) error {
	s.fields[path] = goreflect.ToReflectType(typ)

	elem := typ
	for elem.Kind() == goreflect.Ptr {
		elem = elem.Elem()
	}
	switch elem.Kind() {
	case goreflect.Struct:
		if elem == timeTyp {
			return nil
		}
		if seen[elem] {
			return fmt.Errorf("entity type %s is self referential", elem.String())
		}
		seen[elem] = true
		err := s.walk(elem, path+".", seen)
		delete(seen, elem)
		return err
	case goreflect.Slice, goreflect.Array:
		item := elem.Elem()
		for item.Kind() == goreflect.Ptr {
			item = item.Elem()
		}
		if item.Kind() != goreflect.Struct || item == timeTyp {
			return nil
		}
		sub, err := buildSchema(item, seen)
		if err != nil {
			return err
		}
		sub.collection = path
		s.elems[path] = sub
		// sibling criteria like "tags.k" resolve through the array
		for subPath, subTyp := range sub.fields {
			s.fields[path+"."+subPath] = subTyp
		}
	}
	return nil
}

// Collection implements [domain.EntitySchema].
func (s *EntitySchema) Collection() string {
	return s.collection
}

// IDField implements [domain.EntitySchema].
func (s *EntitySchema) IDField() string {
	return s.idField
}

// FieldType implements [domain.EntitySchema].
func (s *EntitySchema) FieldType(path string) (reflect.Type, bool) {
	typ, ok := s.fields[path]
	return typ, ok
}

// Elem implements [domain.EntitySchema].
func (s *EntitySchema) Elem(path string) (domain.EntitySchema, error) {
	sub, ok := s.elems[path]
	if !ok {
		return nil, domain.QueryErrorf("field %q does not resolve to a nested document array", path)
	}
	return sub, nil
}
