// Package modifier contains the default [domain.Modifier] implementation,
// applying $set and $unset operator documents to document copies.
package modifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/docdao/docdao/adapter/data"
	"github.com/docdao/docdao/adapter/fieldnavigator"
	"github.com/docdao/docdao/domain"
)

type modFunc func(domain.Document, []string, any) error

// Modifier implements [domain.Modifier].
type Modifier struct {
	docFac         domain.DocumentFactory
	fieldNavigator domain.FieldNavigator
	idField        string
	mods           map[string]modFunc
}

// NewModifier returns a new implementation of [domain.Modifier]. The id field
// is protected: updates may not change it.
func NewModifier(idField string, options ...Option) domain.Modifier {
	m := &Modifier{
		docFac:  data.NewDocument,
		idField: idField,
	}
	for _, option := range options {
		option(m)
	}
	if m.fieldNavigator == nil {
		m.fieldNavigator = fieldnavigator.NewFieldNavigator(m.docFac)
	}
	m.mods = map[string]modFunc{
		"$set":   m.set,
		"$unset": m.unset,
	}
	return m
}

// Modify implements [domain.Modifier].
func (m *Modifier) Modify(doc domain.Document, update map[string]any) (domain.Document, error) {
	for modName := range update {
		if !strings.HasPrefix(modName, "$") {
			return nil, fmt.Errorf("update document must contain only modifiers, got %q", modName)
		}
		if _, ok := m.mods[modName]; !ok {
			return nil, fmt.Errorf("unknown modifier %s", modName)
		}
	}

	docCopy, err := m.copyDoc(doc)
	if err != nil {
		return nil, err
	}

	for modName, arg := range update {
		fields, ok := arg.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("modifier %s's argument must be an object", modName)
		}
		for key, value := range fields {
			if key == m.idField {
				return nil, fmt.Errorf("you cannot change a document's %s", m.idField)
			}
			addr, err := m.fieldNavigator.GetAddress(key)
			if err != nil {
				return nil, err
			}
			if err := m.mods[modName](docCopy, addr, value); err != nil {
				return nil, err
			}
		}
	}
	return docCopy, nil
}

func (m *Modifier) set(doc domain.Document, addr []string, value any) error {
	fields, err := m.fieldNavigator.EnsureField(doc, addr...)
	if err != nil {
		return err
	}
	parsed, err := m.parseValue(value)
	if err != nil {
		return err
	}
	for _, field := range fields {
		field.Set(parsed)
	}
	return nil
}

func (m *Modifier) unset(doc domain.Document, addr []string, _ any) error {
	fields, _, err := m.fieldNavigator.GetField(doc, addr...)
	if err != nil {
		return err
	}
	for _, field := range fields {
		field.Unset()
	}
	return nil
}

func (m *Modifier) parseValue(v any) (any, error) {
	switch v.(type) {
	case nil, string, bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64,
		time.Time, time.Duration, []any, domain.Document:
		return v, nil
	default:
		doc, err := m.docFac(v)
		if err != nil {
			// scalar values that the factory rejects are stored
			// as-is
			return v, nil
		}
		return doc, nil
	}
}

func (m *Modifier) copyDoc(doc domain.Document) (domain.Document, error) {
	res, err := m.docFac(nil)
	if err != nil {
		return nil, err
	}
	for k, v := range doc.Iter() {
		copied, err := m.copyAny(v)
		if err != nil {
			return nil, err
		}
		res.Set(k, copied)
	}
	return res, nil
}

func (m *Modifier) copyAny(v any) (any, error) {
	switch t := v.(type) {
	case domain.Document:
		return m.copyDoc(t)
	case []any:
		newList := make([]any, len(t))
		for n, item := range t {
			newV, err := m.copyAny(item)
			if err != nil {
				return nil, err
			}
			newList[n] = newV
		}
		return newList, nil
	default:
		return v, nil
	}
}
