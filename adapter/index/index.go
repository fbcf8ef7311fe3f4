// Package index contains the default [domain.Index] implementation, an AVL
// tree keyed by one document field.
package index

import (
	"errors"
	"fmt"
	"slices"

	"github.com/vinicius-lino-figueiredo/bst"
	"github.com/vinicius-lino-figueiredo/bst/adapter/avl"

	"github.com/docdao/docdao/adapter/comparer"
	"github.com/docdao/docdao/adapter/data"
	"github.com/docdao/docdao/adapter/fieldnavigator"
	"github.com/docdao/docdao/domain"
)

// Index implements [domain.Index].
type Index struct {
	fieldName      string
	addr           []string
	unique         bool
	tree           bst.BST[any, domain.Document]
	bstComparer    bst.Comparer[any, domain.Document]
	comparer       domain.Comparer
	fieldNavigator domain.FieldNavigator
}

// NewIndex returns a new implementation of [domain.Index] covering one field.
func NewIndex(fieldName string, unique bool, options ...Option) (domain.Index, error) {
	i := &Index{
		fieldName: fieldName,
		unique:    unique,
		comparer:  comparer.NewComparer(),
	}
	for _, option := range options {
		option(i)
	}
	if i.fieldNavigator == nil {
		i.fieldNavigator = fieldnavigator.NewFieldNavigator(data.NewDocument)
	}

	addr, err := i.fieldNavigator.GetAddress(fieldName)
	if err != nil {
		return nil, err
	}
	i.addr = addr
	i.bstComparer = NewBSTComparer(i.comparer)
	i.tree = avl.NewBST(unique, 8, i.bstComparer)
	return i, nil
}

// FieldName implements [domain.Index].
func (i *Index) FieldName() string {
	return i.fieldName
}

// Unique implements [domain.Index].
func (i *Index) Unique() bool {
	return i.unique
}

func (i *Index) getKeys(doc domain.Document) ([]any, error) {
	values, _, err := i.fieldNavigator.GetField(doc, i.addr...)
	if err != nil {
		return nil, err
	}

	// documents without the field, or with a null value, are not indexed
	keys := make([]any, 0, len(values))
	for _, v := range values {
		value, defined := v.Get()
		if !defined || value == nil {
			continue
		}
		// each element of an array field is an individual key
		if l, ok := value.([]any); ok {
			for _, item := range l {
				if item != nil {
					keys = append(keys, item)
				}
			}
			continue
		}
		keys = append(keys, value)
	}

	slices.SortFunc(keys, i.compareKeys)
	return slices.CompactFunc(keys, func(a, b any) bool { return i.compareKeys(a, b) == 0 }), nil
}

// Insert implements [domain.Index].
func (i *Index) Insert(doc domain.Document) error {
	keys, err := i.getKeys(doc)
	if err != nil {
		return err
	}

	inserted := make([]any, 0, len(keys))
	for _, k := range keys {
		if err = i.tree.Insert(k, doc); err != nil {
			if e := new(bst.ErrUniqueViolated); errors.As(err, e) {
				err = fmt.Errorf("%w: %w", domain.ErrConstraintViolated, err)
			}
			break
		}
		inserted = append(inserted, k)
	}
	if err != nil {
		for _, k := range inserted {
			_ = i.tree.Delete(k, &doc)
		}
		return err
	}
	return nil
}

// Remove implements [domain.Index].
func (i *Index) Remove(doc domain.Document) error {
	keys, err := i.getKeys(doc)
	if err != nil {
		return err
	}
	errs := make([]error, 0, len(keys))
	for _, k := range keys {
		if err := i.tree.Delete(k, &doc); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Update implements [domain.Index].
func (i *Index) Update(oldDoc, newDoc domain.Document) error {
	if err := i.Remove(oldDoc); err != nil {
		return err
	}
	if err := i.Insert(newDoc); err != nil {
		_ = i.Insert(oldDoc)
		return err
	}
	return nil
}

// GetMatching implements [domain.Index].
func (i *Index) GetMatching(key any) ([]domain.Document, error) {
	found, err := i.tree.Search(key)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, nil
	}
	return slices.Clone(found.Values()), nil
}

func (i *Index) compareKeys(a any, b any) int {
	comp, _ := i.comparer.Compare(a, b)
	return comp
}
