// Package memstore contains an in-memory [domain.Executor] with declared
// indexes, used for tests, tooling and embedded setups.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/docdao/docdao/adapter/comparer"
	"github.com/docdao/docdao/adapter/data"
	"github.com/docdao/docdao/adapter/fieldnavigator"
	"github.com/docdao/docdao/adapter/idgenerator"
	"github.com/docdao/docdao/adapter/index"
	"github.com/docdao/docdao/adapter/matcher"
	"github.com/docdao/docdao/adapter/modifier"
	"github.com/docdao/docdao/adapter/projector"
	"github.com/docdao/docdao/domain"
)

// Memstore implements [domain.Executor], [domain.IndexCatalog] and
// [domain.Snapshotter] over in-process collections. All operations are safe
// for concurrent use.
type Memstore struct {
	mu              sync.RWMutex
	collections     map[string]*collection
	declared        map[string][]domain.IndexDescriptor
	comparer        domain.Comparer
	matcher         domain.Matcher
	projector       domain.Projector
	fieldNavigator  domain.FieldNavigator
	documentFactory domain.DocumentFactory
	idGenerator     domain.IDGenerator
	modifierFactory func(idField string) domain.Modifier
}

type collection struct {
	idField string
	docs    []domain.Document
	unique  map[string]domain.Index
}

// NewMemstore returns a new empty [Memstore].
func NewMemstore(options ...Option) *Memstore {
	comp := comparer.NewComparer()
	docFac := data.NewDocument
	fn := fieldnavigator.NewFieldNavigator(docFac)
	m := &Memstore{
		collections: map[string]*collection{},
		declared:    map[string][]domain.IndexDescriptor{},
		comparer:    comp,
		matcher: matcher.NewMatcher(
			matcher.WithDocumentFactory(docFac),
			matcher.WithComparer(comp),
			matcher.WithFieldNavigator(fn),
		),
		projector:       projector.NewProjector(),
		fieldNavigator:  fn,
		documentFactory: docFac,
		idGenerator:     idgenerator.NewIDGenerator(),
	}
	for _, option := range options {
		option(m)
	}
	if m.modifierFactory == nil {
		m.modifierFactory = func(idField string) domain.Modifier {
			return modifier.NewModifier(idField,
				modifier.WithDocumentFactory(m.documentFactory),
				modifier.WithFieldNavigator(m.fieldNavigator),
			)
		}
	}
	return m
}

// EnsureIndex declares an index over the given ordered fields. A unique
// single-field index also enforces uniqueness on writes, indexing any
// existing documents first.
func (m *Memstore) EnsureIndex(collectionName string, unique bool, fields ...string) error {
	if len(fields) == 0 {
		return fmt.Errorf("cannot create an index without a field name")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureIndexLocked(collectionName, unique, fields...)
}

func (m *Memstore) ensureIndexLocked(collectionName string, unique bool, fields ...string) error {
	exists := slices.ContainsFunc(m.declared[collectionName], func(d domain.IndexDescriptor) bool {
		return slices.Equal(d, fields)
	})
	if !exists {
		m.declared[collectionName] = append(m.declared[collectionName], slices.Clone(fields))
	}
	if !unique || len(fields) != 1 {
		return nil
	}

	col := m.collection(collectionName)
	if _, ok := col.unique[fields[0]]; ok {
		return nil
	}
	idx, err := index.NewIndex(fields[0], true,
		index.WithComparer(m.comparer),
		index.WithFieldNavigator(m.fieldNavigator),
	)
	if err != nil {
		return err
	}
	for _, doc := range col.docs {
		if err := idx.Insert(doc); err != nil {
			return err
		}
	}
	col.unique[fields[0]] = idx
	return nil
}

// Indexes implements [domain.IndexCatalog].
func (m *Memstore) Indexes(collectionName string) []domain.IndexDescriptor {
	m.mu.RLock()
	defer m.mu.RUnlock()
	descriptors := m.declared[collectionName]
	res := make([]domain.IndexDescriptor, len(descriptors))
	for n, d := range descriptors {
		res[n] = slices.Clone(d)
	}
	return res
}

// Find implements [domain.Executor].
func (m *Memstore) Find(ctx context.Context, nq domain.NativeQuery) ([]domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs, err := m.matching(nq)
	if err != nil {
		return nil, err
	}
	if err := m.sortDocs(docs, nq.Sort); err != nil {
		return nil, err
	}
	docs = page(docs, nq.Offset, nq.Limit)
	docs, err = m.cloneDocs(docs)
	if err != nil {
		return nil, err
	}
	if len(nq.Projection) > 0 {
		idField := "id"
		if col := m.collections[nq.Collection]; col != nil {
			idField = col.idField
		}
		return m.projector.Project(docs, nq.Projection, idField)
	}
	return docs, nil
}

// Count implements [domain.Executor]. Offset and limit do not apply.
func (m *Memstore) Count(ctx context.Context, nq domain.NativeQuery) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs, err := m.matching(nq)
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

// FindOneAndModify implements [domain.Executor].
func (m *Memstore) FindOneAndModify(ctx context.Context, nq domain.NativeQuery, update map[string]any) (domain.Document, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	col := m.collections[nq.Collection]
	if col == nil {
		return nil, false, nil
	}

	// first match in sort order, tracked by position
	best := -1
	for n, doc := range col.docs {
		matched, err := m.matcher.Match(doc, nq.Filter)
		if err != nil {
			return nil, false, err
		}
		if !matched {
			continue
		}
		if best == -1 {
			best = n
			continue
		}
		comp, err := m.compareDocs(doc, col.docs[best], nq.Sort)
		if err != nil {
			return nil, false, err
		}
		if comp < 0 {
			best = n
		}
	}
	if best == -1 {
		return nil, false, nil
	}

	oldDoc := col.docs[best]
	newDoc, err := m.modifierFactory(col.idField).Modify(oldDoc, update)
	if err != nil {
		return nil, false, err
	}
	for _, idx := range col.unique {
		if err := idx.Update(oldDoc, newDoc); err != nil {
			return nil, false, err
		}
	}
	col.docs[best] = newDoc
	res, err := m.cloneDoc(newDoc)
	if err != nil {
		return nil, false, err
	}
	return res, true, nil
}

// DeleteByQuery implements [domain.Executor].
func (m *Memstore) DeleteByQuery(ctx context.Context, nq domain.NativeQuery) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	col := m.collections[nq.Collection]
	if col == nil {
		return 0, nil
	}

	// match everything before touching the collection, so a filter error
	// leaves it untouched
	kept := make([]domain.Document, 0, len(col.docs))
	var matched []domain.Document
	for _, doc := range col.docs {
		ok, err := m.matcher.Match(doc, nq.Filter)
		if err != nil {
			return 0, err
		}
		if ok {
			matched = append(matched, doc)
		} else {
			kept = append(kept, doc)
		}
	}

	type removal struct {
		idx domain.Index
		doc domain.Document
	}
	var removals []removal
	for _, doc := range matched {
		for _, idx := range col.unique {
			if err := idx.Remove(doc); err != nil {
				for _, r := range removals {
					_ = r.idx.Insert(r.doc)
				}
				return 0, err
			}
			removals = append(removals, removal{idx: idx, doc: doc})
		}
	}
	col.docs = kept
	return int64(len(matched)), nil
}

// Save implements [domain.Executor]. Documents without an id get a generated
// one. An existing id is replaced, anything else is inserted.
func (m *Memstore) Save(ctx context.Context, collectionName, idField string, doc domain.Document) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	col := m.collection(collectionName)
	col.idField = idField

	stored, err := m.cloneDoc(doc)
	if err != nil {
		return nil, err
	}
	if !stored.Has(idField) || stored.Get(idField) == nil {
		id, err := m.idGenerator.GenerateID()
		if err != nil {
			return nil, err
		}
		stored.Set(idField, id)
	}

	existing := -1
	for n, candidate := range col.docs {
		comp, err := m.comparer.Compare(candidate.Get(idField), stored.Get(idField))
		if err != nil {
			return nil, err
		}
		if comp == 0 {
			existing = n
			break
		}
	}

	if existing >= 0 {
		for _, idx := range col.unique {
			if err := idx.Update(col.docs[existing], stored); err != nil {
				return nil, err
			}
		}
		col.docs[existing] = stored
	} else {
		inserted := make([]domain.Index, 0, len(col.unique))
		for _, idx := range col.unique {
			if err = idx.Insert(stored); err != nil {
				break
			}
			inserted = append(inserted, idx)
		}
		if err != nil {
			for _, idx := range inserted {
				_ = idx.Remove(stored)
			}
			return nil, err
		}
		col.docs = append(col.docs, stored)
	}
	return m.cloneDoc(stored)
}

func (m *Memstore) collection(name string) *collection {
	col := m.collections[name]
	if col == nil {
		col = &collection{
			idField: "id",
			unique:  map[string]domain.Index{},
		}
		m.collections[name] = col
	}
	return col
}

// matching returns the stored documents selected by the filter, in insertion
// order. Callers must hold the lock.
func (m *Memstore) matching(nq domain.NativeQuery) ([]domain.Document, error) {
	col := m.collections[nq.Collection]
	if col == nil {
		return nil, nil
	}
	var res []domain.Document
	for _, doc := range col.docs {
		matched, err := m.matcher.Match(doc, nq.Filter)
		if err != nil {
			return nil, err
		}
		if matched {
			res = append(res, doc)
		}
	}
	return res, nil
}

func (m *Memstore) sortDocs(docs []domain.Document, sort domain.Sort) error {
	if len(sort) == 0 {
		return nil
	}
	var sortErr error
	slices.SortStableFunc(docs, func(a, b domain.Document) int {
		if sortErr != nil {
			return 0
		}
		comp, err := m.compareDocs(a, b, sort)
		if err != nil {
			sortErr = err
			return 0
		}
		return comp
	})
	return sortErr
}

func (m *Memstore) compareDocs(a, b domain.Document, sort domain.Sort) (int, error) {
	for _, s := range sort {
		comp, err := m.compareField(a, b, s.Key)
		if err != nil {
			return 0, err
		}
		if comp != 0 {
			if s.Order < 0 {
				return -comp, nil
			}
			return comp, nil
		}
	}
	return 0, nil
}

func (m *Memstore) compareField(a, b domain.Document, field string) (int, error) {
	addr, err := m.fieldNavigator.GetAddress(field)
	if err != nil {
		return 0, err
	}
	av, err := m.fieldValue(a, addr)
	if err != nil {
		return 0, err
	}
	bv, err := m.fieldValue(b, addr)
	if err != nil {
		return 0, err
	}
	return m.comparer.Compare(av, bv)
}

func (m *Memstore) fieldValue(doc domain.Document, addr []string) (any, error) {
	getters, _, err := m.fieldNavigator.GetField(doc, addr...)
	if err != nil {
		return nil, err
	}
	for _, g := range getters {
		if v, defined := g.Get(); defined {
			return v, nil
		}
	}
	return nil, nil
}

func page(docs []domain.Document, offset, limit int64) []domain.Document {
	if offset < 0 {
		offset = 0
	}
	if offset > int64(len(docs)) {
		return nil
	}
	docs = docs[offset:]
	if limit > 0 && limit < int64(len(docs)) {
		docs = docs[:limit]
	}
	if limit == 0 {
		return nil
	}
	return docs
}

func (m *Memstore) cloneDocs(docs []domain.Document) ([]domain.Document, error) {
	res := make([]domain.Document, len(docs))
	for n, doc := range docs {
		cloned, err := m.cloneDoc(doc)
		if err != nil {
			return nil, err
		}
		res[n] = cloned
	}
	return res, nil
}

func (m *Memstore) cloneDoc(doc domain.Document) (domain.Document, error) {
	if d, ok := doc.(data.M); ok {
		return d.Clone(), nil
	}
	res, err := m.documentFactory(nil)
	if err != nil {
		return nil, err
	}
	for k, v := range doc.Iter() {
		res.Set(k, v)
	}
	return res, nil
}
