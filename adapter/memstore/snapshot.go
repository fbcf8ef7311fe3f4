package memstore

import (
	"context"
	"encoding/json"
	"io"
	"slices"

	"github.com/dolmen-go/contextio"

	"github.com/docdao/docdao/domain"
)

type snapshot struct {
	Collections map[string]collectionSnapshot `json:"collections"`
	Indexes     map[string][]indexSnapshot    `json:"indexes"`
}

type collectionSnapshot struct {
	IDField string           `json:"idField"`
	Docs    []map[string]any `json:"docs"`
}

type indexSnapshot struct {
	Fields []string `json:"fields"`
	Unique bool     `json:"unique"`
}

// Dump implements [domain.Snapshotter], writing all collections and declared
// indexes as JSON. The write stops when the context is canceled.
func (m *Memstore) Dump(ctx context.Context, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := snapshot{
		Collections: map[string]collectionSnapshot{},
		Indexes:     map[string][]indexSnapshot{},
	}
	for name, col := range m.collections {
		docs := make([]map[string]any, len(col.docs))
		for n, doc := range col.docs {
			plain := make(map[string]any, doc.Len())
			for k, v := range doc.Iter() {
				plain[k] = v
			}
			docs[n] = plain
		}
		snap.Collections[name] = collectionSnapshot{IDField: col.idField, Docs: docs}
	}
	for name, descriptors := range m.declared {
		for _, d := range descriptors {
			unique := false
			if col := m.collections[name]; col != nil && len(d) == 1 {
				_, unique = col.unique[d[0]]
			}
			snap.Indexes[name] = append(snap.Indexes[name], indexSnapshot{
				Fields: slices.Clone(d),
				Unique: unique,
			})
		}
	}
	return json.NewEncoder(contextio.NewWriter(ctx, w)).Encode(snap)
}

// Load implements [domain.Snapshotter], replacing all collections with the
// snapshot read from r.
func (m *Memstore) Load(ctx context.Context, r io.Reader) error {
	var snap snapshot
	if err := json.NewDecoder(contextio.NewReader(ctx, r)).Decode(&snap); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.collections = map[string]*collection{}
	m.declared = map[string][]domain.IndexDescriptor{}

	for name, colSnap := range snap.Collections {
		col := m.collection(name)
		if colSnap.IDField != "" {
			col.idField = colSnap.IDField
		}
		for _, plain := range colSnap.Docs {
			doc, err := m.documentFactory(plain)
			if err != nil {
				return err
			}
			col.docs = append(col.docs, doc)
		}
	}
	for name, idxSnaps := range snap.Indexes {
		for _, idxSnap := range idxSnaps {
			if err := m.ensureIndexLocked(name, idxSnap.Unique, idxSnap.Fields...); err != nil {
				return err
			}
		}
	}
	return nil
}
