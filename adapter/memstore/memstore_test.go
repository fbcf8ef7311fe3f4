package memstore

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/docdao/docdao/adapter/data"
	"github.com/docdao/docdao/domain"
)

var ctx = context.Background()

type MemstoreTestSuite struct {
	suite.Suite
	store *Memstore
}

func (s *MemstoreTestSuite) SetupTest() {
	s.store = NewMemstore()
}

func (s *MemstoreTestSuite) SetupSubTest() {
	s.SetupTest()
}

func TestMemstoreTestSuite(t *testing.T) {
	suite.Run(t, new(MemstoreTestSuite))
}

func (s *MemstoreTestSuite) save(docs ...data.M) {
	for _, doc := range docs {
		_, err := s.store.Save(ctx, "person", "id", doc)
		s.Require().NoError(err)
	}
}

func (s *MemstoreTestSuite) find(nq domain.NativeQuery) []domain.Document {
	if nq.Collection == "" {
		nq.Collection = "person"
	}
	docs, err := s.store.Find(ctx, nq)
	s.Require().NoError(err)
	return docs
}

func (s *MemstoreTestSuite) seedPeople() {
	s.save(
		data.M{"id": "1", "name": "ana", "age": 30},
		data.M{"id": "2", "name": "bob", "age": 20},
		data.M{"id": "3", "name": "cris", "age": 40},
	)
}

func (s *MemstoreTestSuite) TestSave() {
	s.Run("GeneratesMissingIDs", func() {
		saved, err := s.store.Save(ctx, "person", "id", data.M{"name": "ana"})
		s.NoError(err)
		s.NotEmpty(saved.Get("id"))
	})

	s.Run("KeepsProvidedIDs", func() {
		saved, err := s.store.Save(ctx, "person", "id", data.M{"id": "1", "name": "ana"})
		s.NoError(err)
		s.Equal("1", saved.Get("id"))
	})

	s.Run("ReplacesOnSameID", func() {
		s.save(data.M{"id": "1", "name": "ana"}, data.M{"id": "1", "name": "bob"})
		docs := s.find(domain.NativeQuery{Limit: 10})
		s.Len(docs, 1)
		s.Equal("bob", docs[0].Get("name"))
	})

	s.Run("ReturnsAnIsolatedCopy", func() {
		saved, err := s.store.Save(ctx, "person", "id", data.M{"id": "1", "name": "ana"})
		s.NoError(err)
		saved.Set("name", "changed")
		docs := s.find(domain.NativeQuery{Limit: 10})
		s.Equal("ana", docs[0].Get("name"))
	})
}

func (s *MemstoreTestSuite) TestFind() {
	s.Run("Filter", func() {
		s.seedPeople()
		docs := s.find(domain.NativeQuery{
			Filter: map[string]any{"age": map[string]any{"$gt": 25}},
			Limit:  10,
		})
		s.Len(docs, 2)
	})

	s.Run("Sort", func() {
		s.seedPeople()
		docs := s.find(domain.NativeQuery{
			Sort:  domain.Sort{{Key: "age", Order: -1}},
			Limit: 10,
		})
		s.Equal("cris", docs[0].Get("name"))
		s.Equal("bob", docs[2].Get("name"))
	})

	s.Run("OffsetAndLimit", func() {
		s.seedPeople()
		docs := s.find(domain.NativeQuery{
			Sort:   domain.Sort{{Key: "age", Order: 1}},
			Offset: 1,
			Limit:  1,
		})
		s.Len(docs, 1)
		s.Equal("ana", docs[0].Get("name"))
	})

	s.Run("ZeroLimitReturnsNothing", func() {
		s.seedPeople()
		s.Empty(s.find(domain.NativeQuery{}))
	})

	s.Run("Projection", func() {
		s.seedPeople()
		docs := s.find(domain.NativeQuery{
			Filter:     map[string]any{"id": "1"},
			Projection: []string{"name"},
			Limit:      10,
		})
		s.Len(docs, 1)
		s.True(docs[0].Has("name"))
		s.True(docs[0].Has("id"))
		s.False(docs[0].Has("age"))
	})

	s.Run("UnknownCollection", func() {
		docs, err := s.store.Find(ctx, domain.NativeQuery{Collection: "missing", Limit: 10})
		s.NoError(err)
		s.Empty(docs)
	})
}

func (s *MemstoreTestSuite) TestCountIgnoresPaging() {
	s.seedPeople()
	count, err := s.store.Count(ctx, domain.NativeQuery{
		Collection: "person",
		Offset:     1,
		Limit:      1,
	})
	s.NoError(err)
	s.Equal(int64(3), count)
}

func (s *MemstoreTestSuite) TestUniqueIndex() {
	s.Run("RejectsDuplicates", func() {
		s.NoError(s.store.EnsureIndex("person", true, "email"))
		s.save(data.M{"id": "1", "email": "ana@x.io"})
		_, err := s.store.Save(ctx, "person", "id", data.M{"id": "2", "email": "ana@x.io"})
		s.ErrorIs(err, domain.ErrConstraintViolated)
	})

	s.Run("AllowsReplacingTheOwner", func() {
		s.NoError(s.store.EnsureIndex("person", true, "email"))
		s.save(data.M{"id": "1", "email": "ana@x.io"})
		_, err := s.store.Save(ctx, "person", "id", data.M{"id": "1", "email": "ana@x.io", "name": "ana"})
		s.NoError(err)
	})

	s.Run("IndexesExistingDocuments", func() {
		s.save(data.M{"id": "1", "email": "ana@x.io"})
		s.NoError(s.store.EnsureIndex("person", true, "email"))
		_, err := s.store.Save(ctx, "person", "id", data.M{"id": "2", "email": "ana@x.io"})
		s.ErrorIs(err, domain.ErrConstraintViolated)
	})
}

func (s *MemstoreTestSuite) TestIndexes() {
	s.NoError(s.store.EnsureIndex("person", true, "email"))
	s.NoError(s.store.EnsureIndex("person", false, "age", "name"))
	s.NoError(s.store.EnsureIndex("person", true, "email")) // declared once

	s.Equal([]domain.IndexDescriptor{
		{"email"},
		{"age", "name"},
	}, s.store.Indexes("person"))
	s.Empty(s.store.Indexes("missing"))
}

func (s *MemstoreTestSuite) TestFindOneAndModify() {
	s.Run("SetAndUnset", func() {
		s.save(data.M{"id": "1", "name": "ana", "age": 30})
		doc, found, err := s.store.FindOneAndModify(ctx,
			domain.NativeQuery{Collection: "person", Filter: map[string]any{"id": "1"}},
			map[string]any{
				"$set":   map[string]any{"name": "ana maria"},
				"$unset": map[string]any{"age": true},
			})
		s.NoError(err)
		s.True(found)
		s.Equal("ana maria", doc.Get("name"))
		s.False(doc.Has("age"))

		docs := s.find(domain.NativeQuery{Filter: map[string]any{"id": "1"}, Limit: 10})
		s.Equal("ana maria", docs[0].Get("name"))
	})

	s.Run("SortPicksTheFirst", func() {
		s.save(
			data.M{"id": "1", "name": "ana", "age": 30},
			data.M{"id": "2", "name": "bob", "age": 20},
		)
		doc, found, err := s.store.FindOneAndModify(ctx,
			domain.NativeQuery{
				Collection: "person",
				Sort:       domain.Sort{{Key: "age", Order: 1}},
			},
			map[string]any{"$set": map[string]any{"seen": true}})
		s.NoError(err)
		s.True(found)
		s.Equal("bob", doc.Get("name"))
	})

	s.Run("NoMatch", func() {
		_, found, err := s.store.FindOneAndModify(ctx,
			domain.NativeQuery{Collection: "person", Filter: map[string]any{"id": "9"}},
			map[string]any{"$set": map[string]any{"x": 1}})
		s.NoError(err)
		s.False(found)
	})
}

func (s *MemstoreTestSuite) TestDeleteByQuery() {
	s.Run("RemovesEveryMatch", func() {
		s.save(
			data.M{"id": "1", "status": "open"},
			data.M{"id": "2", "status": "done"},
			data.M{"id": "3", "status": "open"},
		)

		removed, err := s.store.DeleteByQuery(ctx, domain.NativeQuery{
			Collection: "person",
			Filter:     map[string]any{"status": "open"},
		})
		s.NoError(err)
		s.Equal(int64(2), removed)

		docs := s.find(domain.NativeQuery{Limit: 10})
		s.Len(docs, 1)
		s.Equal("2", docs[0].Get("id"))
	})

	s.Run("FilterErrorLeavesTheCollectionUntouched", func() {
		// doc 1 matches the filter, doc 3 makes the comparer fail
		s.save(
			data.M{"id": "1", "v": 1},
			data.M{"id": "2", "v": 5},
			data.M{"id": "3", "v": complex(2, 3)},
		)

		_, err := s.store.DeleteByQuery(ctx, domain.NativeQuery{
			Collection: "person",
			Filter:     map[string]any{"v": map[string]any{"$in": []any{1, complex(2, 3)}}},
		})
		s.Error(err)

		docs := s.find(domain.NativeQuery{Limit: 10})
		s.Len(docs, 3)
		ids := map[any]int{}
		for _, doc := range docs {
			ids[doc.Get("id")]++
		}
		s.Equal(map[any]int{"1": 1, "2": 1, "3": 1}, ids)
	})
}

func (s *MemstoreTestSuite) TestSnapshot() {
	s.NoError(s.store.EnsureIndex("person", true, "email"))
	s.save(
		data.M{"id": "1", "name": "ana", "email": "ana@x.io"},
		data.M{"id": "2", "name": "bob", "email": "bob@x.io"},
	)

	var buf bytes.Buffer
	s.NoError(s.store.Dump(ctx, &buf))

	restored := NewMemstore()
	s.NoError(restored.Load(ctx, &buf))

	docs, err := restored.Find(ctx, domain.NativeQuery{Collection: "person", Limit: 10})
	s.NoError(err)
	s.Len(docs, 2)

	// declared indexes and uniqueness survive the round trip
	s.Equal([]domain.IndexDescriptor{{"email"}}, restored.Indexes("person"))
	_, err = restored.Save(ctx, "person", "id", data.M{"id": "3", "email": "ana@x.io"})
	s.ErrorIs(err, domain.ErrConstraintViolated)
}
