package fieldnavigator

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/docdao/docdao/adapter/data"
	"github.com/docdao/docdao/domain"
)

type FieldNavigatorTestSuite struct {
	suite.Suite
	fn domain.FieldNavigator
}

func (s *FieldNavigatorTestSuite) SetupTest() {
	s.fn = NewFieldNavigator(data.NewDocument)
}

func TestFieldNavigatorTestSuite(t *testing.T) {
	suite.Run(t, new(FieldNavigatorTestSuite))
}

func (s *FieldNavigatorTestSuite) TestGetAddress() {
	addr, err := s.fn.GetAddress("a.b.c")
	s.NoError(err)
	s.Equal([]string{"a", "b", "c"}, addr)

	addr, err = s.fn.GetAddress("plain")
	s.NoError(err)
	s.Equal([]string{"plain"}, addr)
}

func (s *FieldNavigatorTestSuite) values(doc any, parts ...string) []any {
	getters, _, err := s.fn.GetField(doc, parts...)
	s.Require().NoError(err)
	res := make([]any, 0, len(getters))
	for _, g := range getters {
		if v, defined := g.Get(); defined {
			res = append(res, v)
		}
	}
	return res
}

func (s *FieldNavigatorTestSuite) TestGetField() {
	doc := data.M{
		"name": "ana",
		"address": data.M{
			"city": "lima",
		},
		"tags": []any{
			data.M{"k": "color", "v": "red"},
			data.M{"k": "size", "v": "M"},
		},
	}

	s.Run("TopLevel", func() {
		s.Equal([]any{"ana"}, s.values(doc, "name"))
	})

	s.Run("Nested", func() {
		s.Equal([]any{"lima"}, s.values(doc, "address", "city"))
	})

	s.Run("NumericIndex", func() {
		s.Equal([]any{"size"}, s.values(doc, "tags", "1", "k"))
	})

	s.Run("ArrayExpansion", func() {
		getters, expanded, err := s.fn.GetField(doc, "tags", "k")
		s.NoError(err)
		s.True(expanded)
		s.Len(getters, 2)
		s.Equal([]any{"color", "size"}, s.values(doc, "tags", "k"))
	})

	s.Run("MissingField", func() {
		getters, _, err := s.fn.GetField(doc, "missing")
		s.NoError(err)
		s.Len(getters, 1)
		_, defined := getters[0].Get()
		s.False(defined)
	})

	s.Run("PathThroughScalar", func() {
		getters, _, err := s.fn.GetField(doc, "name", "sub")
		s.NoError(err)
		_, defined := getters[0].Get()
		s.False(defined)
	})

	s.Run("OutOfBoundsIndex", func() {
		getters, _, err := s.fn.GetField(doc, "tags", "9")
		s.NoError(err)
		_, defined := getters[0].Get()
		s.False(defined)
	})

	s.Run("NilDocument", func() {
		getters, _, err := s.fn.GetField(nil, "a")
		s.NoError(err)
		_, defined := getters[0].Get()
		s.False(defined)
	})
}

func (s *FieldNavigatorTestSuite) TestSetThroughGetter() {
	doc := data.M{"address": data.M{"city": "lima"}}
	getters, _, err := s.fn.GetField(doc, "address", "city")
	s.NoError(err)
	s.Len(getters, 1)
	getters[0].Set("cusco")
	s.Equal("cusco", doc.Get("address").(data.M).Get("city"))

	getters[0].Unset()
	s.False(doc.Get("address").(data.M).Has("city"))
}

func (s *FieldNavigatorTestSuite) TestEnsureField() {
	s.Run("CreatesIntermediateDocuments", func() {
		doc := data.M{}
		getters, err := s.fn.EnsureField(doc, "a", "b", "c")
		s.NoError(err)
		s.Len(getters, 1)
		getters[0].Set(42)

		s.Equal(42, doc.Get("a").(domain.Document).Get("b").(domain.Document).Get("c"))
	})

	s.Run("KeepsExistingValues", func() {
		doc := data.M{"a": data.M{"x": 1}}
		getters, err := s.fn.EnsureField(doc, "a", "b")
		s.NoError(err)
		getters[0].Set(2)

		inner := doc.Get("a").(data.M)
		s.Equal(1, inner.Get("x"))
		s.Equal(2, inner.Get("b"))
	})
}
