package validator

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/docdao/docdao/adapter/query"
	"github.com/docdao/docdao/domain"
)

type catalogStub map[string][]domain.IndexDescriptor

func (c catalogStub) Indexes(collection string) []domain.IndexDescriptor {
	return c[collection]
}

type ValidatorTestSuite struct {
	suite.Suite
	validator *Validator
}

func (s *ValidatorTestSuite) SetupTest() {
	s.validator = NewValidator(catalogStub{
		"person": {
			{"name"},
			{"age", "name"},
		},
	})
}

func TestValidatorTestSuite(t *testing.T) {
	suite.Run(t, new(ValidatorTestSuite))
}

func (s *ValidatorTestSuite) TestNegativeLimit() {
	err := s.validator.Validate(query.New(query.WithLimit(-1)), "person")
	var qerr domain.ErrQuery
	s.ErrorAs(err, &qerr)
}

func (s *ValidatorTestSuite) TestGroupByWithoutCriterion() {
	err := s.validator.Validate(query.New(query.WithGroupBy("status")), "person")
	var qerr domain.ErrQuery
	s.ErrorAs(err, &qerr)

	s.NoError(s.validator.Validate(query.New(
		query.WithCriterion("name", "A", "B"),
		query.WithGroupBy("name"),
	), "person"))
}

func (s *ValidatorTestSuite) TestIndexSafety() {
	s.Run("IndexedFieldIsSafe", func() {
		s.NoError(s.validator.Validate(
			query.New(query.WithCriterion("name", "ana")), "person"))
	})

	s.Run("SecondaryIndexFieldIsNotAPrefix", func() {
		// "name" leads an index but as second field of [age name] it
		// would not count; only leading fields form the prefix set
		err := s.validator.Validate(
			query.New(query.WithCriterion("city", "x")), "person")
		var unsafe domain.ErrUnsafeQuery
		s.ErrorAs(err, &unsafe)
		s.Equal([]string{"city"}, unsafe.Fields)
		s.Len(unsafe.Indexes, 2)
	})

	s.Run("OneIndexedFieldAmongManyIsEnough", func() {
		s.NoError(s.validator.Validate(query.New(
			query.WithCriterion("city", "x"),
			query.WithCriterion("age>", 18),
		), "person"))
	})

	s.Run("RangeSuffixIsIgnoredForTheCheck", func() {
		s.NoError(s.validator.Validate(
			query.New(query.WithCriterion("name>", "m")), "person"))
	})

	s.Run("IDFilterBypasses", func() {
		s.NoError(s.validator.Validate(query.New(
			query.WithIDs("a"),
			query.WithCriterion("city", "x"),
		), "person"))
	})

	s.Run("DisabledValidationBypasses", func() {
		s.NoError(s.validator.Validate(query.New(
			query.WithCriterion("city", "x"),
			query.WithoutIndexValidation(),
		), "person"))
	})

	s.Run("NoCriteriaIsSafe", func() {
		s.NoError(s.validator.Validate(query.New(), "person"))
	})

	s.Run("UnknownCollectionHasNoIndexes", func() {
		err := s.validator.Validate(
			query.New(query.WithCriterion("name", "ana")), "other")
		var unsafe domain.ErrUnsafeQuery
		s.ErrorAs(err, &unsafe)
	})
}

func (s *ValidatorTestSuite) TestIsSafe() {
	s.True(s.validator.IsSafe(query.New(query.WithCriterion("name", "ana")), "person"))
	s.False(s.validator.IsSafe(query.New(query.WithCriterion("city", "x")), "person"))
	s.True(s.validator.IsSafe(query.New(), "person"))
	s.True(s.validator.IsSafe(query.New(query.WithIDs("a")), "person"))
}
