package comparer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/docdao/docdao/adapter/data"
	"github.com/docdao/docdao/domain"
)

type ComparerTestSuite struct {
	suite.Suite
	c domain.Comparer
}

func (s *ComparerTestSuite) SetupTest() {
	s.c = NewComparer()
}

func TestComparerTestSuite(t *testing.T) {
	suite.Run(t, new(ComparerTestSuite))
}

func (s *ComparerTestSuite) compare(a, b any) int {
	comp, err := s.c.Compare(a, b)
	s.Require().NoError(err)
	return comp
}

func (s *ComparerTestSuite) TestNumbers() {
	s.Zero(s.compare(1, 1))
	s.Equal(-1, s.compare(1, 2))
	s.Equal(1, s.compare(2, 1))

	// mixed numeric types compare by value
	s.Zero(s.compare(int64(3), float64(3)))
	s.Zero(s.compare(uint8(3), 3))
	s.Equal(-1, s.compare(2.5, int64(3)))
	s.Zero(s.compare(time.Duration(5), int64(5)))
}

func (s *ComparerTestSuite) TestStrings() {
	s.Zero(s.compare("a", "a"))
	s.Equal(-1, s.compare("a", "b"))
	s.Equal(1, s.compare("b", "a"))
}

func (s *ComparerTestSuite) TestBooleans() {
	s.Zero(s.compare(true, true))
	s.Equal(-1, s.compare(false, true))
	s.Equal(1, s.compare(true, false))
}

func (s *ComparerTestSuite) TestTime() {
	now := time.Now()
	s.Zero(s.compare(now, now))
	s.Equal(-1, s.compare(now, now.Add(time.Second)))
}

func (s *ComparerTestSuite) TestTypeClassOrder() {
	now := time.Now()
	ordered := []any{nil, 1, "a", false, now, []any{1}, data.M{"a": 1}}
	for i := range len(ordered) - 1 {
		s.Equal(-1, s.compare(ordered[i], ordered[i+1]), "%T < %T", ordered[i], ordered[i+1])
		s.Equal(1, s.compare(ordered[i+1], ordered[i]))
	}
}

func (s *ComparerTestSuite) TestArrays() {
	s.Zero(s.compare([]any{1, 2}, []any{1, 2}))
	s.Equal(-1, s.compare([]any{1, 2}, []any{1, 3}))
	s.Equal(-1, s.compare([]any{1}, []any{1, 0}))
}

func (s *ComparerTestSuite) TestDocuments() {
	s.Zero(s.compare(data.M{"a": 1}, data.M{"a": 1}))
	s.Equal(-1, s.compare(data.M{"a": 1}, data.M{"a": 2}))
	s.Equal(-1, s.compare(data.M{"a": 1}, data.M{"a": 1, "b": 1}))
}

func (s *ComparerTestSuite) TestUncomparableTypes() {
	_, err := s.c.Compare(struct{}{}, struct{}{})
	s.Error(err)
}

func (s *ComparerTestSuite) TestComparable() {
	s.True(s.c.Comparable(1, 2.5))
	s.True(s.c.Comparable("a", "b"))
	s.True(s.c.Comparable(time.Now(), time.Now()))
	s.False(s.c.Comparable(1, "a"))
	s.False(s.c.Comparable(true, false))
}
