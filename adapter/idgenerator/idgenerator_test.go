package idgenerator

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type IDGeneratorTestSuite struct {
	suite.Suite
}

func TestIDGeneratorTestSuite(t *testing.T) {
	suite.Run(t, new(IDGeneratorTestSuite))
}

func (s *IDGeneratorTestSuite) TestGeneratesValidUUIDs() {
	g := NewIDGenerator()

	first, err := g.GenerateID()
	s.NoError(err)
	_, err = uuid.Parse(first)
	s.NoError(err)

	second, err := g.GenerateID()
	s.NoError(err)
	s.NotEqual(first, second)
}

func (s *IDGeneratorTestSuite) TestDeterministicReader() {
	seed := bytes.Repeat([]byte{0x42}, 32)

	g := NewIDGenerator(WithRandomReader(bytes.NewReader(seed)))
	first, err := g.GenerateID()
	s.NoError(err)

	g = NewIDGenerator(WithRandomReader(bytes.NewReader(seed)))
	second, err := g.GenerateID()
	s.NoError(err)

	s.Equal(first, second)
}

func (s *IDGeneratorTestSuite) TestExhaustedReader() {
	g := NewIDGenerator(WithRandomReader(bytes.NewReader(nil)))
	_, err := g.GenerateID()
	s.Error(err)
}
