// Package idgenerator contains the default [domain.IDGenerator]
// implementation, producing random UUIDs.
package idgenerator

import (
	"io"

	"github.com/google/uuid"

	"github.com/docdao/docdao/domain"
)

// IDGenerator implements [domain.IDGenerator].
type IDGenerator struct {
	reader io.Reader
}

// Option configures the generator through the functional options pattern.
type Option func(*IDGenerator)

// WithRandomReader sets the randomness source used to build ids.
func WithRandomReader(r io.Reader) Option {
	return func(i *IDGenerator) {
		i.reader = r
	}
}

// NewIDGenerator returns a new implementation of [domain.IDGenerator].
func NewIDGenerator(options ...Option) domain.IDGenerator {
	i := &IDGenerator{}
	for _, option := range options {
		option(i)
	}
	return i
}

// GenerateID implements [domain.IDGenerator].
func (i *IDGenerator) GenerateID() (string, error) {
	if i.reader != nil {
		id, err := uuid.NewRandomFromReader(i.reader)
		if err != nil {
			return "", err
		}
		return id.String(), nil
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
