package index

import "github.com/docdao/docdao/domain"

// Option configures an [Index].
type Option func(*Index)

// WithComparer sets the comparer used for key ordering.
func WithComparer(comparer domain.Comparer) Option {
	return func(i *Index) {
		i.comparer = comparer
	}
}

// WithFieldNavigator sets the navigator used to extract key values.
func WithFieldNavigator(fieldNavigator domain.FieldNavigator) Option {
	return func(i *Index) {
		i.fieldNavigator = fieldNavigator
	}
}
