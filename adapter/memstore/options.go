package memstore

import "github.com/docdao/docdao/domain"

// Option configures a [Memstore].
type Option func(*Memstore)

// WithComparer sets the comparer used for ordering and id equality.
func WithComparer(comparer domain.Comparer) Option {
	return func(m *Memstore) {
		m.comparer = comparer
	}
}

// WithMatcher sets the matcher filters are evaluated with.
func WithMatcher(matcher domain.Matcher) Option {
	return func(m *Memstore) {
		m.matcher = matcher
	}
}

// WithProjector sets the projector applied to query results.
func WithProjector(projector domain.Projector) Option {
	return func(m *Memstore) {
		m.projector = projector
	}
}

// WithFieldNavigator sets the navigator used for sort-field access.
func WithFieldNavigator(fieldNavigator domain.FieldNavigator) Option {
	return func(m *Memstore) {
		m.fieldNavigator = fieldNavigator
	}
}

// WithDocumentFactory sets the factory documents are built with.
func WithDocumentFactory(documentFactory domain.DocumentFactory) Option {
	return func(m *Memstore) {
		m.documentFactory = documentFactory
	}
}

// WithIDGenerator sets the generator for documents saved without an id.
func WithIDGenerator(idGenerator domain.IDGenerator) Option {
	return func(m *Memstore) {
		m.idGenerator = idGenerator
	}
}

// WithModifierFactory sets the factory building the modifier used by
// find-and-modify, keyed by the collection's id field.
func WithModifierFactory(factory func(idField string) domain.Modifier) Option {
	return func(m *Memstore) {
		m.modifierFactory = factory
	}
}
