package modifier

import "github.com/docdao/docdao/domain"

// Option configures modifier behavior through the functional options pattern.
type Option func(*Modifier)

// WithDocumentFactory sets the factory used when copying documents.
func WithDocumentFactory(d domain.DocumentFactory) Option {
	return func(m *Modifier) {
		m.docFac = d
	}
}

// WithFieldNavigator sets the field navigator used to address update targets.
func WithFieldNavigator(f domain.FieldNavigator) Option {
	return func(m *Modifier) {
		m.fieldNavigator = f
	}
}
