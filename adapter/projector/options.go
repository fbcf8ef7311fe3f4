package projector

import "github.com/docdao/docdao/domain"

// Option configures projector behavior through the functional options pattern.
type Option func(*Projector)

// WithDocumentFactory sets the factory used when building projected documents.
func WithDocumentFactory(d domain.DocumentFactory) Option {
	return func(p *Projector) {
		p.docFac = d
	}
}

// WithFieldNavigator sets the field navigator used to resolve projected
// paths.
func WithFieldNavigator(f domain.FieldNavigator) Option {
	return func(p *Projector) {
		p.fn = f
	}
}
