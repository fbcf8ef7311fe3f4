package schema

// Option configures an [EntitySchema].
type Option func(*EntitySchema)

// WithCollection overrides the collection name derived from the struct name.
func WithCollection(collection string) Option {
	return func(s *EntitySchema) {
		s.collection = collection
	}
}

// WithIDField overrides the primary-key field name.
func WithIDField(idField string) Option {
	return func(s *EntitySchema) {
		s.idField = idField
	}
}
