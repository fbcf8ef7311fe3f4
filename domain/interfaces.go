// Package domain contains the interfaces and shared value types of docdao.
//
// This package defines the capabilities consumed by the query-translation
// layer: entity schemas, index catalogs, native query executors, stats
// reporters, plus the document primitives (documents, matchers, comparers,
// field navigators) implemented by the adapter packages.
package domain

import (
	"context"
	"io"
	"iter"
	"reflect"
	"time"
)

// Document represents a record handled by an [Executor]. It carries raw data
// between the store and a user-defined type. Document is read by one goroutine
// at a time and doesn't need to be concurrency safe.
type Document interface {
	// Get returns the value under the given key, or nil if unset.
	Get(string) any
	// Set sets the value under the given key.
	Set(string, any)
	// Unset unsets the value under the given key.
	Unset(string)
	// Has reports whether a value is set under the given key.
	Has(string) bool
	// Iter returns an unordered sequence of key-value pairs in the
	// document.
	Iter() iter.Seq2[string, any]
	// Keys returns an unordered sequence of keys in the document.
	Keys() iter.Seq[string]
	// Len returns the number of set fields in the document.
	Len() int
}

// EntitySchema resolves the structure of one entity type: its collection, its
// primary-key field and the declared types behind dotted field paths. Schemas
// are built once at registration time; no reflection happens per query.
type EntitySchema interface {
	// Collection returns the collection name the entity maps to.
	Collection() string
	// IDField returns the primary-key field name.
	IDField() string
	// FieldType returns the declared type of a dotted field path. The
	// second return is false when the path is not declared.
	FieldType(path string) (reflect.Type, bool)
	// Elem returns the schema of the element type behind a nested
	// array-of-document path, used to build synchronized-match
	// sub-queries. Fails when the path does not resolve to such an
	// array.
	Elem(path string) (EntitySchema, error)
}

// IndexDescriptor is one declared index as its ordered field-name sequence.
type IndexDescriptor []string

// IndexCatalog exposes the indexes declared for a collection. The first field
// of each descriptor forms the index prefix set used by the safety validator.
type IndexCatalog interface {
	// Indexes returns the declared index descriptors for a collection.
	Indexes(collection string) []IndexDescriptor
}

// Executor runs native queries against the underlying store. Implementations
// own the connection/session; this layer issues one logical query per call
// and never holds cursors across calls.
type Executor interface {
	// Find returns the page of documents selected by the native query.
	Find(ctx context.Context, nq NativeQuery) ([]Document, error)
	// Count returns the number of documents matching the native query's
	// filter, ignoring offset and limit.
	Count(ctx context.Context, nq NativeQuery) (int64, error)
	// FindOneAndModify atomically applies an update document (operator
	// form, $set/$unset) to the first match and returns the updated
	// document. The second return is false when nothing matched.
	FindOneAndModify(ctx context.Context, nq NativeQuery, update map[string]any) (Document, bool, error)
	// DeleteByQuery removes all matching documents and returns the count
	// removed.
	DeleteByQuery(ctx context.Context, nq NativeQuery) (int64, error)
	// Save upserts a document by its primary-key field. A uniqueness
	// violation is reported as [ErrConstraintViolated].
	Save(ctx context.Context, collection, idField string, doc Document) (Document, error)
}

// StatsReporter accepts one timing measurement per executed query shape. A
// no-op implementation is an acceptable default.
type StatsReporter interface {
	// ReportTiming records the duration of one query under a stable key.
	ReportTiming(key string, elapsed time.Duration)
}

// Decoder converts documents into user-defined types.
type Decoder interface {
	// Decode converts a document (or document-shaped value) into target,
	// which must be a non-nil pointer.
	Decode(source any, target any) error
}

// Comparer provides ordering and comparison operations for document values.
type Comparer interface {
	// Compare returns -1, 0, or 1 based on the comparison of two values.
	Compare(any, any) (int, error)
	// Comparable returns true if two values can be ordered against each
	// other.
	Comparable(any, any) bool
}

// Getter represents a value that can be treated as undefined. If an address
// points to an unset key or an out-of-bounds index, it counts as undefined.
// An explicit nil value does not count as undefined.
type Getter interface {
	Get() (value any, defined bool)
}

// GetSetter represents an addressable value in a [Document]. Undefined values
// can neither be set nor unset.
type GetSetter interface {
	Getter
	// Set will set a new value for the address.
	Set(any)
	// Unset removes the value from the parent item (object or array).
	Unset()
}

// FieldNavigator provides field access operations with dot notation support.
type FieldNavigator interface {
	// GetField extracts values from nested documents, following path
	// parts. The bool return reports whether array expansion happened.
	GetField(any, ...string) ([]GetSetter, bool, error)
	// EnsureField creates missing intermediate documents along the path
	// so the terminal value can be set.
	EnsureField(any, ...string) ([]GetSetter, error)
	// GetAddress splits a dotted field path into its parts.
	GetAddress(field string) ([]string, error)
}

// Matcher evaluates whether a document matches a native filter.
type Matcher interface {
	// Match returns true if the document matches the operator-document
	// filter.
	Match(doc any, filter map[string]any) (bool, error)
}

// Modifier applies update operator documents to documents.
type Modifier interface {
	// Modify applies an update ($set/$unset) to a copy of the document
	// and returns the result.
	Modify(doc Document, update map[string]any) (Document, error)
}

// Projector restricts documents to a set of projected fields.
type Projector interface {
	// Project returns copies of the documents keeping only the given
	// dotted field paths plus the id field.
	Project(docs []Document, fields []string, idField string) ([]Document, error)
}

// Index provides value-based lookups and uniqueness enforcement for one field
// of a collection.
type Index interface {
	// FieldName returns the field this index covers.
	FieldName() string
	// Unique returns true if this index rejects duplicate keys.
	Unique() bool
	// Insert adds a document to the index, failing with
	// [ErrConstraintViolated] on a unique-key collision.
	Insert(doc Document) error
	// Remove removes a document from the index.
	Remove(doc Document) error
	// Update replaces a document's entry, reverting on failure.
	Update(oldDoc, newDoc Document) error
	// GetMatching returns the documents stored under the given key.
	GetMatching(key any) ([]Document, error)
}

// IDGenerator creates identifiers for documents saved without one.
type IDGenerator interface {
	GenerateID() (string, error)
}

// Snapshotter is implemented by executors that can dump and restore their
// whole state, for tests and tooling.
type Snapshotter interface {
	// Dump writes a snapshot of all collections to w.
	Dump(ctx context.Context, w io.Writer) error
	// Load replaces all collections with the snapshot read from r.
	Load(ctx context.Context, r io.Reader) error
}

// DocumentFactory constructs [Document] instances from structured data. A nil
// input returns an empty document.
type DocumentFactory = func(any) (Document, error)
