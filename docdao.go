// Package docdao provides a generic query-translation layer for
// document-oriented stores.
//
// A [DAO] converts a logical [Query] (field criteria, pagination, ordering,
// grouping, nested-array matching, reserved sentinel values) into a native
// operator-document query, validates it against the declared indexes of a
// collection, executes it and assembles flat or grouped results with
// optimized total counts.
//
// The basic usage starts with a schema built by [NewEntitySchema] and an
// executor such as the in-memory store returned by [NewMemstore], combined
// into a typed DAO by [NewDAO].
package docdao

import (
	"github.com/docdao/docdao/adapter/dao"
	"github.com/docdao/docdao/adapter/memstore"
	"github.com/docdao/docdao/adapter/query"
	"github.com/docdao/docdao/adapter/schema"
	"github.com/docdao/docdao/domain"
)

var (
	// ErrConstraintViolated is returned by stores when a write is blocked
	// by a uniqueness constraint.
	ErrConstraintViolated = domain.ErrConstraintViolated
	// ErrNotFound is returned by [DAO.GetOne] when nothing matches.
	ErrNotFound = domain.ErrNotFound
	// ErrTargetNil is returned when a nil value is passed as a decode
	// target.
	ErrTargetNil = domain.ErrTargetNil
)

// ErrQuery represents a malformed or unsafe query.
type ErrQuery = domain.ErrQuery

// ErrDuplicateKey is the typed form of a store uniqueness violation raised
// during [DAO.Save] or [DAO.Patch].
type ErrDuplicateKey = domain.ErrDuplicateKey

// ErrGeneral represents a broken internal invariant, such as a result page
// exceeding its limit.
type ErrGeneral = domain.ErrGeneral

// ErrUnsafeQuery is returned when index validation rejects a query touching
// no indexed field.
type ErrUnsafeQuery = domain.ErrUnsafeQuery

// Query describes one logical query. Build it with [NewQuery].
type Query = query.Query

// ReservedValue is a sentinel criterion value expressing a structural
// predicate instead of literal equality.
type ReservedValue = query.ReservedValue

const (
	// Exists matches documents where the field is present.
	Exists = query.Exists
	// Null matches documents where the field is an explicit null.
	Null = query.Null
	// Any emits no predicate, forcing a field into the criteria set
	// without constraining it.
	Any = query.Any
)

// Sort is an ordered list of sort fields.
type Sort = domain.Sort

// SortName is one sort field and direction.
type SortName = domain.SortName

// NativeQuery is the executable form of a query, as passed to executors.
type NativeQuery = domain.NativeQuery

// Page is one page of decoded entities.
type Page[T any] = domain.Page[T]

// Result is the outcome of a query execution, flat or grouped.
type Result[T any] = domain.Result[T]

// IndexDescriptor is one declared index as its ordered field-name sequence.
type IndexDescriptor = domain.IndexDescriptor

// DAO executes logical queries and mutations for one entity type.
type DAO[T any] = dao.DAO[T]

// Memstore is an in-process [domain.Executor] with declared indexes.
type Memstore = memstore.Memstore

// NewQuery builds a [Query] with the provided configuration options:
//
// - [query.WithIDs]: filters by primary-key values.
//
// - [query.WithCriterion]: adds values to one criteria field.
//
// - [query.WithOffset], [query.WithLimit]: control the page.
//
// - [query.WithOrder]: sets the sort specification.
//
// - [query.WithFields]: restricts the returned fields.
//
// - [query.WithGroupBy]: groups the result by one criteria field.
//
// - [query.WithSyncMatch]: declares nested-array prefixes matched jointly.
//
// - [query.WithCountTotal], [query.WithCountOnly]: control counting.
//
// - [query.WithoutIndexValidation]: disables the index safety check.
func NewQuery(options ...query.Option) *Query {
	return query.New(options...)
}

// NewEntitySchema builds a [domain.EntitySchema] from a sample entity struct.
// Field names follow the "docdao" struct tag. Options [schema.WithCollection]
// and [schema.WithIDField] override the derived defaults.
func NewEntitySchema(sample any, options ...schema.Option) (domain.EntitySchema, error) {
	return schema.NewEntitySchema(sample, options...)
}

// NewDAO builds a typed [DAO] over a schema and an executor. Options:
//
// - [dao.WithCatalog]: sets the index catalog for the safety validator.
//
// - [dao.WithDecoder]: sets the document-to-entity decoder.
//
// - [dao.WithDocumentFactory]: sets the entity-to-document conversion.
//
// - [dao.WithStatsReporter]: sets the per-shape timing reporter.
//
// - [dao.WithLogger]: enables debug logging.
func NewDAO[T any](entitySchema domain.EntitySchema, executor domain.Executor, options ...dao.Option) *DAO[T] {
	return dao.NewDAO[T](entitySchema, executor, options...)
}

// NewMemstore returns an empty in-memory executor, useful for tests and
// embedded setups.
func NewMemstore(options ...memstore.Option) *Memstore {
	return memstore.NewMemstore(options...)
}
