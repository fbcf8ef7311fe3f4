// Package dao contains the entity-facing data access layer: it validates and
// translates logical queries, executes them, optimizes total counts and
// decodes the resulting documents into entity values.
package dao

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/docdao/docdao/adapter/data"
	"github.com/docdao/docdao/adapter/decoder"
	"github.com/docdao/docdao/adapter/query"
	"github.com/docdao/docdao/adapter/stats"
	"github.com/docdao/docdao/adapter/translator"
	"github.com/docdao/docdao/adapter/validator"
	"github.com/docdao/docdao/domain"
)

// DAO executes logical queries and mutations for one entity type T.
//
// A DAO is safe for concurrent use; each call issues one logical store query
// and holds no state across calls.
type DAO[T any] struct {
	schema          domain.EntitySchema
	executor        domain.Executor
	validator       *validator.Validator
	translator      *translator.Translator
	decoder         domain.Decoder
	documentFactory domain.DocumentFactory
	stats           domain.StatsReporter
	logger          *log.Logger
}

type settings struct {
	catalog         domain.IndexCatalog
	decoder         domain.Decoder
	documentFactory domain.DocumentFactory
	stats           domain.StatsReporter
	logger          *log.Logger
}

// Option configures a [DAO].
type Option func(*settings)

// WithCatalog sets the index catalog consulted by the safety validator. When
// absent, the executor is used if it implements [domain.IndexCatalog].
func WithCatalog(catalog domain.IndexCatalog) Option {
	return func(s *settings) {
		s.catalog = catalog
	}
}

// WithDecoder sets the decoder converting documents into entities.
func WithDecoder(dec domain.Decoder) Option {
	return func(s *settings) {
		s.decoder = dec
	}
}

// WithDocumentFactory sets the factory converting entities into documents.
func WithDocumentFactory(documentFactory domain.DocumentFactory) Option {
	return func(s *settings) {
		s.documentFactory = documentFactory
	}
}

// WithStatsReporter sets the reporter receiving per-shape query timings.
func WithStatsReporter(reporter domain.StatsReporter) Option {
	return func(s *settings) {
		s.stats = reporter
	}
}

// WithLogger sets the debug logger. Logging is off by default.
func WithLogger(logger *log.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// NewDAO returns a [DAO] for one entity type over schema and executor.
func NewDAO[T any](schema domain.EntitySchema, executor domain.Executor, options ...Option) *DAO[T] {
	s := settings{
		decoder:         decoder.NewDecoder(),
		documentFactory: data.NewDocument,
		stats:           stats.NewNopReporter(),
		logger:          log.New(io.Discard),
	}
	for _, option := range options {
		option(&s)
	}
	if s.catalog == nil {
		if catalog, ok := executor.(domain.IndexCatalog); ok {
			s.catalog = catalog
		} else {
			s.catalog = emptyCatalog{}
		}
	}
	return &DAO[T]{
		schema:          schema,
		executor:        executor,
		validator:       validator.NewValidator(s.catalog),
		translator:      translator.NewTranslator(schema),
		decoder:         s.decoder,
		documentFactory: s.documentFactory,
		stats:           s.stats,
		logger:          s.logger,
	}
}

type emptyCatalog struct{}

func (emptyCatalog) Indexes(string) []domain.IndexDescriptor { return nil }

// Validator returns the safety validator bound to this entity's catalog, for
// diagnostic endpoints that want [validator.Validator.IsSafe].
func (d *DAO[T]) Validator() *validator.Validator {
	return d.validator
}

// Get executes a query and returns either a flat page or, when the query
// groups, one page per candidate group value.
func (d *DAO[T]) Get(ctx context.Context, q *query.Query) (domain.Result[T], error) {
	if err := d.validator.Validate(q, d.schema.Collection()); err != nil {
		return domain.Result[T]{}, err
	}
	if q.GroupBy() != "" {
		return d.getGrouped(ctx, q)
	}
	items, total, err := d.fetch(ctx, q, true)
	if err != nil {
		return domain.Result[T]{}, err
	}
	return domain.Result[T]{Items: items, TotalItems: total}, nil
}

// GetOne executes a query and returns the first matching entity, or
// [domain.ErrNotFound] when nothing matches. Offset and ordering apply, the
// limit is forced to one.
func (d *DAO[T]) GetOne(ctx context.Context, q *query.Query) (T, error) {
	var zero T
	if err := d.validator.Validate(q, d.schema.Collection()); err != nil {
		return zero, err
	}
	nq, err := d.translator.Translate(q, true)
	if err != nil {
		return zero, err
	}
	nq.Limit = 1

	stop := stats.Measure(d.stats, d.shapeKey(q))
	docs, err := d.executor.Find(ctx, nq)
	stop()
	if err != nil {
		return zero, err
	}
	if len(docs) == 0 {
		return zero, domain.ErrNotFound
	}
	return d.decodeOne(docs[0])
}

// Count returns the number of documents matching a query's filter, ignoring
// offset and limit.
func (d *DAO[T]) Count(ctx context.Context, q *query.Query) (int64, error) {
	if err := d.validator.Validate(q, d.schema.Collection()); err != nil {
		return 0, err
	}
	nq, err := d.translator.Translate(q, false)
	if err != nil {
		return 0, err
	}
	return d.count(ctx, nq, q)
}

// Delete removes every document matching a query and returns the count
// removed. A query with neither ids nor criteria is rejected, so a full
// collection can never be dropped by accident.
func (d *DAO[T]) Delete(ctx context.Context, q *query.Query) (int64, error) {
	if !q.HasIDs() && !q.HasCriteria() {
		return 0, domain.QueryErrorf("delete requires an id filter or criteria")
	}
	if err := d.validator.Validate(q, d.schema.Collection()); err != nil {
		return 0, err
	}
	nq, err := d.translator.Translate(q, false)
	if err != nil {
		return 0, err
	}

	d.logger.Debug("delete", "collection", nq.Collection, "shape", q.Shape())
	stop := stats.Measure(d.stats, d.shapeKey(q))
	removed, err := d.executor.DeleteByQuery(ctx, nq)
	stop()
	return removed, err
}

// Save upserts one entity by its primary key. A uniqueness violation from the
// store surfaces as [domain.ErrDuplicateKey].
func (d *DAO[T]) Save(ctx context.Context, entity T) (T, error) {
	var zero T
	doc, err := d.documentFactory(entity)
	if err != nil {
		return zero, err
	}
	d.logger.Debug("save", "collection", d.schema.Collection())
	saved, err := d.executor.Save(ctx, d.schema.Collection(), d.schema.IDField(), doc)
	if err != nil {
		return zero, wrapDuplicateKey(err)
	}
	return d.decodeOne(saved)
}

// Patch atomically applies a set of field changes to the first document
// matching a query. A nil value unsets the field, anything else sets it. The
// second return is false when nothing matched.
func (d *DAO[T]) Patch(ctx context.Context, q *query.Query, fieldValues map[string]any) (T, bool, error) {
	var zero T
	if err := d.validator.Validate(q, d.schema.Collection()); err != nil {
		return zero, false, err
	}
	nq, err := d.translator.Translate(q, false)
	if err != nil {
		return zero, false, err
	}

	set := map[string]any{}
	unset := map[string]any{}
	for field, value := range fieldValues {
		if value == nil {
			unset[field] = true
			continue
		}
		set[field] = value
	}
	update := map[string]any{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	d.logger.Debug("patch", "collection", nq.Collection, "shape", q.Shape())
	stop := stats.Measure(d.stats, d.shapeKey(q))
	doc, found, err := d.executor.FindOneAndModify(ctx, nq, update)
	stop()
	if err != nil {
		return zero, false, wrapDuplicateKey(err)
	}
	if !found {
		return zero, false, nil
	}
	entity, err := d.decodeOne(doc)
	return entity, err == nil, err
}

// fetch runs the single-query path: translate, find, check the page
// invariant, optimize the count and decode.
func (d *DAO[T]) fetch(ctx context.Context, q *query.Query, withCount bool) ([]T, *int64, error) {
	nq, err := d.translator.Translate(q, true)
	if err != nil {
		return nil, nil, err
	}

	var docs []domain.Document
	if !q.CountOnly() {
		d.logger.Debug("find", "collection", nq.Collection, "shape", q.Shape(),
			"offset", nq.Offset, "limit", nq.Limit)
		stop := stats.Measure(d.stats, d.shapeKey(q))
		docs, err = d.executor.Find(ctx, nq)
		stop()
		if err != nil {
			return nil, nil, err
		}
	}
	if int64(len(docs)) > q.Limit() {
		return nil, nil, domain.ErrGeneral{Reason: fmt.Sprintf(
			"store returned %d documents for a limit of %d", len(docs), q.Limit(),
		)}
	}

	var total *int64
	if withCount {
		if total, err = d.countFor(ctx, nq, q, int64(len(docs))); err != nil {
			return nil, nil, err
		}
	}
	items, err := d.decode(docs)
	if err != nil {
		return nil, nil, err
	}
	return items, total, nil
}

// countFor decides how the total match count is produced. A short or empty
// page already proves the exact total, so a count query only runs when the
// page is exactly full or nothing was fetched at all.
func (d *DAO[T]) countFor(ctx context.Context, nq domain.NativeQuery, q *query.Query, n int64) (*int64, error) {
	if !q.CountTotal() {
		return nil, nil
	}
	offset, limit := q.Offset(), q.Limit()
	switch {
	case q.CountOnly():
		// no page to infer from
	case n == 0 && offset == 0 && limit > 0:
		return ref(int64(0)), nil
	case n != 0 && n < limit:
		return ref(offset + n), nil
	}
	total, err := d.count(ctx, nq, q)
	if err != nil {
		return nil, err
	}
	return &total, nil
}

func (d *DAO[T]) count(ctx context.Context, nq domain.NativeQuery, q *query.Query) (int64, error) {
	d.logger.Debug("count", "collection", nq.Collection, "shape", q.Shape())
	stop := stats.Measure(d.stats, d.shapeKey(q))
	total, err := d.executor.Count(ctx, nq)
	stop()
	return total, err
}

// getGrouped runs one sub-query per distinct candidate value of the grouping
// field. When a total is requested every group page carries its own count,
// and the global total comes from one count against the ungrouped query
// rather than a sum of per-group counts.
func (d *DAO[T]) getGrouped(ctx context.Context, q *query.Query) (domain.Result[T], error) {
	res := domain.Result[T]{Groups: map[any]domain.Page[T]{}}
	for _, value := range distinct(q.Values(q.GroupBy())) {
		items, total, err := d.fetch(ctx, q.WithGroupValue(value), q.CountTotal())
		if err != nil {
			return domain.Result[T]{}, err
		}
		res.Groups[value] = domain.Page[T]{Items: items, TotalItems: total}
	}
	if !q.CountTotal() {
		return res, nil
	}
	nq, err := d.translator.Translate(q.Ungrouped(), false)
	if err != nil {
		return domain.Result[T]{}, err
	}
	total, err := d.count(ctx, nq, q)
	if err != nil {
		return domain.Result[T]{}, err
	}
	res.TotalItems = &total
	return res, nil
}

func (d *DAO[T]) decode(docs []domain.Document) ([]T, error) {
	items := make([]T, len(docs))
	for n, doc := range docs {
		var err error
		if items[n], err = d.decodeOne(doc); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (d *DAO[T]) decodeOne(doc domain.Document) (T, error) {
	var item T
	err := d.decoder.Decode(doc, &item)
	return item, err
}

func (d *DAO[T]) shapeKey(q *query.Query) string {
	return stats.ShapeKey(d.schema.Collection(), q.Shape())
}

func wrapDuplicateKey(err error) error {
	if errors.Is(err, domain.ErrConstraintViolated) {
		return domain.ErrDuplicateKey{Message: err.Error()}
	}
	return err
}

func distinct(values []any) []any {
	res := make([]any, 0, len(values))
	for _, v := range values {
		found := false
		for _, existing := range res {
			if existing == v {
				found = true
				break
			}
		}
		if !found {
			res = append(res, v)
		}
	}
	return res
}

func ref[T any](v T) *T {
	return &v
}
