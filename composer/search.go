package composer

import (
	"context"
	"log/slog"

	"github.com/leandroluk/querykit/core"
)

// Result is the paginated response envelope.
type Result struct {
	Data       []core.Record `json:"data"`
	Pagination PageInfo      `json:"pagination"`
}

// Searcher compiles raw queries for one collection, runs them against a
// finder and shapes the page. It keeps no per-call state and is safe for
// concurrent use.
type Searcher struct {
	finder      core.Finder
	schema      *core.SchemaCore
	compiler    *Compiler
	middlewares []core.Middleware
	events      *core.EventDispatcher
	logger      *slog.Logger
}

// SearcherOption customizes a Searcher.
type SearcherOption func(*Searcher)

// WithFieldNames sets the parameter names the compiler recognizes.
func WithFieldNames(names FieldNames) SearcherOption {
	return func(s *Searcher) { s.compiler = NewCompiler(names) }
}

// WithMiddleware wraps the finder call with the given middlewares.
func WithMiddleware(middlewares ...core.Middleware) SearcherOption {
	return func(s *Searcher) { s.middlewares = append(s.middlewares, middlewares...) }
}

// WithEvents emits find events on dispatcher instead of the shared one.
func WithEvents(dispatcher *core.EventDispatcher) SearcherOption {
	return func(s *Searcher) { s.events = dispatcher }
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) SearcherOption {
	return func(s *Searcher) { s.logger = logger }
}

// NewSearcher creates a Searcher for schema backed by finder.
func NewSearcher(finder core.Finder, schema *core.SchemaCore, opts ...SearcherOption) *Searcher {
	s := &Searcher{
		finder:   finder,
		schema:   schema,
		compiler: NewCompiler(DefaultFieldNames()),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default().With("component", "composer.searcher", "collection", schema.Collection)
	}
	return s
}

// Schema returns the collection the searcher queries.
func (s *Searcher) Schema() *core.SchemaCore {
	return s.schema
}

// Compiler returns the searcher's compiler.
func (s *Searcher) Compiler() *Compiler {
	return s.compiler
}

// Search compiles raw and returns one page of matching records. Errors from
// the finder are returned unchanged.
func (s *Searcher) Search(ctx context.Context, raw RawQuery) (*Result, error) {
	descriptor, pagination := s.compiler.Compile(raw, s.schema)
	return s.run(ctx, descriptor, pagination)
}

// SearchDescriptor pages a prebuilt descriptor, taking the page size from
// its Limit and the page index from its Offset.
func (s *Searcher) SearchDescriptor(ctx context.Context, descriptor *core.Descriptor) (*Result, error) {
	return s.run(ctx, descriptor, s.compiler.paginationOf(descriptor))
}

func (s *Searcher) run(ctx context.Context, descriptor *core.Descriptor, pagination Pagination) (*Result, error) {
	lookAhead := core.WithSoftDelete(s.schema, descriptor.Clone())
	lookAhead.Offset = pagination.Offset
	lookAhead.Limit = pagination.PageSize + 1

	var rows []core.Record
	err := core.Dispatch(ctx, s.middlewares, core.OperationFind, lookAhead, func(ctx context.Context) error {
		var err error
		rows, err = s.finder.FindMany(ctx, s.schema, lookAhead)
		return err
	})
	if err != nil {
		return nil, err
	}

	data := rows
	if len(data) > pagination.PageSize {
		data = data[:pagination.PageSize]
	}
	if data == nil {
		data = []core.Record{}
	}

	s.logger.DebugContext(ctx, "search served",
		"page_from", pagination.PageFrom,
		"page_size", pagination.PageSize,
		"fetched", len(rows),
	)
	s.emit(core.FindManyPayload{Schema: s.schema, Descriptor: lookAhead, Records: data})

	return &Result{Data: data, Pagination: pagination.Page(len(rows))}, nil
}

func (s *Searcher) emit(payload core.FindManyPayload) {
	if s.events != nil {
		s.events.Emit(core.EventFind, payload)
		return
	}
	core.Emit(core.EventFind, payload)
}

// TypedResult is a Result whose records were decoded into T.
type TypedResult[T any] struct {
	Data       []T      `json:"data"`
	Pagination PageInfo `json:"pagination"`
}

// SearchModel runs a search for model and decodes the page into T.
func SearchModel[T any](ctx context.Context, model *core.Model[T], raw RawQuery, opts ...SearcherOption) (*TypedResult[T], error) {
	searcher := NewSearcher(model.Driver(), &model.Schema().SchemaCore, opts...)
	result, err := searcher.Search(ctx, raw)
	if err != nil {
		return nil, err
	}
	return &TypedResult[T]{Data: model.Decode(result.Data), Pagination: result.Pagination}, nil
}
