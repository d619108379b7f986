// Package core provides the fundamental building blocks of querykit.
// This file defines Model[T], the typed entry point for a schema: it inserts
// structs, runs hand-built queries and decodes records back into T.
package core

import (
	"context"
	"reflect"
	"time"
)

// Model represents a repository-like abstraction for a schema T.
//
// It wraps a SchemaMeta[T] and a Driver. Models are generic and type-safe,
// ensuring that all operations are tied to a specific entity type.
type Model[T any] struct {
	schema      *SchemaMeta[T]
	driver      Driver
	middlewares []Middleware
}

// NewModel creates a new Model instance bound to a schema and driver.
//
// Example:
//
//	userModel := core.NewModel(userSchema, sqliteDriver)
func NewModel[T any](schema *SchemaMeta[T], driver Driver, middlewares ...Middleware) *Model[T] {
	return &Model[T]{schema: schema, driver: driver, middlewares: middlewares}
}

// Schema returns the model's schema.
func (m *Model[T]) Schema() *SchemaMeta[T] {
	return m.schema
}

// Driver returns the model's driver.
func (m *Model[T]) Driver() Driver {
	return m.driver
}

// WithTenant creates a new Model[T] instance bound to a different database.
//
// It clones the schema and replaces only the Database name in SchemaCore.
// This is useful for multi-tenant or sharded architectures.
func (m *Model[T]) WithTenant(database string) *Model[T] {
	cloneSchema := *m.schema
	cloneSchema.SchemaCore.Database = database
	return &Model[T]{schema: &cloneSchema, driver: m.driver, middlewares: m.middlewares}
}

// Create inserts entities into the database.
//
// It sets createdAt and updatedAt fields (if defined in the schema) on the
// given structs, performs the insert via the driver and emits an EventInsert.
func (m *Model[T]) Create(ctx context.Context, docs ...*T) error {
	now := time.Now().UTC()
	records := make([]Record, 0, len(docs))
	for _, doc := range docs {
		val := reflect.ValueOf(doc).Elem()
		if m.schema.createdAtField != nil {
			setTimeField(val.FieldByName(m.schema.createdAtField.StructFieldName), now)
		}
		if m.schema.updatedAtField != nil {
			setTimeField(val.FieldByName(m.schema.updatedAtField.StructFieldName), now)
		}
		record, err := structToRecord(&m.schema.SchemaCore, doc)
		if err != nil {
			return err
		}
		records = append(records, record)
	}

	return Dispatch(ctx, m.middlewares, OperationInsert, records, func(ctx context.Context) error {
		if err := m.driver.Insert(ctx, &m.schema.SchemaCore, records...); err != nil {
			return err
		}
		Emit(EventInsert, InsertPayload{Schema: &m.schema.SchemaCore, Records: records})
		return nil
	})
}

// Find runs a hand-built query and decodes the matching records into T.
// Soft-deleted rows are excluded unless the query asked for them.
func (m *Model[T]) Find(ctx context.Context, query *Query[T]) ([]T, error) {
	descriptor := WithSoftDelete(&m.schema.SchemaCore, query.Descriptor())

	var records []Record
	err := Dispatch(ctx, m.middlewares, OperationFind, descriptor, func(ctx context.Context) error {
		var err error
		records, err = m.driver.FindMany(ctx, &m.schema.SchemaCore, descriptor)
		return err
	})
	if err != nil {
		return nil, err
	}
	return m.Decode(records), nil
}

// Decode maps records onto new values of T. Columns without a matching
// field, and values that cannot be converted, are skipped.
func (m *Model[T]) Decode(records []Record) []T {
	results := make([]T, 0, len(records))
	for _, record := range records {
		var value T
		mapToStruct(&m.schema.SchemaCore, record, &value)
		results = append(results, value)
	}
	return results
}

// WithSoftDelete applies soft-delete filtering to a descriptor: when the
// schema has a deletedAt column, deleted rows are excluded unless
// WithDeleted is set. The descriptor is returned unchanged otherwise.
func WithSoftDelete(schema *SchemaCore, query *Descriptor) *Descriptor {
	column := schema.SoftDeleteColumn()
	if query == nil || column == "" || query.WithDeleted {
		return query
	}
	eff := *query // shallow copy
	eff.Where = AllOf(query.Where, Col(column).Nil())
	return &eff
}
