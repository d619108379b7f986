// Package core provides the fundamental building blocks of querykit.
// This file defines the fluent query builder, which hand-constructs
// descriptors in a type-safe way instead of compiling them from a query
// string.
package core

// Query represents a fluent descriptor builder for an entity of type T.
//
// Example:
//
//	descriptor := core.NewQuery(userSchema).
//		Filter(func(q core.Filter[User]) []*core.Condition {
//			return []*core.Condition{
//				q.Where(func(u *User) any { return &u.Email }).Like("%gmail.com"),
//				q.Where("active").Eq(true),
//			}
//		}).
//		OrderBy("created_at", core.Descending).
//		Limit(10).
//		Descriptor()
type Query[T any] struct {
	schema     *SchemaMeta[T]
	descriptor *Descriptor
}

// NewQuery creates a new Query instance for the given schema.
func NewQuery[T any](schema *SchemaMeta[T]) *Query[T] {
	return &Query[T]{
		schema:     schema,
		descriptor: &Descriptor{},
	}
}

// WithDeleted includes soft-deleted rows in the query results.
func (q *Query[T]) WithDeleted() *Query[T] {
	q.descriptor.WithDeleted = true
	return q
}

// Where starts a condition on a field of T.
//
// It supports both:
//   - Selector functions (e.g., func(u *User) any { return &u.Name })
//   - Go field or column names (e.g., "Name" or "name")
//
// The condition is returned so that an operator can be applied immediately.
func (q *Query[T]) Where(field any) *Condition {
	var name string
	switch f := field.(type) {
	case func(*T) any:
		name = fieldNameFromSelectorFor[T](f)
	case string:
		name = f
	default:
		panic("Where: argument must be a selector func(*T) any or a field name")
	}

	for _, f := range q.schema.Fields {
		if f.StructFieldName == name {
			return Col(f.DatabaseColumnName)
		}
	}
	return Col(name)
}

// Filter builds the where clause using a functional style.
//
// The returned conditions are combined with AND. A nil builder clears the
// clause.
func (q *Query[T]) Filter(build func(Filter[T]) []*Condition) *Query[T] {
	if build == nil {
		q.descriptor.Where = nil
		return q
	}
	q.descriptor.Where = AllOf(build(Filter[T]{queryBuilder: q})...)
	return q
}

// Filter provides the scope passed to the Filter function.
// It exposes a type-safe Where method bound to the parent query.
type Filter[T any] struct{ queryBuilder *Query[T] }

// Where delegates to the parent query's Where method.
func (f Filter[T]) Where(field any) *Condition {
	return f.queryBuilder.Where(field)
}

// OrderBy adds an ordering rule to the query.
func (q *Query[T]) OrderBy(field string, direction Direction) *Query[T] {
	q.descriptor.Order = append(q.descriptor.Order, Sort{FieldName: field, Direction: direction})
	return q
}

// Select restricts the returned columns. Unknown columns are ignored.
func (q *Query[T]) Select(columns ...string) *Query[T] {
	selected := make([]string, 0, len(columns))
	for _, column := range columns {
		if q.schema.HasColumn(column) {
			selected = append(selected, column)
		}
	}
	q.descriptor.Attributes = selected
	return q
}

// Include requests the named relations. Unknown names are ignored.
func (q *Query[T]) Include(names ...string) *Query[T] {
	relations := q.schema.Relations()
	for _, name := range names {
		if relation, ok := relations[name]; ok {
			q.descriptor.Include = append(q.descriptor.Include, relation)
		}
	}
	return q
}

// Limit sets the maximum number of results to return.
func (q *Query[T]) Limit(limit int) *Query[T] {
	q.descriptor.Limit = limit
	return q
}

// Offset sets the number of rows to skip before starting to return results.
func (q *Query[T]) Offset(offset int) *Query[T] {
	q.descriptor.Offset = offset
	return q
}

// Descriptor returns a copy of the built descriptor.
func (q *Query[T]) Descriptor() *Descriptor {
	return q.descriptor.Clone()
}
