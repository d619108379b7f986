// Package core provides the fundamental building blocks of querykit.
// This file defines the query descriptor handed to drivers and the driver
// contracts themselves.
package core

import (
	"context"
	"fmt"
	"strings"
)

// Direction is a sort direction as supplied by the client. Drivers treat
// "ASC" (case-insensitive) as ascending and anything else as descending.
type Direction string

const (
	Ascending  Direction = "ASC"
	Descending Direction = "DESC"
)

// Sort represents an ordering rule used in queries.
type Sort struct {
	FieldName string
	Direction Direction
}

// IsAscending reports whether the rule sorts in ascending order.
func (s Sort) IsAscending() bool {
	return strings.EqualFold(strings.TrimSpace(string(s.Direction)), string(Ascending))
}

// Record is a single row or document returned by a driver, keyed by column.
type Record map[string]any

// Descriptor is the structured query handed to a driver.
//
// It contains:
//   - Where: the root filter condition (nil matches everything).
//   - Order: sort rules, applied in sequence.
//   - Attributes: projected columns; nil selects every column.
//   - Include: relations to resolve and nest into each record; nil when none
//     were requested.
//   - Offset, Limit: result window; a zero Limit means unbounded.
//   - WithDeleted: whether soft-deleted rows are returned.
type Descriptor struct {
	Where       *Condition
	Order       []Sort
	Attributes  []string
	Include     []*Relation
	Offset      int
	Limit       int
	WithDeleted bool
}

// Clone returns a copy of the descriptor whose slices and condition tree can
// be modified without affecting the original.
func (d *Descriptor) Clone() *Descriptor {
	if d == nil {
		return &Descriptor{}
	}
	clone := *d
	clone.Where = d.Where.Clone()
	if d.Order != nil {
		clone.Order = append([]Sort(nil), d.Order...)
	}
	if d.Attributes != nil {
		clone.Attributes = append(make([]string, 0, len(d.Attributes)), d.Attributes...)
	}
	if d.Include != nil {
		clone.Include = append(make([]*Relation, 0, len(d.Include)), d.Include...)
	}
	return &clone
}

// Transaction defines the contract for database transaction management.
//
// Implementations must provide atomic commit and rollback semantics.
type Transaction interface {
	// Commit finalizes the transaction and makes all changes permanent.
	Commit(ctx context.Context) error
	// Rollback reverts the transaction, discarding all changes.
	Rollback(ctx context.Context) error
}

// Finder is the read side of a driver: it executes a descriptor against a
// collection and returns the matching records in order.
type Finder interface {
	FindMany(ctx context.Context, schema *SchemaCore, query *Descriptor) ([]Record, error)
}

// Driver defines the contract for database backends.
//
// Each driver (postgres, sqlite, mongo) implements this interface to run
// descriptors, insert records and manage connectivity and transactions.
type Driver interface {
	Finder

	// Connect establishes a new connection or validates connectivity.
	Connect(ctx context.Context) error
	// Ping checks if the underlying database is reachable.
	Ping(ctx context.Context) error
	// Close terminates the connection and releases resources.
	Close(ctx context.Context) error

	// Transaction starts a new database transaction.
	Transaction(ctx context.Context) (Transaction, error)

	// Insert persists one or more records in the collection.
	Insert(ctx context.Context, schema *SchemaCore, records ...Record) error
}

// DriverError wraps a failure reported by a database backend.
type DriverError struct {
	Driver    string // Backend name ("postgres", "sqlite", "mongo")
	Operation string // Operation that failed ("find", "insert", ...)
	Cause     error
}

// Error implements the error interface.
func (e *DriverError) Error() string {
	return fmt.Sprintf("%s driver: %s: %v", e.Driver, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *DriverError) Unwrap() error {
	return e.Cause
}

// NewDriverError creates a new DriverError, or returns nil when cause is nil.
func NewDriverError(driver, operation string, cause error) error {
	if cause == nil {
		return nil
	}
	return &DriverError{Driver: driver, Operation: operation, Cause: cause}
}
