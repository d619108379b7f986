// Package core provides the fundamental building blocks of querykit.
// This file defines the middleware system, which allows cross-cutting concerns
// (logging, metrics, auditing, etc.) to be applied to driver operations.
package core

import (
	"context"
	"log/slog"
	"time"
)

// Operation represents the type of operation being executed.
//
// It is used within middlewares to distinguish between inserts and queries.
type Operation string

const (
	// OperationInsert corresponds to an insert (create) operation.
	OperationInsert Operation = "insert"
	// OperationFind corresponds to a query (find) operation.
	OperationFind Operation = "find"
)

// Handler is the function signature executed by the operation pipeline.
//
// It receives a context, the operation type, and an arbitrary payload
// (a *Descriptor for finds, the records for inserts).
type Handler func(ctx context.Context, op Operation, payload any) error

// Middleware is a function that wraps a Handler with additional logic.
// They follow the decorator pattern.
type Middleware func(next Handler) Handler

// Chain composes middlewares around final. The first middleware is the
// outermost one.
func Chain(final Handler, middlewares ...Middleware) Handler {
	h := final
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// Dispatch executes an operation through the given middleware chain.
//
// The exec function contains the core logic of the operation and is wrapped
// by the middlewares.
func Dispatch(ctx context.Context, middlewares []Middleware, op Operation, payload any, exec func(ctx context.Context) error) error {
	handler := Chain(func(ctx context.Context, op Operation, payload any) error {
		return exec(ctx)
	}, middlewares...)
	return handler(ctx, op, payload)
}

// LoggingMiddleware logs every operation with its duration at debug level,
// and failures at error level.
//
// Example:
//
//	searcher := composer.NewSearcher(driver, schema,
//		composer.WithMiddleware(core.LoggingMiddleware(slog.Default())))
func LoggingMiddleware(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Handler) Handler {
		return func(ctx context.Context, op Operation, payload any) error {
			start := time.Now()
			err := next(ctx, op, payload)
			elapsed := time.Since(start)
			if err != nil {
				logger.ErrorContext(ctx, "operation failed",
					"op", op,
					"error", err,
					"took", elapsed,
				)
				return err
			}
			attrs := []any{"op", op, "took", elapsed}
			if descriptor, ok := payload.(*Descriptor); ok {
				attrs = append(attrs, "limit", descriptor.Limit, "offset", descriptor.Offset)
			}
			logger.DebugContext(ctx, "operation completed", attrs...)
			return nil
		}
	}
}
