// Package core provides the fundamental building blocks of querykit.
// This file defines transaction helpers: drivers pick up a transaction
// carried in the context, so searches and inserts issued with that context
// share it.
package core

import "context"

// transactionKey is the context key under which a Transaction is stored.
type transactionKey struct{}

// WithTransaction injects a Transaction into the given context.
//
// Example:
//
//	tx, _ := driver.Transaction(ctx)
//	txCtx := core.WithTransaction(ctx, tx)
//	result, err := searcher.Search(txCtx, raw)
func WithTransaction(ctx context.Context, tx Transaction) context.Context {
	return context.WithValue(ctx, transactionKey{}, tx)
}

// TransactionFrom extracts a Transaction from the given context, if any.
//
// Returns nil if the context does not contain a transaction.
func TransactionFrom(ctx context.Context) Transaction {
	if v, ok := ctx.Value(transactionKey{}).(Transaction); ok {
		return v
	}
	return nil
}

// Transactor starts transactions. Every Driver is a Transactor.
type Transactor interface {
	Transaction(ctx context.Context) (Transaction, error)
}

// TransactionFunc is the callback signature used by RunTransaction.
//
// If the function returns an error, the transaction is rolled back.
// If it returns nil, the transaction is committed.
type TransactionFunc func(txCtx context.Context) error

// RunTransaction executes fn inside a transaction, committing on success
// and rolling back when fn fails. An already open transaction in ctx is
// reused and left for its owner to finish.
func RunTransaction(ctx context.Context, transactor Transactor, fn TransactionFunc) error {
	if TransactionFrom(ctx) != nil {
		return fn(ctx)
	}
	tx, err := transactor.Transaction(ctx)
	if err != nil {
		return err
	}
	txCtx := WithTransaction(ctx, tx)

	if err := fn(txCtx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}
