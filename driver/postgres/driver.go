// Package postgres implements core.Driver on top of a pgx connection pool.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leandroluk/querykit/core"
	"github.com/leandroluk/querykit/driver/sqlbuild"
)

const driverName = "postgres"

// Dialect renders $n placeholders and case-insensitive ILIKE matches over
// the text form of the column.
var Dialect = sqlbuild.Dialect{
	Placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	Quote:       func(identifier string) string { return pgx.Identifier{identifier}.Sanitize() },
	Like: func(column, placeholder string) string {
		return fmt.Sprintf("CAST(%s AS TEXT) ILIKE %s", column, placeholder)
	},
}

type postgresTransaction struct {
	transaction pgx.Tx
}

func (t *postgresTransaction) Commit(ctx context.Context) error {
	return core.NewDriverError(driverName, "commit", t.transaction.Commit(ctx))
}

func (t *postgresTransaction) Rollback(ctx context.Context) error {
	return core.NewDriverError(driverName, "rollback", t.transaction.Rollback(ctx))
}

//region PostgresDriver

type PostgresDriver struct {
	pool *pgxpool.Pool
}

var _ core.Driver = (*PostgresDriver)(nil)

func NewPostgresDriver(ctx context.Context, connString string) (*PostgresDriver, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, core.NewDriverError(driverName, "connect", err)
	}
	return &PostgresDriver{pool: pool}, nil
}

// --- helpers to run with or without a transaction ---

func (driver *PostgresDriver) exec(ctx context.Context, sqlQuery string, args ...any) (pgconn.CommandTag, error) {
	if tx := core.TransactionFrom(ctx); tx != nil {
		if pgTx, ok := tx.(*postgresTransaction); ok {
			return pgTx.transaction.Exec(ctx, sqlQuery, args...)
		}
	}
	return driver.pool.Exec(ctx, sqlQuery, args...)
}

func (driver *PostgresDriver) query(ctx context.Context, sqlQuery string, args ...any) (pgx.Rows, error) {
	if tx := core.TransactionFrom(ctx); tx != nil {
		if pgTx, ok := tx.(*postgresTransaction); ok {
			return pgTx.transaction.Query(ctx, sqlQuery, args...)
		}
	}
	return driver.pool.Query(ctx, sqlQuery, args...)
}

func (driver *PostgresDriver) Connect(ctx context.Context) error {
	return core.NewDriverError(driverName, "connect", driver.pool.Ping(ctx))
}

func (driver *PostgresDriver) Ping(ctx context.Context) error {
	return core.NewDriverError(driverName, "ping", driver.pool.Ping(ctx))
}

func (driver *PostgresDriver) Close(ctx context.Context) error {
	driver.pool.Close()
	return nil
}

func (driver *PostgresDriver) Transaction(ctx context.Context) (core.Transaction, error) {
	tx, err := driver.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, core.NewDriverError(driverName, "begin", err)
	}
	return &postgresTransaction{transaction: tx}, nil
}

// Exec runs a statement that returns no rows, such as DDL.
func (driver *PostgresDriver) Exec(ctx context.Context, sqlQuery string, args ...any) error {
	_, err := driver.exec(ctx, sqlQuery, args...)
	return core.NewDriverError(driverName, "exec", err)
}

func (driver *PostgresDriver) Insert(ctx context.Context, schema *core.SchemaCore, records ...core.Record) error {
	for _, record := range records {
		builder := sqlbuild.New(Dialect)
		sqlQuery := builder.Insert(schema, record)
		if _, err := driver.exec(ctx, sqlQuery, builder.Args()...); err != nil {
			return core.NewDriverError(driverName, "insert", err)
		}
	}
	return nil
}

// FindMany runs the descriptor and nests any requested relations into the
// returned records.
func (driver *PostgresDriver) FindMany(ctx context.Context, schema *core.SchemaCore, query *core.Descriptor) ([]core.Record, error) {
	builder := sqlbuild.New(Dialect)
	sqlQuery := builder.Select(schema, query)

	rowList, err := driver.query(ctx, sqlQuery, builder.Args()...)
	if err != nil {
		return nil, core.NewDriverError(driverName, "find", err)
	}
	defer rowList.Close()

	columnDescriptionList := rowList.FieldDescriptions()
	resultList := []core.Record{}
	for rowList.Next() {
		valueList, err := rowList.Values()
		if err != nil {
			return nil, core.NewDriverError(driverName, "find", err)
		}
		rowMap := make(core.Record, len(columnDescriptionList))
		for i, col := range columnDescriptionList {
			rowMap[col.Name] = valueList[i]
		}
		resultList = append(resultList, rowMap)
	}
	if err := rowList.Err(); err != nil {
		return nil, core.NewDriverError(driverName, "find", err)
	}

	if query != nil && len(query.Include) > 0 {
		if err := core.ResolveIncludes(ctx, driver, resultList, query.Include); err != nil {
			return nil, err
		}
	}
	return resultList, nil
}

//endregion
