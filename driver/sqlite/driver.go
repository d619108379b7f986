// Package sqlite implements core.Driver on an embedded SQLite database
// through database/sql and the pure-Go modernc.org/sqlite engine.
package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/leandroluk/querykit/core"
	"github.com/leandroluk/querykit/driver/sqlbuild"

	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

// Dialect renders ? placeholders. SQLite LIKE is already case-insensitive
// for ASCII.
var Dialect = sqlbuild.Dialect{
	Placeholder: func(int) string { return "?" },
	Quote:       sqlbuild.QuoteDouble,
	Like: func(column, placeholder string) string {
		return "CAST(" + column + " AS TEXT) LIKE " + placeholder
	},
	UnboundedLimit: "-1",
}

type sqliteTransaction struct {
	transaction *sql.Tx
}

func (t *sqliteTransaction) Commit(context.Context) error {
	return core.NewDriverError(driverName, "commit", t.transaction.Commit())
}

func (t *sqliteTransaction) Rollback(context.Context) error {
	return core.NewDriverError(driverName, "rollback", t.transaction.Rollback())
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type SQLiteDriver struct {
	db *sql.DB
}

var _ core.Driver = (*SQLiteDriver)(nil)

// NewSQLiteDriver opens the database file at path. ":memory:" opens a
// private in-memory database bound to a single connection.
func NewSQLiteDriver(path string) (*SQLiteDriver, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, core.NewDriverError(driverName, "connect", err)
	}
	if path == ":memory:" || strings.Contains(path, "mode=memory") {
		db.SetMaxOpenConns(1)
	}
	return &SQLiteDriver{db: db}, nil
}

func (driver *SQLiteDriver) conn(ctx context.Context) querier {
	if tx := core.TransactionFrom(ctx); tx != nil {
		if sqliteTx, ok := tx.(*sqliteTransaction); ok {
			return sqliteTx.transaction
		}
	}
	return driver.db
}

func (driver *SQLiteDriver) Connect(ctx context.Context) error {
	return core.NewDriverError(driverName, "connect", driver.db.PingContext(ctx))
}

func (driver *SQLiteDriver) Ping(ctx context.Context) error {
	return core.NewDriverError(driverName, "ping", driver.db.PingContext(ctx))
}

func (driver *SQLiteDriver) Close(context.Context) error {
	return core.NewDriverError(driverName, "close", driver.db.Close())
}

func (driver *SQLiteDriver) Transaction(ctx context.Context) (core.Transaction, error) {
	tx, err := driver.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, core.NewDriverError(driverName, "begin", err)
	}
	return &sqliteTransaction{transaction: tx}, nil
}

// Exec runs a statement that returns no rows, such as DDL.
func (driver *SQLiteDriver) Exec(ctx context.Context, sqlQuery string, args ...any) error {
	_, err := driver.conn(ctx).ExecContext(ctx, sqlQuery, args...)
	return core.NewDriverError(driverName, "exec", err)
}

func (driver *SQLiteDriver) Insert(ctx context.Context, schema *core.SchemaCore, records ...core.Record) error {
	conn := driver.conn(ctx)
	for _, record := range records {
		builder := sqlbuild.New(Dialect)
		sqlQuery := builder.Insert(schema, record)
		if _, err := conn.ExecContext(ctx, sqlQuery, builder.Args()...); err != nil {
			return core.NewDriverError(driverName, "insert", err)
		}
	}
	return nil
}

func (driver *SQLiteDriver) FindMany(ctx context.Context, schema *core.SchemaCore, query *core.Descriptor) ([]core.Record, error) {
	builder := sqlbuild.New(Dialect)
	sqlQuery := builder.Select(schema, query)

	rows, err := driver.conn(ctx).QueryContext(ctx, sqlQuery, builder.Args()...)
	if err != nil {
		return nil, core.NewDriverError(driverName, "find", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, core.NewDriverError(driverName, "find", err)
	}
	resultList := []core.Record{}
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, core.NewDriverError(driverName, "find", err)
		}
		record := make(core.Record, len(columns))
		for i, column := range columns {
			record[column] = values[i]
		}
		resultList = append(resultList, record)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewDriverError(driverName, "find", err)
	}

	if query != nil && len(query.Include) > 0 {
		if err := core.ResolveIncludes(ctx, driver, resultList, query.Include); err != nil {
			return nil, err
		}
	}
	return resultList, nil
}
