package main

import (
	"context"
	"fmt"

	"github.com/leandroluk/querykit/config"
	"github.com/leandroluk/querykit/core"
	"github.com/leandroluk/querykit/driver/mongo"
	"github.com/leandroluk/querykit/driver/postgres"
	"github.com/leandroluk/querykit/driver/sqlite"
)

// execer is implemented by the SQL drivers.
type execer interface {
	Exec(ctx context.Context, sqlQuery string, args ...any) error
}

// openDriver connects to the configured backend.
func openDriver(ctx context.Context, cfg config.DatabaseConfig) (core.Driver, error) {
	var (
		driver core.Driver
		err    error
	)
	switch cfg.Driver {
	case "postgres":
		var d *postgres.PostgresDriver
		if d, err = postgres.NewPostgresDriver(ctx, cfg.DSN); err == nil {
			driver = d
		}
	case "sqlite":
		var d *sqlite.SQLiteDriver
		if d, err = sqlite.NewSQLiteDriver(cfg.DSN); err == nil {
			driver = d
		}
	case "mongo":
		var d *mongo.MongoDriver
		if d, err = mongo.NewMongoDriver(ctx, cfg.DSN, cfg.Name); err == nil {
			driver = d
		}
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := driver.Connect(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, err
	}
	return driver, nil
}
