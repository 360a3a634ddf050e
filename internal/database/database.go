package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Options describes how to reach the datastore. DSN is a postgres:// URL for
// postgres and a file path (or ":memory:") for sqlite. SearchPath sets the
// postgres schema search path and is ignored for sqlite.
type Options struct {
	Driver             string
	DSN                string
	SearchPath         string
	MaxOpenConnections int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
}

// Open connects to the configured datastore and verifies the connection
func Open(opts Options) (*bun.DB, error) {
	if opts.DSN == "" {
		return nil, fmt.Errorf("database DSN is required")
	}

	var db *bun.DB
	switch opts.Driver {
	case DriverPostgres, "":
		db = openPostgres(opts)
	case DriverSQLite:
		var err error
		db, err = openSQLite(opts)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", opts.Driver)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func openPostgres(opts Options) *bun.DB {
	maxConnections := opts.MaxOpenConnections
	if maxConnections <= 0 {
		maxConnections = 10
	}

	connectorOpts := []pgdriver.Option{pgdriver.WithDSN(opts.DSN)}
	if opts.ReadTimeout > 0 {
		connectorOpts = append(connectorOpts, pgdriver.WithReadTimeout(opts.ReadTimeout))
	}
	if opts.WriteTimeout > 0 {
		connectorOpts = append(connectorOpts, pgdriver.WithWriteTimeout(opts.WriteTimeout))
	}
	if opts.SearchPath != "" {
		connectorOpts = append(connectorOpts, pgdriver.WithConnParams(map[string]interface{}{
			"search_path": opts.SearchPath,
		}))
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(connectorOpts...))
	sqldb.SetMaxOpenConns(maxConnections)
	sqldb.SetMaxIdleConns(maxConnections / 2)
	sqldb.SetConnMaxLifetime(time.Hour)

	return bun.NewDB(sqldb, pgdialect.New())
}

func openSQLite(opts Options) (*bun.DB, error) {
	sqldb, err := sql.Open("sqlite", opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// sqlite serializes writers; a single connection also keeps ":memory:"
	// databases alive for the lifetime of the pool.
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)
	sqldb.SetConnMaxLifetime(0)

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}
