package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/architeacher/household/internal/adapters/executors"
	"github.com/architeacher/household/internal/config"
	"github.com/architeacher/household/internal/domain/model"
	"github.com/architeacher/household/internal/ports"
	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/microsoft/go-mssqldb"
)

// Connection is an opened database and the executor running statements on it.
type Connection struct {
	Dialect  model.Dialect
	Executor ports.Executor

	ping  func(ctx context.Context) error
	close func()
}

func (c *Connection) Ping(ctx context.Context) error {
	return c.ping(ctx)
}

func (c *Connection) Close(context.Context) error {
	c.close()

	return nil
}

// Open connects to the database selected by cfg.Dialect and waits until it
// answers a ping.
func Open(ctx context.Context, cfg config.Database) (*Connection, error) {
	dialect, err := model.ParseDialect(cfg.Dialect)
	if err != nil {
		return nil, err
	}

	var conn *Connection

	switch dialect {
	case model.DialectPostgres:
		conn, err = openPostgres(ctx, cfg.Postgres)
	case model.DialectSQLite:
		conn, err = openSQL(dialect, "sqlite3", cfg.SQLite.DSN)
	case model.DialectMSSQL:
		conn, err = openSQL(dialect, "sqlserver", cfg.MSSQL.ConnString())
	default:
		return nil, fmt.Errorf("%w: no connection support for %q", model.ErrNotImplemented, dialect)
	}

	if err != nil {
		return nil, err
	}

	if err := pingWithRetry(ctx, conn, cfg.ConnectRetries, cfg.RetryDelay); err != nil {
		conn.close()

		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return conn, nil
}

func openPostgres(ctx context.Context, cfg config.Postgres) (*Connection, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	return &Connection{
		Dialect:  model.DialectPostgres,
		Executor: executors.NewPgx(pool, nil),
		ping:     pool.Ping,
		close:    pool.Close,
	}, nil
}

func openSQL(dialect model.Dialect, driver, dsn string) (*Connection, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", dialect, err)
	}

	if dialect == model.DialectSQLite {
		// Every connection to an in-memory database is a new database.
		db.SetMaxOpenConns(1)
	}

	return &Connection{
		Dialect:  dialect,
		Executor: executors.NewSQL(db, nil),
		ping:     db.PingContext,
		close:    func() { _ = db.Close() },
	}, nil
}

func pingWithRetry(ctx context.Context, conn *Connection, retries uint, delay time.Duration) error {
	expBackoff := backoff.NewExponentialBackOff()
	if delay > 0 {
		expBackoff.InitialInterval = delay
	}

	_, err := backoff.Retry(
		ctx,
		func() (struct{}, error) {
			return struct{}{}, conn.ping(ctx)
		},
		backoff.WithMaxTries(retries+1),
		backoff.WithBackOff(expBackoff),
	)

	return err
}
