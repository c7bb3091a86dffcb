package executors

import (
	"context"
	"fmt"

	"github.com/architeacher/household/internal/ports"
	"github.com/jackc/pgx/v5"
)

var _ ports.Executor = (*Pgx)(nil)

type (
	// PoolOps is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools.
	PoolOps interface {
		Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	}

	// Pgx runs statements on a PostgreSQL pool or transaction.
	Pgx struct {
		pool    PoolOps
		scanner Scanner
	}
)

func NewPgx(pool PoolOps, scanner Scanner) *Pgx {
	if scanner == nil {
		scanner = NewPgxScanner()
	}

	return &Pgx{pool: pool, scanner: scanner}
}

// WithPool returns an executor sharing the scanner but bound to pool, e.g. a
// transaction opened by the caller.
func (e *Pgx) WithPool(pool PoolOps) *Pgx {
	return &Pgx{pool: pool, scanner: e.scanner}
}

func (e *Pgx) Query(ctx context.Context, stmt ports.Statement, dst any) error {
	rows, err := e.pool.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return fmt.Errorf("failed to run %s on %s: %w", stmt.Method, stmt.Table, err)
	}
	defer rows.Close()

	if err := e.scanner.ScanAll(dst, rows); err != nil {
		return fmt.Errorf("failed to scan %s result of %s: %w", stmt.Method, stmt.Table, err)
	}

	normalizeRows(dst)

	return nil
}
