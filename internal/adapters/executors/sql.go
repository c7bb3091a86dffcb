package executors

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/architeacher/household/internal/domain/model"
	"github.com/architeacher/household/internal/ports"
)

var _ ports.Executor = (*SQL)(nil)

type (
	// Querier is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
	Querier interface {
		QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	}

	// SQL runs statements through database/sql, used for SQLite and MSSQL.
	SQL struct {
		db      Querier
		scanner RowsScanner
	}
)

func NewSQL(db Querier, scanner RowsScanner) *SQL {
	if scanner == nil {
		scanner = NewSQLScanner()
	}

	return &SQL{db: db, scanner: scanner}
}

func (e *SQL) WithQuerier(db Querier) *SQL {
	return &SQL{db: db, scanner: e.scanner}
}

func (e *SQL) Query(ctx context.Context, stmt ports.Statement, dst any) error {
	rows, err := e.db.QueryContext(ctx, stmt.SQL, stmt.Args...)
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

// normalizeRows turns raw byte values into strings so rows read the same
// whichever driver produced them.
func normalizeRows(dst any) {
	rows, ok := dst.(*[]model.Row)
	if !ok {
		return
	}

	for _, row := range *rows {
		for column, value := range row {
			if raw, ok := value.([]byte); ok {
				row[column] = string(raw)
			}
		}
	}
}
