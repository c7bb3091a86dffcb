package executors

import (
	"database/sql"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/jackc/pgx/v5"
)

type (
	// Scanner fills dst from a pgx result set.
	Scanner interface {
		ScanAll(dst any, rows pgx.Rows) error
	}

	// RowsScanner fills dst from a database/sql result set.
	RowsScanner interface {
		ScanAll(dst any, rows *sql.Rows) error
	}

	PgxScanner struct{}

	SQLScanner struct{}
)

func NewPgxScanner() *PgxScanner {
	return &PgxScanner{}
}

func (s *PgxScanner) ScanAll(dst any, rows pgx.Rows) error {
	return pgxscan.ScanAll(dst, rows)
}

func NewSQLScanner() *SQLScanner {
	return &SQLScanner{}
}

func (s *SQLScanner) ScanAll(dst any, rows *sql.Rows) error {
	return sqlscan.ScanAll(dst, rows)
}
