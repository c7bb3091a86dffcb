package executors_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/architeacher/household/internal/adapters/executors"
	"github.com/architeacher/household/internal/domain/model"
	"github.com/architeacher/household/internal/ports"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)

	db.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE transactions (
		id TEXT PRIMARY KEY,
		category TEXT NOT NULL,
		amount_cents INTEGER NOT NULL,
		receipt BLOB
	)`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO transactions (id, category, amount_cents, receipt) VALUES
		('t-1', 'groceries', 1250, x'6f6b'),
		('t-2', 'rent', 90000, NULL)`)
	require.NoError(t, err)

	return db
}

func TestSQLQuery(t *testing.T) {
	t.Parallel()

	db := openSQLite(t)
	executor := executors.NewSQL(db, nil)

	var rows []model.Row

	err := executor.Query(context.Background(), ports.Statement{
		Method: "Execute",
		Table:  "transactions",
		SQL:    "SELECT transactions.* FROM transactions WHERE transactions.amount_cents > ? ORDER BY transactions.id ASC",
		Args:   []any{int64(1000)},
	}, &rows)
	require.NoError(t, err)

	require.Equal(t, []model.Row{
		{"id": "t-1", "category": "groceries", "amount_cents": int64(1250), "receipt": "ok"},
		{"id": "t-2", "category": "rent", "amount_cents": int64(90000), "receipt": nil},
	}, rows)
}

func TestSQLQueryIntoStructs(t *testing.T) {
	t.Parallel()

	db := openSQLite(t)

	var rows []categoryRow

	err := executors.NewSQL(db, executors.NewSQLScanner()).Query(context.Background(), ports.Statement{
		Method: "Execute",
		Table:  "transactions",
		SQL:    "SELECT id, category, amount_cents FROM transactions WHERE category = ?",
		Args:   []any{"rent"},
	}, &rows)
	require.NoError(t, err)
	require.Equal(t, []categoryRow{{ID: "t-2", Category: "rent", Amount: 90000}}, rows)
}

func TestSQLQueryInsideTransaction(t *testing.T) {
	t.Parallel()

	db := openSQLite(t)

	tx, err := db.Begin()
	require.NoError(t, err)

	executor := executors.NewSQL(db, nil).WithQuerier(tx)

	var rows []model.Row

	err = executor.Query(context.Background(), ports.Statement{
		Method: "Delete",
		Table:  "transactions",
		SQL:    "DELETE FROM transactions WHERE transactions.id = ? RETURNING *",
		Args:   []any{"t-1"},
	}, &rows)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NoError(t, tx.Rollback())

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM transactions").Scan(&count))
	require.Equal(t, 2, count)
}

func TestSQLQueryError(t *testing.T) {
	t.Parallel()

	db := openSQLite(t)

	var rows []model.Row

	err := executors.NewSQL(db, nil).Query(context.Background(), ports.Statement{
		Method: "Execute",
		Table:  "missing",
		SQL:    "SELECT * FROM missing",
	}, &rows)
	require.ErrorContains(t, err, "failed to run Execute on missing")
}
