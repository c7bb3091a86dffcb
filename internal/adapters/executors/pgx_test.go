package executors_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/architeacher/household/internal/adapters/executors"
	"github.com/architeacher/household/internal/domain/model"
	"github.com/architeacher/household/internal/ports"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

type categoryRow struct {
	ID       string `db:"id"`
	Category string `db:"category"`
	Amount   int64  `db:"amount_cents"`
}

func TestPgxQuery(t *testing.T) {
	t.Parallel()

	const query = "SELECT transactions.* FROM transactions WHERE transactions.category = $1"

	stmt := ports.Statement{
		Method: "Execute",
		Table:  "transactions",
		SQL:    query,
		Args:   []any{"groceries"},
	}

	cases := []struct {
		name     string
		setup    func(mock pgxmock.PgxPoolIface)
		dst      func() any
		wantErr  string
		validate func(t *testing.T, dst any)
	}{
		{
			name: "scans rows into maps",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta(query)).
					WithArgs("groceries").
					WillReturnRows(pgxmock.NewRows([]string{"id", "category", "amount_cents"}).
						AddRow("t-1", "groceries", int64(1250)).
						AddRow("t-2", "groceries", int64(830)))
			},
			dst: func() any { return &[]model.Row{} },
			validate: func(t *testing.T, dst any) {
				rows := *dst.(*[]model.Row)
				require.Len(t, rows, 2)
				require.Equal(t, "t-1", rows[0]["id"])
				require.Equal(t, int64(830), rows[1]["amount_cents"])
			},
		},
		{
			name: "scans rows into structs",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta(query)).
					WithArgs("groceries").
					WillReturnRows(pgxmock.NewRows([]string{"id", "category", "amount_cents"}).
						AddRow("t-1", "groceries", int64(1250)))
			},
			dst: func() any { return &[]categoryRow{} },
			validate: func(t *testing.T, dst any) {
				require.Equal(t, []categoryRow{{ID: "t-1", Category: "groceries", Amount: 1250}}, *dst.(*[]categoryRow))
			},
		},
		{
			name: "empty result leaves an empty slice",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta(query)).
					WithArgs("groceries").
					WillReturnRows(pgxmock.NewRows([]string{"id", "category", "amount_cents"}))
			},
			dst: func() any { return &[]model.Row{} },
			validate: func(t *testing.T, dst any) {
				require.Empty(t, *dst.(*[]model.Row))
			},
		},
		{
			name: "query error names the statement",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta(query)).
					WithArgs("groceries").
					WillReturnError(errors.New("relation does not exist"))
			},
			dst:     func() any { return &[]model.Row{} },
			wantErr: "failed to run Execute on transactions: relation does not exist",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tc.setup(mock)

			dst := tc.dst()
			err = executors.NewPgx(mock, nil).Query(context.Background(), stmt, dst)

			if tc.wantErr != "" {
				require.EqualError(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
				tc.validate(t, dst)
			}

			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPgxWithPool(t *testing.T) {
	t.Parallel()

	first, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer first.Close()

	second, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer second.Close()

	second.ExpectQuery(regexp.QuoteMeta("SELECT 1 AS one")).
		WillReturnRows(pgxmock.NewRows([]string{"one"}).AddRow(int64(1)))

	executor := executors.NewPgx(first, executors.NewPgxScanner()).WithPool(second)

	var rows []model.Row
	require.NoError(t, executor.Query(context.Background(), ports.Statement{Method: "Execute", SQL: "SELECT 1 AS one"}, &rows))
	require.Equal(t, []model.Row{{"one": int64(1)}}, rows)

	require.NoError(t, first.ExpectationsWereMet())
	require.NoError(t, second.ExpectationsWereMet())
}
