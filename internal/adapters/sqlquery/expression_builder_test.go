package sqlquery_test

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/architeacher/household/internal/adapters/sqlquery"
	"github.com/architeacher/household/internal/domain/model"
	"github.com/stretchr/testify/require"
)

func TestExpressionBuilder_Compare(t *testing.T) {
	t.Parallel()

	eb := sqlquery.NewExpressionBuilder(sqlquery.Postgres, "transactions")

	cases := []struct {
		name     string
		field    string
		op       model.Operator
		value    any
		wantSQL  string
		wantArgs []any
		wantErr  error
	}{
		{name: "equal", field: "category", op: model.OpEq, value: "rent", wantSQL: "transactions.category = ?", wantArgs: []any{"rent"}},
		{name: "not equal", field: "category", op: model.OpNotEq, value: "rent", wantSQL: "transactions.category <> ?", wantArgs: []any{"rent"}},
		{name: "greater", field: "amount_cents", op: model.OpGt, value: 100, wantSQL: "transactions.amount_cents > ?", wantArgs: []any{100}},
		{name: "less", field: "amount_cents", op: model.OpLt, value: 100, wantSQL: "transactions.amount_cents < ?", wantArgs: []any{100}},
		{name: "greater or equal", field: "amount_cents", op: model.OpGte, value: 100, wantSQL: "transactions.amount_cents >= ?", wantArgs: []any{100}},
		{name: "less or equal", field: "amount_cents", op: model.OpLte, value: 100, wantSQL: "transactions.amount_cents <= ?", wantArgs: []any{100}},
		{name: "equal null", field: "description", op: model.OpEq, value: nil, wantSQL: "transactions.description IS NULL"},
		{name: "not equal null", field: "description", op: model.OpNotEq, value: nil, wantSQL: "transactions.description IS NOT NULL"},
		{name: "qualified field is kept", field: "accounts.name", op: model.OpEq, value: "cash", wantSQL: "accounts.name = ?", wantArgs: []any{"cash"}},
		{name: "list value", field: "category", op: model.OpEq, value: []any{"a"}, wantErr: model.ErrCompile},
		{name: "ordering against null", field: "amount_cents", op: model.OpGt, value: nil, wantErr: model.ErrCompile},
		{name: "pattern operator", field: "category", op: model.OpContains, value: "a", wantErr: model.ErrCompile},
		{name: "injected field", field: "category; DROP TABLE transactions", op: model.OpEq, value: 1, wantErr: model.ErrInvalidParameter},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			expr, err := eb.Compare(tc.field, tc.op, tc.value)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)

				return
			}

			require.NoError(t, err)

			sql, args, err := expr.ToSql()
			require.NoError(t, err)
			require.Equal(t, tc.wantSQL, sql)
			require.Equal(t, tc.wantArgs, nilIfEmpty(args))
		})
	}
}

func TestExpressionBuilder_MatchEscapesWildcards(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		dialect  sqlquery.Dialect
		mode     model.MatchMode
		text     string
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "postgres contains",
			dialect:  sqlquery.Postgres,
			mode:     model.MatchContains,
			text:     "50%_off",
			wantSQL:  "transactions.description LIKE ?",
			wantArgs: []any{`%50\%\_off%`},
		},
		{
			name:     "sqlite prefix",
			dialect:  sqlquery.SQLite,
			mode:     model.MatchPrefix,
			text:     "rent",
			wantSQL:  `transactions.description LIKE ? ESCAPE '\'`,
			wantArgs: []any{"rent%"},
		},
		{
			name:     "mssql suffix escapes brackets",
			dialect:  sqlquery.MSSQL,
			mode:     model.MatchSuffix,
			text:     "[x]",
			wantSQL:  `transactions.description LIKE ? ESCAPE '\'`,
			wantArgs: []any{`%\[x]`},
		},
		{
			name:     "backslash is escaped",
			dialect:  sqlquery.Postgres,
			mode:     model.MatchContains,
			text:     `a\b`,
			wantSQL:  "transactions.description LIKE ?",
			wantArgs: []any{`%a\\b%`},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			expr, err := sqlquery.NewExpressionBuilder(tc.dialect, "transactions").Match("description", tc.mode, tc.text)
			require.NoError(t, err)

			sql, args, err := expr.ToSql()
			require.NoError(t, err)
			require.Equal(t, tc.wantSQL, sql)
			require.Equal(t, tc.wantArgs, args)
		})
	}
}

func TestExpressionBuilder_InAndLogic(t *testing.T) {
	t.Parallel()

	eb := sqlquery.NewExpressionBuilder(sqlquery.SQLite, "transactions")

	in, err := eb.In("kind", []any{"income", "expense"})
	require.NoError(t, err)

	sql, args, err := in.ToSql()
	require.NoError(t, err)
	require.Equal(t, "transactions.kind IN (?,?)", sql)
	require.Equal(t, []any{"income", "expense"}, args)

	empty, err := eb.In("kind", []any{})
	require.NoError(t, err)

	sql, _, err = empty.ToSql()
	require.NoError(t, err)
	require.Equal(t, "(1=0)", sql)

	a, err := eb.Compare("amount_cents", model.OpGt, 10)
	require.NoError(t, err)

	b, err := eb.Compare("category", model.OpEq, "rent")
	require.NoError(t, err)

	cases := []struct {
		name     string
		expr     sq.Sqlizer
		wantSQL  string
		wantArgs []any
	}{
		{name: "and", expr: eb.And(a, b), wantSQL: "(transactions.amount_cents > ? AND transactions.category = ?)", wantArgs: []any{10, "rent"}},
		{name: "or", expr: eb.Or(a, b), wantSQL: "(transactions.amount_cents > ? OR transactions.category = ?)", wantArgs: []any{10, "rent"}},
		{name: "not", expr: eb.Not(a), wantSQL: "NOT (transactions.amount_cents > ?)", wantArgs: []any{10}},
		{name: "not of group", expr: eb.Not(eb.Or(a, b)), wantSQL: "NOT ((transactions.amount_cents > ? OR transactions.category = ?))", wantArgs: []any{10, "rent"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			sql, args, err := tc.expr.ToSql()
			require.NoError(t, err)
			require.Equal(t, tc.wantSQL, sql)
			require.Equal(t, tc.wantArgs, args)
		})
	}
}

func TestValidateIdentifier(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"id", "amount_cents", "transactions.id", "_private"} {
		require.NoError(t, sqlquery.ValidateIdentifier(name), name)
	}

	for _, name := range []string{"", "1abc", "a.b.c", "a b", "id--", "x'y"} {
		require.ErrorIs(t, sqlquery.ValidateIdentifier(name), model.ErrInvalidParameter, name)
	}
}

func TestDialectFor(t *testing.T) {
	t.Parallel()

	for _, name := range []model.Dialect{model.DialectPostgres, model.DialectSQLite, model.DialectMSSQL} {
		dialect, err := sqlquery.DialectFor(name)
		require.NoError(t, err)
		require.Equal(t, name, dialect.Name())
	}

	_, err := sqlquery.DialectFor(model.DialectMongo)
	require.ErrorIs(t, err, model.ErrNotImplemented)
}

func nilIfEmpty(args []any) []any {
	if len(args) == 0 {
		return nil
	}

	return args
}
