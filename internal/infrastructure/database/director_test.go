package database_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/architeacher/household/internal/domain/model"
	"github.com/architeacher/household/internal/infrastructure/database"
	"github.com/architeacher/household/internal/ports"
	"github.com/architeacher/household/pkg/logger"
	"github.com/stretchr/testify/require"
)

var canonical = model.NewGroup(
	model.Cond("edad", model.OpGt, 25),
	model.And,
	model.Cond("sexo", model.OpEq, "F"),
	model.Or,
	model.Not(model.Cond("activo", model.OpEq, true)),
)

type recorder struct {
	statements []ports.Statement
}

func (r *recorder) Query(_ context.Context, stmt ports.Statement, _ any) error {
	r.statements = append(r.statements, stmt)

	return nil
}

func TestDirector_Dialects(t *testing.T) {
	t.Parallel()

	require.Equal(t, []model.Dialect{
		model.DialectMongo,
		model.DialectMSSQL,
		model.DialectPostgres,
		model.DialectSQLite,
	}, database.NewDirector().Dialects())
}

func TestDirector_ResolveBuildsDialectQueries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		dialect  model.Dialect
		expected string
	}{
		{
			dialect:  model.DialectPostgres,
			expected: "SELECT ledger.* FROM ledger WHERE ledger.amount > $1 ORDER BY ledger.entry_id ASC LIMIT 3",
		},
		{
			dialect:  model.DialectSQLite,
			expected: "SELECT ledger.* FROM ledger WHERE ledger.amount > ? ORDER BY ledger.entry_id ASC LIMIT 3",
		},
		{
			dialect:  model.DialectMSSQL,
			expected: "SELECT ledger.* FROM ledger WHERE ledger.amount > @p1 ORDER BY ledger.entry_id ASC OFFSET 0 ROWS FETCH NEXT 3 ROWS ONLY",
		},
	}

	director := database.NewDirector(database.WithPrimaryKey("entry_id"))

	for _, tc := range cases {
		t.Run(tc.dialect.String(), func(t *testing.T) {
			t.Parallel()

			exec := &recorder{}

			db, err := director.Resolve(tc.dialect, exec)
			require.NoError(t, err)
			require.Equal(t, tc.dialect, db.Dialect())

			_, err = db.Query("ledger").Where(model.Cond("amount", model.OpGt, 10)).Take(3).Execute(context.Background())
			require.NoError(t, err)

			require.Len(t, exec.statements, 1)
			require.Equal(t, tc.expected, exec.statements[0].SQL)
			require.Equal(t, []any{10}, exec.statements[0].Args)
		})
	}
}

func TestContext_QueryReturnsIndependentChains(t *testing.T) {
	t.Parallel()

	exec := &recorder{}

	db, err := database.NewDirector().Resolve(model.DialectPostgres, exec)
	require.NoError(t, err)

	first := db.Query("transactions").Select("id")
	second := db.Query("categories").SelectAll()

	_, err = second.Execute(context.Background())
	require.NoError(t, err)

	_, err = first.Execute(context.Background())
	require.NoError(t, err)

	require.Equal(t, "SELECT categories.* FROM categories", exec.statements[0].SQL)
	require.Equal(t, "SELECT transactions.id FROM transactions", exec.statements[1].SQL)
}

func TestContext_WithExecutor(t *testing.T) {
	t.Parallel()

	original, inTx := &recorder{}, &recorder{}

	db, err := database.NewDirector().Resolve(model.DialectSQLite, original)
	require.NoError(t, err)

	_, err = db.WithExecutor(inTx).Query("transactions").Delete().Where(model.Cond("id", model.OpEq, "x")).Execute(context.Background())
	require.NoError(t, err)

	require.Empty(t, original.statements)
	require.Len(t, inTx.statements, 1)
	require.Equal(t, "DELETE FROM transactions WHERE transactions.id = ? RETURNING *", inTx.statements[0].SQL)
}

func TestDirector_ResolveErrors(t *testing.T) {
	t.Parallel()

	director := database.NewDirector()

	_, err := director.Resolve(model.DialectMongo, &recorder{})
	require.ErrorIs(t, err, model.ErrNotImplemented)

	_, err = director.Resolve("cassandra_database", &recorder{})
	require.ErrorIs(t, err, model.ErrNotImplemented)

	_, err = director.Resolve(model.DialectPostgres, nil)
	require.ErrorIs(t, err, model.ErrNullParameter)
}

func TestDirector_Compile(t *testing.T) {
	t.Parallel()

	director := database.NewDirector()

	postgres, err := director.Compile(model.DialectPostgres, "people", canonical)
	require.NoError(t, err)
	require.Equal(t, database.Fragment{
		Dialect: model.DialectPostgres,
		Filter:  "((people.edad > $1 AND people.sexo = $2) OR NOT (people.activo = $3))",
		Args:    []any{25, "F", true},
	}, postgres)

	mongo, err := director.Compile(model.DialectMongo, "people", canonical)
	require.NoError(t, err)
	require.Equal(t, model.DialectMongo, mongo.Dialect)
	require.Empty(t, mongo.Args)
	require.JSONEq(t, `{"$or":[{"$and":[{"edad":{"$gt":25}},{"sexo":{"$eq":"F"}}]},{"$nor":[{"activo":{"$eq":true}}]}]}`, mongo.Filter)

	_, err = director.Compile(model.DialectMongo, "", nil)
	require.ErrorIs(t, err, model.ErrNullParameter)

	_, err = director.Compile(model.DialectMSSQL, "people", model.Cond("name", model.OpIn, "not a list"))
	require.Error(t, err)
}

type fixedFactory struct{}

func (fixedFactory) Dialect() model.Dialect { return model.DialectSQLite }

func (fixedFactory) Compile(string, model.Expression) (database.Fragment, error) {
	return database.Fragment{Dialect: model.DialectSQLite, Filter: "1 = 1"}, nil
}

func TestDirector_WithFactoryReplacesRegistration(t *testing.T) {
	t.Parallel()

	director := database.NewDirector(database.WithFactory(fixedFactory{}))

	fragment, err := director.Compile(model.DialectSQLite, "t", canonical)
	require.NoError(t, err)
	require.Equal(t, "1 = 1", fragment.Filter)

	_, err = director.Resolve(model.DialectSQLite, &recorder{})
	require.ErrorIs(t, err, model.ErrNotImplemented)
}

func TestContext_QueryRejectsInvalidTable(t *testing.T) {
	t.Parallel()

	db, err := database.NewDirector().Resolve(model.DialectPostgres, &recorder{})
	require.NoError(t, err)

	stage := db.Query("bad name")
	_, err = stage.SelectAll().Execute(context.Background())
	require.ErrorIs(t, err, model.ErrInvalidParameter)
}

func TestDirector_LoggerOption(t *testing.T) {
	t.Parallel()

	_, err := database.NewDirector().Resolve(model.DialectSQLite, &recorder{})
	require.NoError(t, err)

	var buf bytes.Buffer

	_, err = database.NewDirector(database.WithLogger(logger.NewBufferedTestLogger(&buf))).
		Resolve(model.DialectSQLite, &recorder{})
	require.NoError(t, err)
	require.Contains(t, buf.String(), "database context resolved")
	require.Contains(t, buf.String(), `"dialect":"sqlite_database"`)
}
