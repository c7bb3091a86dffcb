package model_test

import (
	"math"
	"testing"

	"github.com/architeacher/household/internal/domain/model"
	"github.com/stretchr/testify/require"
)

func TestPageArgs_Validate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		args    model.PageArgs
		wantErr bool
	}{
		{name: "valid", args: model.PageArgs{CurrentPage: 1, PageSize: 10}},
		{name: "valid descending", args: model.PageArgs{CurrentPage: 3, PageSize: 5, Direction: model.SortDesc}},
		{name: "zero page size", args: model.PageArgs{CurrentPage: 1, PageSize: 0}, wantErr: true},
		{name: "zero current page", args: model.PageArgs{CurrentPage: 0, PageSize: 10}, wantErr: true},
		{name: "bad direction", args: model.PageArgs{CurrentPage: 1, PageSize: 10, Direction: "SIDEWAYS"}, wantErr: true},
		{name: "largest signed page size", args: model.PageArgs{CurrentPage: 1, PageSize: math.MaxInt64}},
		{name: "page size above signed range", args: model.PageArgs{CurrentPage: 1, PageSize: math.MaxUint}, wantErr: true},
		{name: "offset overflow", args: model.PageArgs{CurrentPage: 1 << 33, PageSize: 1 << 31}, wantErr: true},
		{name: "offset past signed range", args: model.PageArgs{CurrentPage: 3, PageSize: 1 << 62}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.args.Validate()
			if tc.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestPageArgs_Offset(t *testing.T) {
	t.Parallel()

	require.Equal(t, uint64(0), model.PageArgs{CurrentPage: 1, PageSize: 10}.Offset())
	require.Equal(t, uint64(20), model.PageArgs{CurrentPage: 3, PageSize: 10}.Offset())
}

func TestTotalPages(t *testing.T) {
	t.Parallel()

	cases := []struct {
		total    int64
		size     uint
		expected uint
	}{
		{total: 0, size: 10, expected: 0},
		{total: 1, size: 10, expected: 1},
		{total: 10, size: 10, expected: 1},
		{total: 11, size: 10, expected: 2},
		{total: 25, size: 5, expected: 5},
		{total: 5, size: math.MaxUint, expected: 1},
		{total: math.MaxInt64, size: 2, expected: 1 << 62},
	}

	for _, tc := range cases {
		require.Equal(t, tc.expected, model.TotalPages(tc.total, tc.size))
	}
}

func TestParseSortDirection(t *testing.T) {
	t.Parallel()

	direction, ok := model.ParseSortDirection("desc")
	require.True(t, ok)
	require.Equal(t, model.SortDesc, direction)

	direction, ok = model.ParseSortDirection("")
	require.True(t, ok)
	require.Equal(t, model.SortAsc, direction)

	_, ok = model.ParseSortDirection("up")
	require.False(t, ok)
}

func TestParseDialect(t *testing.T) {
	t.Parallel()

	dialect, err := model.ParseDialect("PostgreSQL")
	require.NoError(t, err)
	require.Equal(t, model.DialectPostgres, dialect)

	dialect, err = model.ParseDialect("ms_sql_database")
	require.NoError(t, err)
	require.Equal(t, model.DialectMSSQL, dialect)
	require.True(t, dialect.IsSQL())
	require.False(t, model.DialectMongo.IsSQL())

	_, err = model.ParseDialect("oracle")
	require.ErrorIs(t, err, model.ErrInvalidParameter)
}

func TestRecord_Columns(t *testing.T) {
	t.Parallel()

	record := model.Record{"kind": "expense", "amount_cents": 1200, "category": "rent"}

	require.Equal(t, []string{"amount_cents", "category", "kind"}, record.Columns())
	require.Equal(t, []any{1200, "rent", "expense"}, record.Values())
}
