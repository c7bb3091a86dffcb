package sqlquery

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/architeacher/household/internal/domain/model"
	"github.com/architeacher/household/internal/ports"
)

var _ ports.ExpressionBuilder[sq.Sqlizer] = (*ExpressionBuilder)(nil)

// ExpressionBuilder lowers compiled predicates to squirrel expressions
// for one dialect, qualifying bare fields with the bound table.
type ExpressionBuilder struct {
	dialect Dialect
	table   string
}

func NewExpressionBuilder(dialect Dialect, table string) *ExpressionBuilder {
	return &ExpressionBuilder{dialect: dialect, table: table}
}

func (e *ExpressionBuilder) Compare(field string, op model.Operator, value any) (sq.Sqlizer, error) {
	column, err := qualify(e.table, field)
	if err != nil {
		return nil, err
	}

	if model.IsSliceValue(value) {
		return nil, compileError(field, fmt.Sprintf("operator %s does not accept a list", op))
	}

	if value == nil && op != model.OpEq && op != model.OpNotEq {
		return nil, compileError(field, fmt.Sprintf("operator %s does not accept null", op))
	}

	switch op {
	case model.OpEq:
		return sq.Eq{column: value}, nil
	case model.OpNotEq:
		return sq.NotEq{column: value}, nil
	case model.OpGt:
		return sq.Gt{column: value}, nil
	case model.OpLt:
		return sq.Lt{column: value}, nil
	case model.OpGte:
		return sq.GtOrEq{column: value}, nil
	case model.OpLte:
		return sq.LtOrEq{column: value}, nil
	default:
		return nil, compileError(field, fmt.Sprintf("operator %s is not a comparison", op))
	}
}

func (e *ExpressionBuilder) Match(field string, mode model.MatchMode, text string) (sq.Sqlizer, error) {
	column, err := qualify(e.table, field)
	if err != nil {
		return nil, err
	}

	escaped := e.dialect.escapeLike(text)

	switch mode {
	case model.MatchContains:
		return e.dialect.like(column, "%"+escaped+"%"), nil
	case model.MatchPrefix:
		return e.dialect.like(column, escaped+"%"), nil
	case model.MatchSuffix:
		return e.dialect.like(column, "%"+escaped), nil
	default:
		return nil, compileError(field, fmt.Sprintf("unknown match mode %s", mode))
	}
}

func (e *ExpressionBuilder) In(field string, values []any) (sq.Sqlizer, error) {
	column, err := qualify(e.table, field)
	if err != nil {
		return nil, err
	}

	return sq.Eq{column: values}, nil
}

func (e *ExpressionBuilder) Not(expr sq.Sqlizer) sq.Sqlizer {
	return sq.Expr("NOT (?)", expr)
}

func (e *ExpressionBuilder) And(exprs ...sq.Sqlizer) sq.Sqlizer {
	return sq.And(exprs)
}

func (e *ExpressionBuilder) Or(exprs ...sq.Sqlizer) sq.Sqlizer {
	return sq.Or(exprs)
}

func compileError(field, detail string) error {
	return model.NewError(context.Background(), model.ErrCompile, "Compile", detail, model.WithField(field))
}
