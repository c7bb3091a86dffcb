package ports

import (
	"github.com/architeacher/household/internal/domain/ast"
	"github.com/architeacher/household/internal/domain/model"
)

type (
	// Compiler turns a parsed tree into a dialect specific predicate T.
	Compiler[T any] interface {
		SetExpression(node ast.Node)
		Compile() (T, error)
	}

	// ExpressionBuilder is the backend a lazy predicate is evaluated
	// against. P is the backend's predicate type.
	ExpressionBuilder[P any] interface {
		Compare(field string, op model.Operator, value any) (P, error)
		Match(field string, mode model.MatchMode, text string) (P, error)
		In(field string, values []any) (P, error)
		Not(expr P) P
		And(exprs ...P) P
		Or(exprs ...P) P
	}
)
