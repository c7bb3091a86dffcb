package sqlquery

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/architeacher/household/internal/domain/ast"
	"github.com/architeacher/household/internal/domain/model"
	"github.com/architeacher/household/internal/ports"
)

var _ ports.Compiler[Predicate] = (*Compiler)(nil)

// Predicate is a compiled filter. It is evaluated lazily against the
// expression builder of the query it ends up in.
type Predicate func(eb ports.ExpressionBuilder[sq.Sqlizer]) (sq.Sqlizer, error)

// Compiler turns a parsed tree into a Predicate shared by every SQL dialect.
type Compiler struct {
	node ast.Node
}

func NewCompiler() *Compiler {
	return &Compiler{}
}

func (c *Compiler) SetExpression(node ast.Node) {
	c.node = node
}

func (c *Compiler) Compile() (Predicate, error) {
	if c.node == nil {
		return nil, model.NewError(context.Background(), model.ErrCompile, "Compile", "no expression set")
	}

	return compileNode(c.node)
}

func compileNode(node ast.Node) (Predicate, error) {
	switch n := node.(type) {
	case *ast.Condition:
		return compileCondition(n)
	case *ast.Not:
		inner, err := compileNode(n.Expression())
		if err != nil {
			return nil, err
		}

		return func(eb ports.ExpressionBuilder[sq.Sqlizer]) (sq.Sqlizer, error) {
			expr, err := inner(eb)
			if err != nil {
				return nil, err
			}

			return eb.Not(expr), nil
		}, nil
	case *ast.Group:
		return compileGroup(n)
	default:
		return nil, model.NewError(context.Background(), model.ErrCompile, "Compile", fmt.Sprintf("unsupported node %T", node))
	}
}

func compileCondition(cond *ast.Condition) (Predicate, error) {
	field, op, value := cond.Field(), cond.Operator(), cond.Value()

	switch {
	case op.IsComparison():
		return func(eb ports.ExpressionBuilder[sq.Sqlizer]) (sq.Sqlizer, error) {
			return eb.Compare(field, op, value)
		}, nil
	case op.IsPattern():
		mode, _ := model.MatchModeOf(op)

		text, ok := value.(string)
		if !ok {
			return nil, compileError(field, fmt.Sprintf("operator %s requires text", op))
		}

		return func(eb ports.ExpressionBuilder[sq.Sqlizer]) (sq.Sqlizer, error) {
			return eb.Match(field, mode, text)
		}, nil
	case op == model.OpIn:
		if !model.IsSliceValue(value) {
			return nil, compileError(field, "operator in requires a list")
		}

		values := model.SliceValues(value)

		return func(eb ports.ExpressionBuilder[sq.Sqlizer]) (sq.Sqlizer, error) {
			return eb.In(field, values)
		}, nil
	default:
		return nil, compileError(field, fmt.Sprintf("unsupported operator %q", op))
	}
}

func compileGroup(group *ast.Group) (Predicate, error) {
	if group.Len() == 0 {
		return nil, model.NewError(context.Background(), model.ErrCompile, "Compile", "empty group")
	}

	children := make([]Predicate, 0, group.Len())

	for _, child := range group.Expressions() {
		predicate, err := compileNode(child)
		if err != nil {
			return nil, err
		}

		children = append(children, predicate)
	}

	if len(children) == 1 {
		return children[0], nil
	}

	operator := group.Operator()

	return func(eb ports.ExpressionBuilder[sq.Sqlizer]) (sq.Sqlizer, error) {
		exprs := make([]sq.Sqlizer, 0, len(children))

		for _, child := range children {
			expr, err := child(eb)
			if err != nil {
				return nil, err
			}

			exprs = append(exprs, expr)
		}

		if operator == model.Or {
			return eb.Or(exprs...), nil
		}

		return eb.And(exprs...), nil
	}, nil
}
