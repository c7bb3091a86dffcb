// Package docquery compiles filter trees into MongoDB query documents.
package docquery

import (
	"context"
	"fmt"

	"github.com/architeacher/household/internal/domain/ast"
	"github.com/architeacher/household/internal/domain/model"
	"github.com/architeacher/household/internal/ports"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var _ ports.Compiler[bson.D] = (*Compiler)(nil)

type Compiler struct {
	node    ast.Node
	builder ports.ExpressionBuilder[bson.D]
}

func NewCompiler() *Compiler {
	return &Compiler{builder: NewExpressionBuilder()}
}

func (c *Compiler) SetExpression(node ast.Node) {
	c.node = node
}

func (c *Compiler) Compile() (bson.D, error) {
	if c.node == nil {
		return nil, model.NewError(context.Background(), model.ErrCompile, "Compile", "no expression set")
	}

	return c.compile(c.node)
}

func (c *Compiler) compile(node ast.Node) (bson.D, error) {
	switch n := node.(type) {
	case *ast.Condition:
		return c.condition(n)
	case *ast.Not:
		inner, err := c.compile(n.Expression())
		if err != nil {
			return nil, err
		}

		return c.builder.Not(inner), nil
	case *ast.Group:
		return c.group(n)
	default:
		return nil, model.NewError(context.Background(), model.ErrCompile, "Compile", fmt.Sprintf("unsupported node %T", node))
	}
}

func (c *Compiler) condition(cond *ast.Condition) (bson.D, error) {
	field, op, value := cond.Field(), cond.Operator(), cond.Value()

	switch {
	case op.IsComparison():
		return c.builder.Compare(field, op, value)
	case op.IsPattern():
		text, ok := value.(string)
		if !ok {
			return nil, compileError(field, fmt.Sprintf("operator %s requires text", op))
		}

		mode, _ := model.MatchModeOf(op)

		return c.builder.Match(field, mode, text)
	case op == model.OpIn:
		if !model.IsSliceValue(value) {
			return nil, compileError(field, "operator in requires a list")
		}

		return c.builder.In(field, model.SliceValues(value))
	default:
		return nil, compileError(field, fmt.Sprintf("unsupported operator %q", op))
	}
}

func (c *Compiler) group(group *ast.Group) (bson.D, error) {
	if group.Len() == 0 {
		return nil, model.NewError(context.Background(), model.ErrCompile, "Compile", "empty group")
	}

	docs := make([]bson.D, 0, group.Len())

	for _, child := range group.Expressions() {
		doc, err := c.compile(child)
		if err != nil {
			return nil, err
		}

		docs = append(docs, doc)
	}

	if len(docs) == 1 {
		return docs[0], nil
	}

	if group.Operator() == model.Or {
		return c.builder.Or(docs...), nil
	}

	return c.builder.And(docs...), nil
}
