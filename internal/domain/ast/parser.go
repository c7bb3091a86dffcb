package ast

import (
	"context"
	"fmt"

	"github.com/architeacher/household/internal/domain/model"
)

const parseMethod = "Parse"

// Parse normalizes a DSL expression into a tree. Mixed operators at one
// level associate left to right: a and b or c parses as (a and b) or c.
// The input is never mutated and no partial tree is returned on error.
func Parse(expr model.Expression) (Node, error) {
	if expr == nil {
		return nil, parseError("$", "expression is required")
	}

	return parseAt(expr, "$")
}

// ParseRaw decodes the raw tuple form and parses it.
func ParseRaw(raw any) (Node, error) {
	expr, err := model.DecodeExpression(raw)
	if err != nil {
		return nil, err
	}

	return Parse(expr)
}

// ParseJSON parses a JSON encoded tuple expression.
func ParseJSON(data []byte) (Node, error) {
	expr, err := model.ParseExpressionJSON(data)
	if err != nil {
		return nil, model.Wrap(context.Background(), model.ErrParse, parseMethod, err)
	}

	return Parse(expr)
}

func parseAt(expr model.Expression, path string) (Node, error) {
	switch e := expr.(type) {
	case model.Condition:
		return parseCondition(e, path)
	case model.Negation:
		if e.Expression == nil {
			return nil, parseError(path+"[1]", "negation requires an expression")
		}

		inner, err := parseAt(e.Expression, path+"[1]")
		if err != nil {
			return nil, err
		}

		return NewNot(inner), nil
	case model.Group:
		return parseGroup(e, path)
	default:
		return nil, parseError(path, fmt.Sprintf("unsupported expression %T", expr))
	}
}

func parseCondition(cond model.Condition, path string) (Node, error) {
	if cond.Field == "" {
		return nil, parseError(path+"[0]", "field is required")
	}

	if !cond.Operator.Valid() {
		return nil, parseError(path+"[1]", fmt.Sprintf("unknown operator %q", cond.Operator))
	}

	switch {
	case cond.Operator == model.OpIn && !model.IsSliceValue(cond.Value):
		return nil, parseError(path+"[2]", fmt.Sprintf("operator in requires a list, got %T", cond.Value))
	case cond.Operator.IsPattern():
		if _, ok := cond.Value.(string); !ok {
			return nil, parseError(path+"[2]", fmt.Sprintf("operator %s requires text, got %T", cond.Operator, cond.Value))
		}
	}

	return NewCondition(cond.Field, cond.Operator, cond.Value), nil
}

// groupParser holds the scan state of a single group.
type groupParser struct {
	path      string
	result    []Node
	buffer    []Node
	currentOp model.Logical
}

func parseGroup(group model.Group, path string) (Node, error) {
	if len(group) == 0 {
		return nil, parseError(path, "empty group")
	}

	p := &groupParser{path: path}

	for index, term := range group {
		termPath := fmt.Sprintf("%s[%d]", path, index)

		switch t := term.(type) {
		case model.Logical:
			if err := p.operator(t, termPath); err != nil {
				return nil, err
			}
		case model.Expression:
			node, err := parseAt(t, termPath)
			if err != nil {
				return nil, err
			}

			p.buffer = append(p.buffer, node)
		default:
			return nil, parseError(termPath, fmt.Sprintf("unexpected term %T", term))
		}
	}

	if _, dangling := group[len(group)-1].(model.Logical); dangling {
		return nil, parseError(fmt.Sprintf("%s[%d]", path, len(group)-1), "dangling logical operator")
	}

	p.flush()

	return NewGroup(p.op(), p.result...), nil
}

func (p *groupParser) operator(token model.Logical, path string) error {
	if !token.Valid() {
		return parseError(path, fmt.Sprintf("unknown logical operator %q", token))
	}

	if len(p.buffer) == 0 {
		if len(p.result) == 0 {
			return parseError(path, fmt.Sprintf("group cannot start with %q", token))
		}

		return parseError(path, fmt.Sprintf("consecutive logical operator %q", token))
	}

	p.flush()

	if p.currentOp != "" && token != p.currentOp && len(p.result) > 1 {
		p.result = []Node{NewGroup(p.currentOp, p.result...)}
	}

	p.currentOp = token

	return nil
}

// flush moves pending operands into the result. Adjacent operands with no
// operator between them become an implicit subgroup under the current
// operator.
func (p *groupParser) flush() {
	switch len(p.buffer) {
	case 0:
		return
	case 1:
		p.result = append(p.result, p.buffer[0])
	default:
		p.result = append(p.result, NewGroup(p.op(), p.buffer...))
	}

	p.buffer = nil
}

func (p *groupParser) op() model.Logical {
	if p.currentOp == "" {
		return model.And
	}

	return p.currentOp
}

func parseError(path, detail string) error {
	return model.NewError(context.Background(), model.ErrParse, parseMethod, detail, model.WithField(path))
}
