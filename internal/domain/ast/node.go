// Package ast holds the normalized tree form of a filter expression.
//
// Nodes are immutable once built: fields are unexported and accessors
// return copies of any slice they hold.
package ast

import "github.com/architeacher/household/internal/domain/model"

type NodeType string

const (
	TypeCondition NodeType = "condition"
	TypeNot       NodeType = "not"
	TypeGroup     NodeType = "group"
)

// Node is one of *Condition, *Not or *Group.
type Node interface {
	Type() NodeType
	node()
}

type Condition struct {
	field    string
	operator model.Operator
	value    any
}

func NewCondition(field string, operator model.Operator, value any) *Condition {
	return &Condition{field: field, operator: operator, value: value}
}

func (*Condition) Type() NodeType { return TypeCondition }
func (*Condition) node()          {}

func (c *Condition) Field() string            { return c.field }
func (c *Condition) Operator() model.Operator { return c.operator }
func (c *Condition) Value() any               { return c.value }

type Not struct {
	expression Node
}

func NewNot(expression Node) *Not {
	return &Not{expression: expression}
}

func (*Not) Type() NodeType { return TypeNot }
func (*Not) node()          {}

func (n *Not) Expression() Node { return n.expression }

// Group applies a single logical operator to one or more expressions.
type Group struct {
	operator    model.Logical
	expressions []Node
}

func NewGroup(operator model.Logical, expressions ...Node) *Group {
	if operator == "" {
		operator = model.And
	}

	nodes := make([]Node, len(expressions))
	copy(nodes, expressions)

	return &Group{operator: operator, expressions: nodes}
}

func (*Group) Type() NodeType { return TypeGroup }
func (*Group) node()          {}

func (g *Group) Operator() model.Logical { return g.operator }
func (g *Group) Len() int                { return len(g.expressions) }

func (g *Group) Expressions() []Node {
	nodes := make([]Node, len(g.expressions))
	copy(nodes, g.expressions)

	return nodes
}

// At returns the i-th child without copying the slice.
func (g *Group) At(i int) Node {
	return g.expressions[i]
}
