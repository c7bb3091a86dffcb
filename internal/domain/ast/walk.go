package ast

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Walk visits node and its descendants depth first, parents before
// children. Returning false from fn skips the children of the visited node.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}

	switch n := node.(type) {
	case *Not:
		Walk(n.expression, fn)
	case *Group:
		for _, child := range n.expressions {
			Walk(child, fn)
		}
	}
}

// Count returns the number of conditions, negations and groups in the tree.
func Count(node Node) int {
	total := 0

	Walk(node, func(Node) bool {
		total++

		return true
	})

	return total
}

// Conditions returns the leaf conditions in left to right order.
func Conditions(node Node) []*Condition {
	var leaves []*Condition

	Walk(node, func(n Node) bool {
		if cond, ok := n.(*Condition); ok {
			leaves = append(leaves, cond)
		}

		return true
	})

	return leaves
}

// String renders node as or(and(a > 1, b = "x"), not(c = true)).
func String(node Node) string {
	var b strings.Builder

	writeNode(&b, node)

	return b.String()
}

func writeNode(b *strings.Builder, node Node) {
	switch n := node.(type) {
	case *Condition:
		fmt.Fprintf(b, "%s %s %s", n.field, n.operator, formatValue(n.value))
	case *Not:
		b.WriteString("not(")
		writeNode(b, n.expression)
		b.WriteString(")")
	case *Group:
		b.WriteString(string(n.operator))
		b.WriteString("(")

		for i, child := range n.expressions {
			if i > 0 {
				b.WriteString(", ")
			}

			writeNode(b, child)
		}

		b.WriteString(")")
	case nil:
		b.WriteString("<nil>")
	}
}

func formatValue(value any) string {
	switch v := value.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (c *Condition) String() string { return String(c) }
func (n *Not) String() string       { return String(n) }
func (g *Group) String() string     { return String(g) }

type (
	conditionView struct {
		Type     NodeType `json:"type" yaml:"type"`
		Field    string   `json:"field" yaml:"field"`
		Operator string   `json:"operator" yaml:"operator"`
		Value    any      `json:"value" yaml:"value"`
	}

	notView struct {
		Type       NodeType `json:"type" yaml:"type"`
		Expression any      `json:"expression" yaml:"expression"`
	}

	groupView struct {
		Type        NodeType `json:"type" yaml:"type"`
		Operator    string   `json:"operator" yaml:"operator"`
		Expressions []any    `json:"expressions" yaml:"expressions"`
	}
)

// View returns a plain tree of structs mirroring node, suitable for any
// encoder.
func View(node Node) any {
	switch n := node.(type) {
	case *Condition:
		return conditionView{Type: TypeCondition, Field: n.field, Operator: string(n.operator), Value: n.value}
	case *Not:
		return notView{Type: TypeNot, Expression: View(n.expression)}
	case *Group:
		children := make([]any, len(n.expressions))
		for i, child := range n.expressions {
			children[i] = View(child)
		}

		return groupView{Type: TypeGroup, Operator: string(n.operator), Expressions: children}
	default:
		return nil
	}
}

func (c *Condition) MarshalJSON() ([]byte, error) { return json.Marshal(View(c)) }
func (n *Not) MarshalJSON() ([]byte, error)       { return json.Marshal(View(n)) }
func (g *Group) MarshalJSON() ([]byte, error)     { return json.Marshal(View(g)) }

func (c *Condition) MarshalYAML() (any, error) { return View(c), nil }
func (n *Not) MarshalYAML() (any, error)       { return View(n), nil }
func (g *Group) MarshalYAML() (any, error)     { return View(g), nil }
