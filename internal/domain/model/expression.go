package model

// Term is one element of a Group: either an Expression or a Logical token.
type Term interface {
	term()
}

// Expression is a filter written in the tuple DSL. It is sealed to the
// three shapes below so parsers can switch exhaustively.
type Expression interface {
	Term
	expression()
}

// Logical joins two expressions inside a Group.
type Logical string

const (
	And Logical = "and"
	Or  Logical = "or"
)

func (Logical) term() {}

func (l Logical) Valid() bool {
	return l == And || l == Or
}

type (
	// Condition is the [field, operator, value] tuple.
	Condition struct {
		Field    string
		Operator Operator
		Value    any
	}

	// Negation is the ["not", expression] tuple.
	Negation struct {
		Expression Expression
	}

	// Group is a flat sequence alternating expressions and logical tokens,
	// e.g. {cond, And, cond, Or, Not(cond)}.
	Group []Term
)

func (Condition) term()       {}
func (Condition) expression() {}
func (Negation) term()        {}
func (Negation) expression()  {}
func (Group) term()           {}
func (Group) expression()     {}

func Cond(field string, op Operator, value any) Condition {
	return Condition{Field: field, Operator: op, Value: value}
}

func Not(expr Expression) Negation {
	return Negation{Expression: expr}
}

func NewGroup(terms ...Term) Group {
	return Group(terms)
}

// AllOf joins expressions with And.
func AllOf(exprs ...Expression) Group {
	return joinWith(And, exprs)
}

// AnyOf joins expressions with Or.
func AnyOf(exprs ...Expression) Group {
	return joinWith(Or, exprs)
}

func joinWith(op Logical, exprs []Expression) Group {
	group := make(Group, 0, len(exprs)*2)

	for index, expr := range exprs {
		if index > 0 {
			group = append(group, op)
		}

		group = append(group, expr)
	}

	return group
}
