package model

import "fmt"

// Operator is a comparison operator accepted in a condition tuple.
type Operator string

const (
	OpEq         Operator = "="
	OpNotEq      Operator = "!="
	OpGt         Operator = ">"
	OpLt         Operator = "<"
	OpGte        Operator = ">="
	OpLte        Operator = "<="
	OpContains   Operator = "contains"
	OpStartsWith Operator = "startsWith"
	OpEndsWith   Operator = "endsWith"
	OpIn         Operator = "in"
)

var operators = []Operator{
	OpEq, OpNotEq, OpGt, OpLt, OpGte, OpLte,
	OpContains, OpStartsWith, OpEndsWith, OpIn,
}

// Operators lists every supported operator in declaration order.
func Operators() []Operator {
	out := make([]Operator, len(operators))
	copy(out, operators)

	return out
}

func ParseOperator(s string) (Operator, error) {
	op := Operator(s)
	if !op.Valid() {
		return "", fmt.Errorf("%w: unknown operator %q", ErrParse, s)
	}

	return op, nil
}

func (o Operator) Valid() bool {
	for _, op := range operators {
		if o == op {
			return true
		}
	}

	return false
}

// IsComparison reports whether o maps directly onto a binary comparison.
func (o Operator) IsComparison() bool {
	switch o {
	case OpEq, OpNotEq, OpGt, OpLt, OpGte, OpLte:
		return true
	default:
		return false
	}
}

// IsPattern reports whether o lowers to a LIKE-style match.
func (o Operator) IsPattern() bool {
	return o == OpContains || o == OpStartsWith || o == OpEndsWith
}

func (o Operator) String() string {
	return string(o)
}

// MatchMode tells where wildcards go around a pattern operand.
type MatchMode int

const (
	MatchContains MatchMode = iota + 1
	MatchPrefix
	MatchSuffix
)

// MatchModeOf maps a pattern operator to its wildcard placement.
func MatchModeOf(o Operator) (MatchMode, bool) {
	switch o {
	case OpContains:
		return MatchContains, true
	case OpStartsWith:
		return MatchPrefix, true
	case OpEndsWith:
		return MatchSuffix, true
	default:
		return 0, false
	}
}

func (m MatchMode) String() string {
	switch m {
	case MatchContains:
		return "contains"
	case MatchPrefix:
		return "prefix"
	case MatchSuffix:
		return "suffix"
	default:
		return "unknown"
	}
}
