package model

import "strings"

type JoinKind string

const (
	JoinInner JoinKind = "inner"
	JoinLeft  JoinKind = "left"
	JoinRight JoinKind = "right"
)

func (k JoinKind) Valid() bool {
	switch k {
	case JoinInner, JoinLeft, JoinRight:
		return true
	default:
		return false
	}
}

// OrDefault returns k, or JoinInner when k is empty.
func (k JoinKind) OrDefault() JoinKind {
	if k == "" {
		return JoinInner
	}

	return JoinKind(strings.ToLower(string(k)))
}

// JoinCondition relates a field of the bound table (Left) to a field of the
// included table (Right).
type JoinCondition struct {
	Left     string
	Operator Operator
	Right    string
}

func On(left string, op Operator, right string) *JoinCondition {
	return &JoinCondition{Left: left, Operator: op, Right: right}
}

// IncludeParams describes a related table joined into a select.
type IncludeParams struct {
	On     *JoinCondition
	Filter Expression
	Kind   JoinKind
}
