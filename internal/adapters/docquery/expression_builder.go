package docquery

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/architeacher/household/internal/domain/model"
	"github.com/architeacher/household/internal/ports"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var _ ports.ExpressionBuilder[bson.D] = ExpressionBuilder{}

var comparisonOperators = map[model.Operator]string{
	model.OpEq:    "$eq",
	model.OpNotEq: "$ne",
	model.OpGt:    "$gt",
	model.OpLt:    "$lt",
	model.OpGte:   "$gte",
	model.OpLte:   "$lte",
}

// ExpressionBuilder lowers conditions to MongoDB query documents.
type ExpressionBuilder struct{}

func NewExpressionBuilder() ExpressionBuilder {
	return ExpressionBuilder{}
}

func (ExpressionBuilder) Compare(field string, op model.Operator, value any) (bson.D, error) {
	if err := validateField(field); err != nil {
		return nil, err
	}

	operator, ok := comparisonOperators[op]
	if !ok {
		return nil, compileError(field, fmt.Sprintf("operator %s is not a comparison", op))
	}

	if model.IsSliceValue(value) {
		return nil, compileError(field, fmt.Sprintf("operator %s does not accept a list", op))
	}

	return bson.D{{Key: field, Value: bson.D{{Key: operator, Value: value}}}}, nil
}

func (ExpressionBuilder) Match(field string, mode model.MatchMode, text string) (bson.D, error) {
	if err := validateField(field); err != nil {
		return nil, err
	}

	pattern := regexp.QuoteMeta(text)

	switch mode {
	case model.MatchContains:
	case model.MatchPrefix:
		pattern = "^" + pattern
	case model.MatchSuffix:
		pattern += "$"
	default:
		return nil, compileError(field, fmt.Sprintf("unknown match mode %s", mode))
	}

	return bson.D{{Key: field, Value: bson.D{{Key: "$regex", Value: pattern}}}}, nil
}

func (ExpressionBuilder) In(field string, values []any) (bson.D, error) {
	if err := validateField(field); err != nil {
		return nil, err
	}

	return bson.D{{Key: field, Value: bson.D{{Key: "$in", Value: bson.A(values)}}}}, nil
}

func (ExpressionBuilder) Not(expr bson.D) bson.D {
	return bson.D{{Key: "$nor", Value: bson.A{expr}}}
}

func (ExpressionBuilder) And(exprs ...bson.D) bson.D {
	return bson.D{{Key: "$and", Value: documents(exprs)}}
}

func (ExpressionBuilder) Or(exprs ...bson.D) bson.D {
	return bson.D{{Key: "$or", Value: documents(exprs)}}
}

func documents(exprs []bson.D) bson.A {
	docs := make(bson.A, 0, len(exprs))
	for _, expr := range exprs {
		docs = append(docs, expr)
	}

	return docs
}

func validateField(field string) error {
	if field == "" || strings.HasPrefix(field, "$") || strings.ContainsRune(field, 0) {
		return compileError(field, fmt.Sprintf("invalid document field %q", field))
	}

	return nil
}

func compileError(field, detail string) error {
	return model.NewError(context.Background(), model.ErrCompile, "Compile", detail, model.WithField(field))
}
