package docquery_test

import (
	"testing"

	"github.com/architeacher/household/internal/adapters/docquery"
	"github.com/architeacher/household/internal/domain/ast"
	"github.com/architeacher/household/internal/domain/model"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func compile(t *testing.T, node ast.Node) bson.D {
	t.Helper()

	compiler := docquery.NewCompiler()
	compiler.SetExpression(node)

	doc, err := compiler.Compile()
	require.NoError(t, err)

	return doc
}

func TestCompiler_CanonicalExample(t *testing.T) {
	t.Parallel()

	node, err := ast.ParseRaw([]any{
		[]any{"edad", ">", 25},
		"and",
		[]any{"sexo", "=", "F"},
		"or",
		[]any{"not", []any{"activo", "=", true}},
	})
	require.NoError(t, err)

	doc := compile(t, node)

	encoded, err := bson.MarshalExtJSON(doc, false, false)
	require.NoError(t, err)
	require.JSONEq(t, `{"$or": [
		{"$and": [{"edad": {"$gt": 25}}, {"sexo": {"$eq": "F"}}]},
		{"$nor": [{"activo": {"$eq": true}}]}
	]}`, string(encoded))
}

func TestCompiler_Operators(t *testing.T) {
	t.Parallel()

	cases := []struct {
		op       model.Operator
		value    any
		expected bson.D
	}{
		{op: model.OpEq, value: "rent", expected: bson.D{{Key: "category", Value: bson.D{{Key: "$eq", Value: "rent"}}}}},
		{op: model.OpNotEq, value: "rent", expected: bson.D{{Key: "category", Value: bson.D{{Key: "$ne", Value: "rent"}}}}},
		{op: model.OpGt, value: 5, expected: bson.D{{Key: "category", Value: bson.D{{Key: "$gt", Value: 5}}}}},
		{op: model.OpLt, value: 5, expected: bson.D{{Key: "category", Value: bson.D{{Key: "$lt", Value: 5}}}}},
		{op: model.OpGte, value: 5, expected: bson.D{{Key: "category", Value: bson.D{{Key: "$gte", Value: 5}}}}},
		{op: model.OpLte, value: 5, expected: bson.D{{Key: "category", Value: bson.D{{Key: "$lte", Value: 5}}}}},
		{op: model.OpContains, value: "a.b", expected: bson.D{{Key: "category", Value: bson.D{{Key: "$regex", Value: `a\.b`}}}}},
		{op: model.OpStartsWith, value: "(x", expected: bson.D{{Key: "category", Value: bson.D{{Key: "$regex", Value: `^\(x`}}}}},
		{op: model.OpEndsWith, value: "x+", expected: bson.D{{Key: "category", Value: bson.D{{Key: "$regex", Value: `x\+$`}}}}},
		{op: model.OpIn, value: []string{"a", "b"}, expected: bson.D{{Key: "category", Value: bson.D{{Key: "$in", Value: bson.A{"a", "b"}}}}}},
	}

	for _, tc := range cases {
		t.Run(tc.op.String(), func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.expected, compile(t, ast.NewCondition("category", tc.op, tc.value)))
		})
	}
}

func TestCompiler_Groups(t *testing.T) {
	t.Parallel()

	a := ast.NewCondition("a", model.OpEq, 1)
	b := ast.NewCondition("b", model.OpEq, 2)

	eqA := bson.D{{Key: "a", Value: bson.D{{Key: "$eq", Value: 1}}}}
	eqB := bson.D{{Key: "b", Value: bson.D{{Key: "$eq", Value: 2}}}}

	require.Equal(t, eqA, compile(t, ast.NewGroup(model.Or, a)))
	require.Equal(t, bson.D{{Key: "$and", Value: bson.A{eqA, eqB}}}, compile(t, ast.NewGroup(model.And, a, b)))
	require.Equal(t, bson.D{{Key: "$nor", Value: bson.A{bson.D{{Key: "$or", Value: bson.A{eqA, eqB}}}}}},
		compile(t, ast.NewNot(ast.NewGroup(model.Or, a, b))))
}

func TestCompiler_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		node ast.Node
	}{
		{name: "no expression"},
		{name: "operator field", node: ast.NewCondition("$where", model.OpEq, 1)},
		{name: "list comparison", node: ast.NewCondition("a", model.OpEq, []any{1})},
		{name: "pattern on number", node: ast.NewCondition("a", model.OpStartsWith, 1)},
		{name: "in without list", node: ast.NewCondition("a", model.OpIn, 1)},
		{name: "empty group", node: ast.NewGroup(model.And)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			compiler := docquery.NewCompiler()
			if tc.node != nil {
				compiler.SetExpression(tc.node)
			}

			_, err := compiler.Compile()
			require.ErrorIs(t, err, model.ErrCompile)
		})
	}
}
