package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
)

const (
	rootPath   = "$"
	notKeyword = "not"
)

// DecodeExpression converts the raw tuple form, as produced by decoding JSON
// into any, into a typed Expression.
//
// A 3-element array whose first element is a string other than "not" is a
// condition, so ["and", "=", 1] filters a column named and. When such an
// array leads with "and" or "or" and its second element is not a string
// it cannot be a condition and is read as a group, which the parser then
// rejects for its leading operator. A 2-element array starting with "not"
// is a negation; every other array is a group.
func DecodeExpression(raw any) (Expression, error) {
	return decodeAt(raw, rootPath)
}

// ParseExpressionJSON decodes a JSON document holding a tuple expression.
func ParseExpressionJSON(data []byte) (Expression, error) {
	var raw any

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %w", ErrParse, err)
	}

	return DecodeExpression(normalizeJSON(raw))
}

func decodeAt(raw any, path string) (Expression, error) {
	switch value := raw.(type) {
	case Expression:
		return value, nil
	case nil:
		return nil, parseError(path, "expression is null")
	}

	items, ok := asSlice(raw)
	if !ok {
		return nil, parseError(path, fmt.Sprintf("expected an array, got %T", raw))
	}

	if len(items) == 0 {
		return nil, parseError(path, "empty expression")
	}

	head, headIsString := items[0].(string)

	switch {
	case len(items) == 2 && headIsString && head == notKeyword:
		inner, err := decodeAt(items[1], indexPath(path, 1))
		if err != nil {
			return nil, err
		}

		return Negation{Expression: inner}, nil
	case len(items) == 3 && headIsString && head != notKeyword && (!Logical(head).Valid() || isString(items[1])):
		return decodeCondition(head, items, path)
	}

	group := make(Group, 0, len(items))

	for index, item := range items {
		if token, isString := item.(string); isString {
			if !Logical(token).Valid() {
				return nil, parseError(indexPath(path, index), fmt.Sprintf("unexpected token %q", token))
			}

			group = append(group, Logical(token))

			continue
		}

		expr, err := decodeAt(item, indexPath(path, index))
		if err != nil {
			return nil, err
		}

		group = append(group, expr)
	}

	return group, nil
}

func isString(v any) bool {
	_, ok := v.(string)

	return ok
}

func decodeCondition(field string, items []any, path string) (Expression, error) {
	if field == "" {
		return nil, parseError(indexPath(path, 0), "empty field name")
	}

	rawOp, ok := items[1].(string)
	if !ok {
		return nil, parseError(indexPath(path, 1), fmt.Sprintf("operator must be a string, got %T", items[1]))
	}

	op := Operator(rawOp)
	if !op.Valid() {
		return nil, parseError(indexPath(path, 1), fmt.Sprintf("unknown operator %q", rawOp))
	}

	return Condition{Field: field, Operator: op, Value: items[2]}, nil
}

func asSlice(raw any) ([]any, bool) {
	switch value := raw.(type) {
	case []any:
		return value, true
	case []string:
		out := make([]any, len(value))
		for i, item := range value {
			out[i] = item
		}

		return out, true
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	out := make([]any, rv.Len())
	for i := range rv.Len() {
		out[i] = rv.Index(i).Interface()
	}

	return out, true
}

// normalizeJSON turns json.Number values into int64 when integral and
// float64 otherwise, so they bind as native driver arguments.
func normalizeJSON(raw any) any {
	switch value := raw.(type) {
	case []any:
		out := make([]any, len(value))
		for i, item := range value {
			out[i] = normalizeJSON(item)
		}

		return out
	case map[string]any:
		out := make(map[string]any, len(value))
		for key, item := range value {
			out[key] = normalizeJSON(item)
		}

		return out
	case json.Number:
		if i, err := value.Int64(); err == nil {
			return i
		}

		if f, err := value.Float64(); err == nil && !math.IsInf(f, 0) {
			return f
		}

		return value.String()
	default:
		return value
	}
}

func indexPath(path string, index int) string {
	return fmt.Sprintf("%s[%d]", path, index)
}

func parseError(path, detail string) error {
	return &Error{
		Kind:       ErrParse,
		Method:     "DecodeExpression",
		MessageKey: MessageKey(ErrParse),
		Field:      path,
		Err:        errors.New(detail),
	}
}

// IsSliceValue reports whether v is a slice or array, as required by "in".
func IsSliceValue(v any) bool {
	if v == nil {
		return false
	}

	kind := reflect.TypeOf(v).Kind()
	if kind == reflect.Slice {
		_, isBytes := v.([]byte)

		return !isBytes
	}

	return kind == reflect.Array
}

// SliceValues flattens a slice or array into []any.
func SliceValues(v any) []any {
	if values, ok := v.([]any); ok {
		return values
	}

	items, _ := asSlice(v)

	return items
}
