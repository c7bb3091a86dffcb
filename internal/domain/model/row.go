package model

import (
	"maps"
	"slices"
)

// Row is a single result row keyed by column name.
type Row map[string]any

// Record holds column values for Insert and Update.
type Record map[string]any

// Columns returns the record keys in sorted order.
func (r Record) Columns() []string {
	return slices.Sorted(maps.Keys(r))
}

// Values returns the record values in Columns order.
func (r Record) Values() []any {
	columns := r.Columns()
	values := make([]any, len(columns))

	for i, column := range columns {
		values[i] = r[column]
	}

	return values
}
