package snowflake

import "strings"

// ColumnType describes one column's server-reported metadata.
type ColumnType struct {
	Name      string
	Index     int
	Type      string // Snowflake wire type name, e.g. "fixed", "timestamp_tz"
	Nullable  bool
	Length    int64
	Precision int64
	Scale     int64
}

// Row is one decoded result-set row: the raw stringly-typed wire values plus
// shared column metadata. Column lookups are case-insensitive; duplicate
// names resolve to the first occurrence (documented Open Question
// decision, see DESIGN.md).
type Row struct {
	values      []*string
	columnTypes []ColumnType
	columnIndex map[string]int
}

// NewRow builds a Row from raw wire values and shared column metadata. The
// name index is built once per result set and shared by reference across
// every row (Go slices/maps are already reference types, so no explicit
// Arc-equivalent wrapper is needed).
func NewRow(values []*string, columnTypes []ColumnType, columnIndex map[string]int) Row {
	return Row{values: values, columnTypes: columnTypes, columnIndex: columnIndex}
}

// BuildColumnIndex uppercases each name and records the first occurrence's
// index, for first-seen-wins duplicate resolution.
func BuildColumnIndex(columnTypes []ColumnType) map[string]int {
	idx := make(map[string]int, len(columnTypes))
	for _, ct := range columnTypes {
		key := strings.ToUpper(ct.Name)
		if _, exists := idx[key]; !exists {
			idx[key] = ct.Index
		}
	}
	return idx
}

// ColumnNames returns column names ordered by index.
func (r Row) ColumnNames() []string {
	names := make([]string, len(r.columnTypes))
	for _, ct := range r.columnTypes {
		names[ct.Index] = ct.Name
	}
	return names
}

// ColumnTypes returns column metadata ordered by index.
func (r Row) ColumnTypes() []ColumnType {
	out := make([]ColumnType, len(r.columnTypes))
	copy(out, r.columnTypes)
	return out
}

// At decodes the value at a raw positional index into T.
func At[T any](r Row, index int) (T, error) {
	var zero T
	if index < 0 || index >= len(r.values) {
		return zero, newErr(KindDecode, "column index out of range", nil)
	}
	return decodeValue[T](r.values[index], r.columnTypes[index])
}

// Get decodes the named column (case-insensitive) into T.
func Get[T any](r Row, name string) (T, error) {
	var zero T
	idx, ok := r.columnIndex[strings.ToUpper(name)]
	if !ok {
		return zero, newErr(KindDecode, "column not found: "+name, nil)
	}
	return At[T](r, idx)
}
