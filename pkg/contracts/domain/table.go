package domain

import (
	"fmt"
)

// RawTable is a sheet as read from a workbook: the header cells and the data
// rows exactly as stored, before any column naming has been applied.
type RawTable struct {
	Name   string    `json:"name"`
	Sheet  string    `json:"sheet"`
	Header []Value   `json:"header"`
	Rows   [][]Value `json:"rows"`
}

// Width returns the number of columns needed to hold the header and every row.
func (r *RawTable) Width() int {
	w := len(r.Header)
	for _, row := range r.Rows {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// Table is an in-memory rectangular sheet with unique, ordered column names.
// Every row holds exactly one value per column, in column order.
type Table struct {
	Name string

	columns []string
	index   map[string]int
	rows    [][]Value
}

// NewTable creates an empty table. Column names must be unique.
func NewTable(name string, columns []string) (*Table, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c)
		}
		index[c] = i
	}
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Name: name, columns: cols, index: index}, nil
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// ColumnIndex returns the position of a column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// AppendRow adds a row. Short rows are padded with nulls; long rows are rejected.
func (t *Table) AppendRow(values []Value) error {
	if len(values) > len(t.columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(values), len(t.columns))
	}
	row := make([]Value, len(t.columns))
	copy(row, values)
	t.rows = append(t.rows, row)
	return nil
}

// Get returns the value at row i in the named column.
func (t *Table) Get(i int, column string) (Value, bool) {
	c, ok := t.index[column]
	if !ok || i < 0 || i >= len(t.rows) {
		return Value{}, false
	}
	return t.rows[i][c], true
}

// Set stores v at row i in the named column. It reports false when either
// the row or the column does not exist.
func (t *Table) Set(i int, column string, v Value) bool {
	c, ok := t.index[column]
	if !ok || i < 0 || i >= len(t.rows) {
		return false
	}
	t.rows[i][c] = v
	return true
}

// Column returns a copy of every value in the named column.
func (t *Table) Column(name string) ([]Value, bool) {
	c, ok := t.index[name]
	if !ok {
		return nil, false
	}
	out := make([]Value, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[c]
	}
	return out, true
}

// SetColumn overwrites the named column, or appends it when absent.
// values must have one entry per row.
func (t *Table) SetColumn(name string, values []Value) error {
	if len(values) != len(t.rows) {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), len(t.rows))
	}
	if c, ok := t.index[name]; ok {
		for i := range t.rows {
			t.rows[i][c] = values[i]
		}
		return nil
	}
	t.index[name] = len(t.columns)
	t.columns = append(t.columns, name)
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], values[i])
	}
	return nil
}

// Row returns row i as a column name to value mapping.
func (t *Table) Row(i int) map[string]Value {
	if i < 0 || i >= len(t.rows) {
		return nil
	}
	m := make(map[string]Value, len(t.columns))
	for c, name := range t.columns {
		m[name] = t.rows[i][c]
	}
	return m
}

// Records returns the rows in column order. The slices are shared with the
// table and must not be modified by callers.
func (t *Table) Records() [][]Value {
	return t.rows
}
