// Package table holds the row-oriented tables produced from scraped bundles
// and the flatten and join steps that build them.
package table

import (
	"fmt"
	"time"
)

// Table is an ordered set of named columns with one []any per row.
// A nil cell is a null value. Non-null cells are string, int, float64 or
// time.Time.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]any
}

// New creates an empty table with the given columns.
func New(columns ...string) *Table {
	t := &Table{
		columns: make([]string, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	copy(t.columns, columns)
	for i, c := range columns {
		t.index[c] = i
	}
	return t
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// HasColumn reports whether name is a column of t.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Append adds a row. It panics if the number of values does not match the
// number of columns.
func (t *Table) Append(values ...any) {
	if len(values) != len(t.columns) {
		panic(fmt.Sprintf("table: row has %d values, want %d", len(values), len(t.columns)))
	}
	row := make([]any, len(values))
	copy(row, values)
	t.rows = append(t.rows, row)
}

// Row returns a copy of the i-th row.
func (t *Table) Row(i int) []any {
	row := make([]any, len(t.rows[i]))
	copy(row, t.rows[i])
	return row
}

// Rows returns a copy of all rows.
func (t *Table) Rows() [][]any {
	out := make([][]any, len(t.rows))
	for i := range t.rows {
		out[i] = t.Row(i)
	}
	return out
}

// Value returns the cell at row i, column name.
func (t *Table) Value(i int, name string) (any, bool) {
	c, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.rows[i][c], true
}

// Column returns a copy of every value in the named column.
func (t *Table) Column(name string) ([]any, bool) {
	c, ok := t.index[name]
	if !ok {
		return nil, false
	}
	out := make([]any, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[c]
	}
	return out, true
}

// Record returns the i-th row keyed by column name.
func (t *Table) Record(i int) map[string]any {
	rec := make(map[string]any, len(t.columns))
	for c, name := range t.columns {
		rec[name] = t.rows[i][c]
	}
	return rec
}

// Clone returns an independent copy of t.
func (t *Table) Clone() *Table {
	out := New(t.columns...)
	out.rows = t.Rows()
	return out
}

// Rename returns a copy of t with columns renamed according to names.
// Columns absent from names keep their name.
func (t *Table) Rename(names map[string]string) *Table {
	cols := t.Columns()
	for i, c := range cols {
		if n, ok := names[c]; ok {
			cols[i] = n
		}
	}
	out := New(cols...)
	out.rows = t.Rows()
	return out
}

// KeyString normalizes a cell to a comparable string so identifiers match
// regardless of whether they were decoded as text or numbers. Null yields
// ok=false.
func KeyString(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case *string:
		if x == nil {
			return "", false
		}
		return *x, true
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano), true
	default:
		return fmt.Sprint(x), true
	}
}
