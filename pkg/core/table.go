package core

import "fmt"

// Table is an immutable, ordered set of rows with named columns.
// Tables returned by a data source are never modified by the engine.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]any
}

// NewTable builds a table. Rows are not copied; the caller must not
// modify them afterwards.
func NewTable(columns []string, rows [][]any) *Table {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; !dup {
			index[c] = i
		}
	}
	return &Table{columns: columns, index: index, rows: rows}
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// HasColumn reports whether the table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Row returns a copy of row i.
func (t *Table) Row(i int) []any {
	out := make([]any, len(t.rows[i]))
	copy(out, t.rows[i])
	return out
}

// Value returns the cell at row i in the named column.
func (t *Table) Value(i int, column string) (any, bool) {
	j, ok := t.index[column]
	if !ok || i < 0 || i >= len(t.rows) {
		return nil, false
	}
	return t.rows[i][j], true
}

// Column returns a copy of all values in the named column.
func (t *Table) Column(name string) ([]any, bool) {
	j, ok := t.index[name]
	if !ok {
		return nil, false
	}
	out := make([]any, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[j]
	}
	return out, true
}

// Floats returns the named column converted to float64.
// NULL and non-numeric cells are reported as ErrNonNumeric.
func (t *Table) Floats(name string) ([]float64, error) {
	j, ok := t.index[name]
	if !ok {
		return nil, &ColumnError{Err: ErrMissingResultColumn, Column: name}
	}
	out := make([]float64, len(t.rows))
	for i, r := range t.rows {
		f, ok := ToFloat(r[j])
		if !ok {
			return nil, fmt.Errorf("%w: column %q row %d holds %s", ErrNonNumeric, name, i+1, FormatValue(r[j]))
		}
		out[i] = f
	}
	return out, nil
}

// Records returns the rows as column-keyed maps, convenient for JSON output.
func (t *Table) Records() []map[string]any {
	out := make([]map[string]any, len(t.rows))
	for i, r := range t.rows {
		rec := make(map[string]any, len(t.columns))
		for j, c := range t.columns {
			rec[c] = r[j]
		}
		out[i] = rec
	}
	return out
}
