package source

import (
	"context"

	"github.com/leapstack-labs/runlens/internal/query"
	"github.com/leapstack-labs/runlens/pkg/core"
)

// Memory serves an already materialized table. Predicates are evaluated in
// a single pass over the rows.
type Memory struct {
	table *core.Table
}

// NewMemory returns a source over table. The table must not be modified
// afterwards.
func NewMemory(table *core.Table) *Memory {
	return &Memory{table: table}
}

// Schema returns the table's columns.
func (m *Memory) Schema(_ context.Context) ([]string, error) {
	return m.table.Columns(), nil
}

// DistinctValues returns the distinct values of column in row order.
func (m *Memory) DistinctValues(_ context.Context, column string) ([]any, error) {
	values, ok := m.table.Column(column)
	if !ok {
		return nil, &core.ColumnError{Err: core.ErrUnknownColumn, Column: column}
	}
	return dedupe(values), nil
}

// FilteredRows returns the rows matching pred as a new table.
func (m *Memory) FilteredRows(_ context.Context, pred *query.Predicate) (*core.Table, error) {
	for _, col := range pred.Columns() {
		if !m.table.HasColumn(col) {
			return nil, &core.ColumnError{Err: core.ErrMissingColumn, Column: col, Context: "filter"}
		}
	}

	var rows [][]any
	for i := 0; i < m.table.Len(); i++ {
		lookup := func(col string) (any, bool) { return m.table.Value(i, col) }
		if pred.Match(lookup) {
			rows = append(rows, m.table.Row(i))
		}
	}
	return core.NewTable(m.table.Columns(), rows), nil
}

var _ Source = (*Memory)(nil)
