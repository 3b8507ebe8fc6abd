// Package source defines the tabular data source the exploration engine
// reads from, with an adapter-backed SQL implementation and an in-memory one.
//
// A Source is loaded once and never written afterwards. Implementations are
// safe for concurrent readers only when the backing store is; callers that
// share one Source across sessions must ensure that.
package source

import (
	"context"
	"slices"

	"github.com/leapstack-labs/runlens/internal/query"
	"github.com/leapstack-labs/runlens/pkg/core"
)

// Source is a read-only, queryable table of rows.
type Source interface {
	// Schema returns the column names in table order.
	Schema(ctx context.Context) ([]string, error)

	// DistinctValues returns the distinct values of column in the order the
	// source yields them. Unknown columns fail with core.ErrUnknownColumn.
	DistinctValues(ctx context.Context, column string) ([]any, error)

	// FilteredRows returns every row matching pred.
	FilteredRows(ctx context.Context, pred *query.Predicate) (*core.Table, error)
}

// checkColumn returns a ColumnError when column is not in schema.
func checkColumn(schema []string, column string) error {
	if slices.Contains(schema, column) {
		return nil
	}
	return &core.ColumnError{Err: core.ErrUnknownColumn, Column: column}
}

// dedupe drops repeated values while keeping first-appearance order.
func dedupe(values []any) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		if !slices.ContainsFunc(out, func(seen any) bool { return core.ValuesEqual(seen, v) }) {
			out = append(out, v)
		}
	}
	return out
}
