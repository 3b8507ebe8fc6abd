package source

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/leapstack-labs/runlens/internal/query"
	"github.com/leapstack-labs/runlens/pkg/adapter"
	"github.com/leapstack-labs/runlens/pkg/core"
)

// SQL reads a single table through a connected adapter.
type SQL struct {
	adapter adapter.Adapter
	table   string
	logger  *slog.Logger

	schemaOnce sync.Once
	schema     []string
	schemaErr  error
}

// NewSQL returns a source over table. The adapter must already be connected
// and the table loaded.
func NewSQL(adp adapter.Adapter, table string, logger *slog.Logger) *SQL {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQL{adapter: adp, table: table, logger: logger}
}

// Schema returns the table's columns. The result is read once and reused,
// since the table is never modified after loading.
func (s *SQL) Schema(ctx context.Context) ([]string, error) {
	s.schemaOnce.Do(func() {
		meta, err := s.adapter.GetTableMetadata(ctx, s.table)
		if err != nil {
			s.schemaErr = fmt.Errorf("failed to read schema of %s: %w", s.table, err)
			return
		}
		s.schema = meta.ColumnNames()
	})
	return s.schema, s.schemaErr
}

// DistinctValues returns the distinct values of column.
func (s *SQL) DistinctValues(ctx context.Context, column string) ([]any, error) {
	schema, err := s.Schema(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkColumn(schema, column); err != nil {
		return nil, err
	}

	d := s.adapter.Dialect()
	//nolint:gosec // identifiers are quoted by the dialect
	stmt := fmt.Sprintf("SELECT DISTINCT %s FROM %s", d.QuoteIdentifier(column), d.QualifiedTable(s.table))

	tbl, err := s.scan(ctx, stmt)
	if err != nil {
		return nil, err
	}
	values, _ := tbl.Column(column)
	return dedupe(values), nil
}

// FilteredRows returns the rows matching pred, with every column.
func (s *SQL) FilteredRows(ctx context.Context, pred *query.Predicate) (*core.Table, error) {
	d := s.adapter.Dialect()
	stmt := "SELECT * FROM " + d.QualifiedTable(s.table)
	if where := pred.Render(d.QuoteIdentifier, d.FormatPlaceholder); where != "" {
		stmt += " WHERE " + where
	}

	s.logger.Debug("querying rows", slog.String("sql", stmt), slog.Int("params", len(pred.Params())))
	return s.scan(ctx, stmt, pred.Params()...)
}

func (s *SQL) scan(ctx context.Context, stmt string, args ...any) (*core.Table, error) {
	rows, err := s.adapter.Query(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	var data [][]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range values {
			values[i] = core.NormalizeValue(v)
		}
		data = append(data, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return core.NewTable(columns, data), nil
}

var _ Source = (*SQL)(nil)
