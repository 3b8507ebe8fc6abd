package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/runlens/pkg/core"
)

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed this struct in concrete adapter implementations to get standard
// Close, Exec, Query and record loading implementations.
type BaseSQLAdapter struct {
	DB     *sql.DB
	Cfg    core.AdapterConfig
	Logger *slog.Logger
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection")
		}
		return b.DB.Close()
	}
	return nil
}

// Exec executes a SQL statement that doesn't return rows.
func (b *BaseSQLAdapter) Exec(ctx context.Context, sqlStr string, args ...any) error {
	if b.DB == nil {
		return fmt.Errorf("database connection not established")
	}
	_, err := b.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// Query executes a SQL statement that returns rows.
func (b *BaseSQLAdapter) Query(ctx context.Context, sqlStr string, args ...any) (*core.Rows, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	//nolint:rowserrcheck // rows.Err() must be checked by caller after iteration completes
	rows, err := b.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return &core.Rows{Rows: rows}, nil
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

// GetTableMetadataCommon provides a shared implementation of GetTableMetadata.
// Uses information_schema.columns with dialect-appropriate placeholders.
func (b *BaseSQLAdapter) GetTableMetadataCommon(ctx context.Context, table string, d *Dialect) (*core.TableMetadata, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	schema, tableName := ParseQualifiedName(table, d)

	//nolint:gosec // Placeholders come from the dialect and are safe (? or $N)
	query := fmt.Sprintf(`
		SELECT
			column_name,
			data_type,
			is_nullable,
			ordinal_position
		FROM information_schema.columns
		WHERE table_schema = %s AND table_name = %s
		ORDER BY ordinal_position
	`, d.FormatPlaceholder(1), d.FormatPlaceholder(2))

	rows, err := b.DB.QueryContext(ctx, query, schema, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []core.Column
	for rows.Next() {
		var col core.Column
		var nullable string
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &col.Position); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.Nullable = nullable == "YES"
		columns = append(columns, col)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}

	return &core.TableMetadata{
		Schema:   schema,
		Name:     tableName,
		Columns:  columns,
		RowCount: b.countRows(ctx, d.QualifiedTable(table)),
	}, nil
}

// countRows returns the row count, or 0 when the count query fails.
func (b *BaseSQLAdapter) countRows(ctx context.Context, qualified string) int64 {
	var rowCount int64
	//nolint:gosec // Table names are quoted by the dialect
	if err := b.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+qualified).Scan(&rowCount); err != nil {
		return 0
	}
	return rowCount
}

// LoadRecords replaces tableName with a table holding header/records.
// Column types are inferred from the records and mapped through the dialect;
// rows are inserted inside one transaction.
func (b *BaseSQLAdapter) LoadRecords(ctx context.Context, d *Dialect, tableName string, header []string, records [][]string) error {
	if b.DB == nil {
		return fmt.Errorf("database connection not established")
	}
	if len(header) == 0 {
		return fmt.Errorf("no columns to load into %s", tableName)
	}

	kinds := InferColumnKinds(len(header), records)
	qualified := d.QualifiedTable(tableName)

	colDefs := make([]string, len(header))
	names := make([]string, len(header))
	marks := make([]string, len(header))
	for i, h := range header {
		names[i] = d.QuoteIdentifier(h)
		colDefs[i] = names[i] + " " + d.TypeFor(kinds[i])
		marks[i] = d.FormatPlaceholder(i + 1)
	}

	tx, err := b.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin load transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+qualified); err != nil {
		return fmt.Errorf("failed to drop %s: %w", tableName, err)
	}
	//nolint:gosec // identifiers are quoted by the dialect
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", qualified, strings.Join(colDefs, ", "))); err != nil {
		return fmt.Errorf("failed to create %s: %w", tableName, err)
	}

	//nolint:gosec // identifiers are quoted by the dialect
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		qualified, strings.Join(names, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	args := make([]any, len(header))
	for n, rec := range records {
		for i := range header {
			args[i] = nil
			if i < len(rec) {
				args[i] = ConvertCell(rec[i], kinds[i])
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", n+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit load: %w", err)
	}

	if b.Logger != nil {
		b.Logger.Debug("loaded records", slog.String("table", tableName),
			slog.Int("columns", len(header)), slog.Int("rows", len(records)))
	}
	return nil
}
