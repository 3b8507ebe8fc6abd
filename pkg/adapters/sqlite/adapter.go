// Package sqlite provides an embedded SQLite database adapter for runlens.
//
// SQLite is the default target: the dataset is loaded once into an
// in-memory database and queried read-only for the rest of the process.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/runlens/pkg/adapter"

	_ "modernc.org/sqlite" // sqlite driver
)

var sqliteDialect = &adapter.Dialect{
	Name:          "sqlite",
	DefaultSchema: "main",
	Placeholder:   adapter.PlaceholderQuestion,
	IntegerType:   "INTEGER",
	FloatType:     "REAL",
	TextType:      "TEXT",
}

// Adapter implements the adapter.Adapter interface for SQLite.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new SQLite adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// Dialect returns the SQLite conventions.
func (a *Adapter) Dialect() *adapter.Dialect {
	return sqliteDialect
}

// Connect opens the database. Use ":memory:" (or an empty path) for an
// in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	a.Logger.Debug("connecting to sqlite", slog.String("path", path))

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite connection: %w", err)
	}

	// Every pooled connection to ":memory:" would be a separate, empty
	// database; pin the pool to one connection.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// GetTableMetadata retrieves column metadata through PRAGMA table_info.
func (a *Adapter) GetTableMetadata(ctx context.Context, table string) (*adapter.Metadata, error) {
	if a.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	d := a.Dialect()
	schema, name := adapter.ParseQualifiedName(table, d)

	//nolint:gosec // identifiers are quoted by the dialect
	rows, err := a.DB.QueryContext(ctx, fmt.Sprintf("PRAGMA %s.table_info(%s)",
		d.QuoteIdentifier(schema), d.QuoteIdentifier(name)))
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []adapter.Column
	for rows.Next() {
		var (
			cid     int
			col     adapter.Column
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.Nullable = notNull == 0
		col.Position = cid + 1
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}

	var rowCount int64
	//nolint:gosec // identifiers are quoted by the dialect
	if err := a.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+d.QualifiedTable(table)).Scan(&rowCount); err != nil {
		rowCount = 0
	}

	return &adapter.Metadata{
		Schema:   schema,
		Name:     name,
		Columns:  columns,
		RowCount: rowCount,
	}, nil
}

// LoadCSV loads a delimited file into tableName with inferred column types.
func (a *Adapter) LoadCSV(ctx context.Context, tableName, filePath string, opts adapter.CSVOptions) error {
	header, records, err := adapter.ReadDelimited(filePath, opts)
	if err != nil {
		return fmt.Errorf("failed to load CSV: %w", err)
	}
	return a.LoadRecords(ctx, a.Dialect(), tableName, header, records)
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
