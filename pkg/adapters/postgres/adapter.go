// Package postgres provides a PostgreSQL database adapter for runlens.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/leapstack-labs/runlens/pkg/adapter"
)

var postgresDialect = &adapter.Dialect{
	Name:          "postgres",
	DefaultSchema: "public",
	Placeholder:   adapter.PlaceholderDollar,
	IntegerType:   "BIGINT",
	FloatType:     "DOUBLE PRECISION",
	TextType:      "TEXT",
}

// Adapter implements the adapter.Adapter interface for PostgreSQL.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new PostgreSQL adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// Dialect returns the PostgreSQL conventions.
func (a *Adapter) Dialect() *adapter.Dialect {
	return postgresDialect
}

// Connect establishes a connection to PostgreSQL.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	dsn := buildPostgresDSN(cfg)

	a.Logger.Debug("connecting to postgres", slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// buildPostgresDSN constructs a key=value PostgreSQL connection string.
func buildPostgresDSN(cfg adapter.Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := "disable"
	if mode, ok := cfg.Options["sslmode"]; ok {
		sslmode = mode
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s", host, port, cfg.Database, sslmode)
	if cfg.Username != "" {
		dsn += " user=" + cfg.Username
	}
	if cfg.Password != "" {
		dsn += " password=" + cfg.Password
	}
	return dsn
}

// GetTableMetadata retrieves metadata for a specified table.
func (a *Adapter) GetTableMetadata(ctx context.Context, table string) (*adapter.Metadata, error) {
	return a.GetTableMetadataCommon(ctx, table, a.Dialect())
}

// LoadCSV replaces tableName with the contents of a delimited file.
// Column types are inferred from the data and rows are streamed with COPY.
func (a *Adapter) LoadCSV(ctx context.Context, tableName, filePath string, opts adapter.CSVOptions) error {
	if a.DB == nil {
		return fmt.Errorf("database connection not established")
	}

	header, records, err := adapter.ReadDelimited(filePath, opts)
	if err != nil {
		return fmt.Errorf("failed to load CSV: %w", err)
	}

	kinds := adapter.InferColumnKinds(len(header), records)
	if err := a.Exec(ctx, "DROP TABLE IF EXISTS "+a.Dialect().QualifiedTable(tableName)); err != nil {
		return fmt.Errorf("failed to drop table: %w", err)
	}
	if err := a.Exec(ctx, createTableSQL(a.Dialect(), tableName, header, kinds)); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	if err := a.copyRows(ctx, tableName, header, convertRecords(records, kinds)); err != nil {
		return fmt.Errorf("failed to copy data: %w", err)
	}

	a.Logger.Debug("loaded csv", slog.String("table", tableName), slog.Int("rows", len(records)))
	return nil
}

// copyRows streams rows through the native pgx COPY protocol.
func (a *Adapter) copyRows(ctx context.Context, tableName string, columns []string, rows [][]any) error {
	conn, err := a.DB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	schema, name := adapter.ParseQualifiedName(tableName, a.Dialect())
	return conn.Raw(func(driverConn any) error {
		pgxConn := driverConn.(*stdlib.Conn).Conn()
		_, err := pgxConn.CopyFrom(ctx, pgx.Identifier{schema, name}, columns, pgx.CopyFromRows(rows))
		return err
	})
}

func createTableSQL(d *adapter.Dialect, tableName string, header []string, kinds []adapter.CellKind) string {
	defs := make([]string, len(header))
	for i, col := range header {
		defs[i] = d.QuoteIdentifier(col) + " " + d.TypeFor(kinds[i])
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", d.QualifiedTable(tableName), strings.Join(defs, ", "))
}

func convertRecords(records [][]string, kinds []adapter.CellKind) [][]any {
	rows := make([][]any, len(records))
	for i, rec := range records {
		row := make([]any, len(kinds))
		for j := range kinds {
			if j < len(rec) {
				row[j] = adapter.ConvertCell(rec[j], kinds[j])
			}
		}
		rows[i] = row
	}
	return rows
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
