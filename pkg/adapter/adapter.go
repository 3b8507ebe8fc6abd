// Package adapter provides database adapter interfaces and shared helpers
// for the SQL-backed runlens data sources.
//
// This package contains the public contract that all database adapters must implement.
// Concrete adapter implementations are in pkg/adapters/ subdirectories and
// register themselves through Register in their init() functions.
package adapter

import (
	"context"

	"github.com/leapstack-labs/runlens/pkg/core"
)

// Type aliases so adapter implementations do not need to import pkg/core
// for the common connection and metadata types.
type (
	// Config is an alias for core.AdapterConfig.
	Config = core.AdapterConfig

	// Column is an alias for core.Column.
	Column = core.Column

	// Metadata is an alias for core.TableMetadata.
	Metadata = core.TableMetadata

	// Rows is an alias for core.Rows.
	Rows = core.Rows
)

// CSVOptions controls how a delimited file is loaded.
type CSVOptions struct {
	// Delimiter separates fields; zero means ','.
	Delimiter rune
}

// Comma returns the effective delimiter.
func (o CSVOptions) Comma() rune {
	if o.Delimiter == 0 {
		return ','
	}
	return o.Delimiter
}

// Adapter defines the interface that all database adapters must implement.
// It provides methods for connecting to databases, executing parameterized
// SQL, loading delimited files and retrieving metadata.
//
// Implementations must allow concurrent Query calls once loading is done;
// database/sql pools satisfy this.
type Adapter interface {
	// Connect establishes a connection to the database using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the database connection and releases resources.
	Close() error

	// Exec executes a SQL statement that doesn't return rows.
	Exec(ctx context.Context, sql string, args ...any) error

	// Query executes a SQL statement that returns rows.
	Query(ctx context.Context, sql string, args ...any) (*Rows, error)

	// GetTableMetadata retrieves metadata for a specified table.
	GetTableMetadata(ctx context.Context, table string) (*Metadata, error)

	// LoadCSV loads a delimited file into a table, replacing any previous table
	// of that name. Column types are inferred from the data.
	LoadCSV(ctx context.Context, tableName, filePath string, opts CSVOptions) error

	// Dialect returns the identifier and placeholder conventions of the database.
	Dialect() *Dialect
}
