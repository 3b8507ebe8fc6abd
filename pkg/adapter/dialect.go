package adapter

import (
	"fmt"
	"strings"
)

// PlaceholderStyle is the bind parameter syntax of a database.
type PlaceholderStyle int

const (
	// PlaceholderQuestion renders every parameter as "?".
	PlaceholderQuestion PlaceholderStyle = iota
	// PlaceholderDollar renders parameters as "$1", "$2", ...
	PlaceholderDollar
)

// Dialect captures the SQL conventions the query compiler output needs.
type Dialect struct {
	Name          string
	DefaultSchema string
	Placeholder   PlaceholderStyle

	// Column types used when a loaded file's schema is inferred.
	IntegerType string
	FloatType   string
	TextType    string
}

// TypeFor maps an inferred column kind to the dialect's column type.
func (d *Dialect) TypeFor(kind CellKind) string {
	switch kind {
	case KindInteger:
		return d.IntegerType
	case KindFloat:
		return d.FloatType
	}
	return d.TextType
}

// FormatPlaceholder returns the bind marker for the 1-based parameter index.
func (d *Dialect) FormatPlaceholder(index int) string {
	if d.Placeholder == PlaceholderDollar {
		return fmt.Sprintf("$%d", index)
	}
	return "?"
}

// QuoteIdentifier wraps name in double quotes, escaping embedded quotes.
// Column names in simulation tables routinely contain characters such as
// '%' or start with digits, so identifiers are always quoted.
func (d *Dialect) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QualifiedTable quotes a table reference, splitting an optional schema prefix.
func (d *Dialect) QualifiedTable(table string) string {
	schema, name := ParseQualifiedName(table, d)
	if schema == "" {
		return d.QuoteIdentifier(name)
	}
	return d.QuoteIdentifier(schema) + "." + d.QuoteIdentifier(name)
}

// ParseQualifiedName splits a table reference into schema and name.
// Uses the dialect's default schema if not specified.
func ParseQualifiedName(table string, d *Dialect) (schema, name string) {
	if parts := strings.SplitN(table, ".", 2); len(parts) == 2 {
		return parts[0], parts[1]
	}
	return d.DefaultSchema, table
}
