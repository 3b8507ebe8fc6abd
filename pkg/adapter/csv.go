package adapter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// CellKind is the inferred type of a loaded column.
type CellKind int

// Inferred column kinds, narrowest first.
const (
	KindInteger CellKind = iota
	KindFloat
	KindText
)

// ReadDelimited reads a delimited file into a header and data records.
func ReadDelimited(filePath string, opts CSVOptions) ([]string, [][]string, error) {
	f, err := os.Open(filePath) //nolint:gosec // path comes from the data configuration
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", filePath, err)
	}
	defer func() { _ = f.Close() }()
	return ParseDelimited(f, opts)
}

// ParseDelimited parses delimited content from r.
func ParseDelimited(r io.Reader, opts CSVOptions) ([]string, [][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = opts.Comma()
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read records: %w", err)
	}
	return header, records, nil
}

// InferColumnKinds returns the narrowest kind that fits every non-empty
// cell of each column. Empty cells are NULL and do not affect inference.
func InferColumnKinds(width int, records [][]string) []CellKind {
	kinds := make([]CellKind, width)
	seen := make([]bool, width)
	for _, rec := range records {
		for i := 0; i < width && i < len(rec); i++ {
			cell := strings.TrimSpace(rec[i])
			if cell == "" {
				continue
			}
			seen[i] = true
			kinds[i] = max(kinds[i], kindOf(cell))
		}
	}
	for i := range kinds {
		if !seen[i] {
			kinds[i] = KindText
		}
	}
	return kinds
}

func kindOf(cell string) CellKind {
	if _, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return KindInteger
	}
	if _, err := strconv.ParseFloat(cell, 64); err == nil {
		return KindFloat
	}
	return KindText
}

// ConvertCell converts a raw cell to the Go value bound for its column kind.
func ConvertCell(cell string, kind CellKind) any {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return nil
	}
	switch kind {
	case KindInteger:
		if v, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return v
		}
	case KindFloat:
		if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return v
		}
	}
	return cell
}
