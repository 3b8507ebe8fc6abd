package testutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/runlens/internal/source"
	"github.com/leapstack-labs/runlens/pkg/adapter"
	"github.com/leapstack-labs/runlens/pkg/adapters/sqlite"
	"github.com/leapstack-labs/runlens/pkg/core"
)

// RunsCSV is a small simulation-runs dataset used across engine tests.
// Result columns exist under the "PA" and "CV" condition prefixes.
const RunsCSV = `Tau,Noise_distribution,Syntethic_Neurons,PA_Identifiable_Dimensions,CV_Identifiable_Dimensions,PA_Score,CV_Score
0.1,Gaussian,10,3,2,0.5,0.25
0.5,Gaussian,20,5,4,0.75,0.5
0.9,Gaussian,30,7,6,1,0.75
0.1,Uniform,10,2,1,0.25,0.125
0.5,Uniform,20,4,3,0.5,0.25
0.9,Uniform,30,6,5,0.75,0.5
`

// WriteFile writes content under a fresh temp directory and returns its path.
func WriteFile(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// NewSQLiteAdapter returns a connected in-memory SQLite adapter with csv
// loaded into table "data". The adapter is closed when the test ends.
func NewSQLiteAdapter(t testing.TB, csv string) adapter.Adapter {
	t.Helper()
	ctx := context.Background()

	adp := sqlite.New(NewTestLogger(t))
	if err := adp.Connect(ctx, core.AdapterConfig{Type: "sqlite", Path: ":memory:"}); err != nil {
		t.Fatalf("connect sqlite: %v", err)
	}
	t.Cleanup(func() { _ = adp.Close() })

	if err := adp.LoadCSV(ctx, "data", WriteFile(t, "data.csv", csv), adapter.CSVOptions{}); err != nil {
		t.Fatalf("load csv: %v", err)
	}
	return adp
}

// NewSQLiteSource returns a SQL source over csv loaded into SQLite.
func NewSQLiteSource(t testing.TB, csv string) *source.SQL {
	t.Helper()
	return source.NewSQL(NewSQLiteAdapter(t, csv), "data", NewTestLogger(t))
}

// ParseTable parses csv into a table, inferring column kinds the way the
// adapters do when loading a file.
func ParseTable(t testing.TB, csv string) *core.Table {
	t.Helper()
	header, records, err := adapter.ParseDelimited(strings.NewReader(csv), adapter.CSVOptions{})
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	kinds := adapter.InferColumnKinds(len(header), records)

	rows := make([][]any, len(records))
	for i, rec := range records {
		row := make([]any, len(header))
		for j := range header {
			if j < len(rec) {
				row[j] = adapter.ConvertCell(rec[j], kinds[j])
			}
		}
		rows[i] = row
	}
	return core.NewTable(header, rows)
}

// NewMemorySource returns an in-memory source over csv.
func NewMemorySource(t testing.TB, csv string) *source.Memory {
	t.Helper()
	return source.NewMemory(ParseTable(t, csv))
}
