package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/runlens/pkg/adapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func connect(t *testing.T) *Adapter {
	t.Helper()
	adp := New(nil)
	require.NoError(t, adp.Connect(context.Background(), adapter.Config{Path: ":memory:"}))
	t.Cleanup(func() { _ = adp.Close() })
	return adp
}

func TestAdapter_Connect(t *testing.T) {
	t.Run("in-memory", func(t *testing.T) {
		adp := connect(t)
		assert.True(t, adp.IsConnected())
	})

	t.Run("file-based", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "runs.db")
		adp := New(nil)
		require.NoError(t, adp.Connect(context.Background(), adapter.Config{Path: path}))
		defer func() { _ = adp.Close() }()

		require.NoError(t, adp.Exec(context.Background(), "CREATE TABLE t (x INTEGER)"))
		_, err := os.Stat(path)
		assert.NoError(t, err, "database file should exist")
	})
}

func TestAdapter_NotConnected(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)

	_, err := adp.GetTableMetadata(ctx, "data")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database connection not established")

	err = adp.Exec(ctx, "SELECT 1")
	require.Error(t, err)
}

func TestAdapter_LoadCSV(t *testing.T) {
	ctx := context.Background()
	adp := connect(t)

	path := writeCSV(t, "runs.csv", "Tau,Noise_distribution,Syntethic_Neurons,80%_Identifiable_Dimensions\n"+
		"0.1,Gaussian,10,3.5\n"+
		"0.5,Uniform,20,\n"+
		"0.9,Gaussian,30,4\n")

	require.NoError(t, adp.LoadCSV(ctx, "data", path, adapter.CSVOptions{}))

	meta, err := adp.GetTableMetadata(ctx, "data")
	require.NoError(t, err)
	assert.Equal(t, []string{"Tau", "Noise_distribution", "Syntethic_Neurons", "80%_Identifiable_Dimensions"}, meta.ColumnNames())
	assert.Equal(t, "REAL", meta.Columns[0].Type)
	assert.Equal(t, "TEXT", meta.Columns[1].Type)
	assert.Equal(t, "INTEGER", meta.Columns[2].Type)
	assert.Equal(t, int64(3), meta.RowCount)

	rows, err := adp.Query(ctx, `SELECT "Syntethic_Neurons" FROM "data" WHERE "Tau" BETWEEN ? AND ?`, 0.1, 0.5)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	var got []int64
	for rows.Next() {
		var n int64
		require.NoError(t, rows.Scan(&n))
		got = append(got, n)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []int64{10, 20}, got)
}

func TestAdapter_LoadCSV_ReplacesTable(t *testing.T) {
	ctx := context.Background()
	adp := connect(t)

	require.NoError(t, adp.LoadCSV(ctx, "data", writeCSV(t, "a.csv", "a\n1\n2\n"), adapter.CSVOptions{}))
	require.NoError(t, adp.LoadCSV(ctx, "data", writeCSV(t, "b.tsv", "b\tc\nx\ty\n"), adapter.CSVOptions{Delimiter: '\t'}))

	meta, err := adp.GetTableMetadata(ctx, "data")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, meta.ColumnNames())
	assert.Equal(t, int64(1), meta.RowCount)
}

func TestAdapter_GetTableMetadata_Missing(t *testing.T) {
	adp := connect(t)
	_, err := adp.GetTableMetadata(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table nope not found")
}

func TestRegistered(t *testing.T) {
	assert.True(t, adapter.IsRegistered("sqlite"))
}
