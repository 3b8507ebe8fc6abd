package duckdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/runlens/pkg/adapter"
	"github.com/leapstack-labs/runlens/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T, params map[string]any) *Adapter {
	t.Helper()
	adp := New(nil)
	require.NoError(t, adp.Connect(context.Background(), core.AdapterConfig{Path: ":memory:", Params: params}))
	t.Cleanup(func() { _ = adp.Close() })
	return adp
}

func TestAdapter_Connect(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "in-memory", path: ":memory:"},
		{name: "empty path defaults to memory", path: ""},
		{name: "file-based", path: filepath.Join(t.TempDir(), "runs.duckdb")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adp := New(nil)
			require.NoError(t, adp.Connect(context.Background(), core.AdapterConfig{Path: tt.path}))
			defer func() { _ = adp.Close() }()
			assert.True(t, adp.IsConnected())
		})
	}
}

func TestAdapter_NotConnected(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)

	require.Error(t, adp.Exec(ctx, "SELECT 1"))

	_, err := adp.Query(ctx, "SELECT 1")
	require.Error(t, err)

	err = adp.LoadCSV(ctx, "data", "runs.csv", adapter.CSVOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database connection not established")

	_, err = adp.GetTableMetadata(ctx, "data")
	require.Error(t, err)
}

func TestAdapter_Close_Idempotent(t *testing.T) {
	adp := New(nil)
	assert.NoError(t, adp.Close(), "closing an unconnected adapter is a no-op")
}

func TestAdapter_LoadCSV(t *testing.T) {
	ctx := context.Background()
	adp := connect(t, nil)

	csvPath := filepath.Join(t.TempDir(), "runs.tsv")
	content := "Tau\tNoise_distribution\tSyntethic_Neurons\n" +
		"0.1\tGaussian\t10\n" +
		"0.5\tUniform\t20\n" +
		"0.9\tGaussian\t30\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(content), 0o600))

	require.NoError(t, adp.LoadCSV(ctx, "data", csvPath, adapter.CSVOptions{Delimiter: '\t'}))

	meta, err := adp.GetTableMetadata(ctx, "data")
	require.NoError(t, err)
	assert.Equal(t, []string{"Tau", "Noise_distribution", "Syntethic_Neurons"}, meta.ColumnNames())
	assert.Equal(t, "main", meta.Schema)
	assert.Equal(t, int64(3), meta.RowCount)

	rows, err := adp.Query(ctx, `SELECT COUNT(*) FROM "data" WHERE "Noise_distribution" = ?`, "Gaussian")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	var count int
	require.True(t, rows.Next())
	require.NoError(t, rows.Scan(&count))
	assert.Equal(t, 2, count)
}

func TestAdapter_GetTableMetadata_Missing(t *testing.T) {
	adp := connect(t, nil)
	_, err := adp.GetTableMetadata(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestAdapter_Dialect(t *testing.T) {
	d := New(nil).Dialect()
	assert.Equal(t, "duckdb", d.Name)
	assert.Equal(t, "?", d.FormatPlaceholder(3))
	assert.Equal(t, `"main"."data"`, d.QualifiedTable("data"))
}

func TestBuildCreateSecretSQL(t *testing.T) {
	tests := []struct {
		name string
		cfg  SecretConfig
		want string
	}{
		{
			name: "type only",
			cfg:  SecretConfig{Type: "s3"},
			want: "CREATE SECRET (\n    TYPE s3\n)",
		},
		{
			name: "credential chain with region",
			cfg:  SecretConfig{Type: "s3", Provider: "credential_chain", Region: "us-west-2"},
			want: "CREATE SECRET (\n    TYPE s3,\n    PROVIDER credential_chain,\n    REGION 'us-west-2'\n)",
		},
		{
			name: "single scope string",
			cfg:  SecretConfig{Type: "s3", Scope: "s3://runs"},
			want: "CREATE SECRET (\n    TYPE s3,\n    SCOPE 's3://runs'\n)",
		},
		{
			name: "scope list",
			cfg:  SecretConfig{Type: "s3", Scope: []any{"s3://a", "s3://b"}},
			want: "CREATE SECRET (\n    TYPE s3,\n    SCOPE ('s3://a', 's3://b')\n)",
		},
		{
			name: "s3 compatible endpoint",
			cfg: SecretConfig{
				Type:     "s3",
				Provider: "config",
				KeyID:    "minioadmin",
				Secret:   "it's",
				Endpoint: "localhost:9000",
				URLStyle: "path",
				UseSSL:   boolPtr(false),
			},
			want: "CREATE SECRET (\n    TYPE s3,\n    PROVIDER config,\n    KEY_ID 'minioadmin',\n" +
				"    SECRET 'it''s',\n    ENDPOINT 'localhost:9000',\n    URL_STYLE 'path',\n    USE_SSL false\n)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildCreateSecretSQL(tt.cfg))
		})
	}
}

func TestConnect_WithSettings(t *testing.T) {
	adp := connect(t, map[string]any{
		"settings": map[string]any{"threads": 2},
	})

	rows, err := adp.Query(context.Background(), "SELECT current_setting('threads')")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()
	require.True(t, rows.Next())

	var threads any
	require.NoError(t, rows.Scan(&threads))
	assert.Equal(t, "2", core.FormatValue(core.NormalizeValue(threads)))
}

func TestConnect_InvalidParams(t *testing.T) {
	adp := New(nil)
	err := adp.Connect(context.Background(), core.AdapterConfig{
		Path:   ":memory:",
		Params: map[string]any{"unknown_key": true},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duckdb params")
	assert.False(t, adp.IsConnected())
}
