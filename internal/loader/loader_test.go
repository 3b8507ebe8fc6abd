package loader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/runlens/internal/testutil"
	"github.com/leapstack-labs/runlens/pkg/adapter"
	"github.com/leapstack-labs/runlens/pkg/adapters/sqlite"
	"github.com/leapstack-labs/runlens/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newAdapter(t *testing.T) adapter.Adapter {
	t.Helper()
	adp := sqlite.New(testutil.NewTestLogger(t))
	require.NoError(t, adp.Connect(context.Background(), core.AdapterConfig{Path: ":memory:"}))
	t.Cleanup(func() { _ = adp.Close() })
	return adp
}

func columns(t *testing.T, adp adapter.Adapter, table string) ([]string, int64) {
	t.Helper()
	meta, err := adp.GetTableMetadata(context.Background(), table)
	require.NoError(t, err)
	return meta.ColumnNames(), meta.RowCount
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr string
	}{
		{name: "runs.csv", want: FormatCSV},
		{name: "RUNS.TSV", want: FormatTSV},
		{name: "dir/results.xlsx", want: FormatXLSX},
		{name: "https://example.com/data/runs.tsv?raw=1", want: FormatTSV},
		{name: "runs.parquet", wantErr: "expected .csv, .tsv or .xlsx"},
		{name: "runs", wantErr: "expected .csv, .tsv or .xlsx"},
		{name: "https://example.com/legacy/Runs.XLS", wantErr: "legacy Excel 97-2003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.name)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnsupportedFormat))
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad_CSV(t *testing.T) {
	adp := newAdapter(t)
	path := testutil.WriteFile(t, "runs.csv", testutil.RunsCSV)

	table, err := Load(context.Background(), adp, Options{Source: path, Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)
	assert.Equal(t, DefaultTable, table)

	cols, n := columns(t, adp, table)
	assert.Equal(t, "Tau", cols[0])
	assert.Equal(t, int64(6), n)
}

func TestLoad_TSV(t *testing.T) {
	adp := newAdapter(t)
	path := testutil.WriteFile(t, "runs.tsv", "Tau\tNoise_distribution\n0.1\tGaussian\n0.5\tUniform\n")

	table, err := Load(context.Background(), adp, Options{Source: path, Table: "runs"})
	require.NoError(t, err)
	assert.Equal(t, "runs", table)

	cols, n := columns(t, adp, "runs")
	assert.Equal(t, []string{"Tau", "Noise_distribution"}, cols)
	assert.Equal(t, int64(2), n)
}

func TestLoad_DelimiterOverride(t *testing.T) {
	adp := newAdapter(t)
	path := testutil.WriteFile(t, "runs.csv", "Tau;Seed\n0.1;1\n")

	_, err := Load(context.Background(), adp, Options{Source: path, Delimiter: ";"})
	require.NoError(t, err)

	cols, _ := columns(t, adp, DefaultTable)
	assert.Equal(t, []string{"Tau", "Seed"}, cols)
}

func TestLoad_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.xlsx")

	f := excelize.NewFile()
	_, err := f.NewSheet("Runs")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Runs", "A1", &[]any{"Tau", "Noise_distribution", "PA_Score"}))
	require.NoError(t, f.SetSheetRow("Runs", "A2", &[]any{0.1, "Gaussian", 0.5}))
	require.NoError(t, f.SetSheetRow("Runs", "A3", &[]any{0.5, "Uniform"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	adp := newAdapter(t)
	_, err = Load(context.Background(), adp, Options{Source: path, Sheet: "Runs"})
	require.NoError(t, err)

	cols, n := columns(t, adp, DefaultTable)
	assert.Equal(t, []string{"Tau", "Noise_distribution", "PA_Score"}, cols)
	assert.Equal(t, int64(2), n)

	_, err = Load(context.Background(), adp, Options{Source: path, Sheet: "Missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `sheet "Missing" not found`)
}

func TestLoad_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/datasets/runs.csv" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(testutil.RunsCSV))
	}))
	defer srv.Close()

	adp := newAdapter(t)
	_, err := Load(context.Background(), adp, Options{Source: srv.URL + "/datasets/runs.csv", Client: srv.Client()})
	require.NoError(t, err)

	_, n := columns(t, adp, DefaultTable)
	assert.Equal(t, int64(6), n)

	_, err = Load(context.Background(), adp, Options{Source: srv.URL + "/datasets/missing.csv", Client: srv.Client()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestLoad_Errors(t *testing.T) {
	adp := newAdapter(t)

	_, err := Load(context.Background(), adp, Options{})
	require.Error(t, err)

	_, err = Load(context.Background(), adp, Options{Source: "runs.json"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = Load(context.Background(), adp, Options{Source: filepath.Join(t.TempDir(), "absent.csv")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
