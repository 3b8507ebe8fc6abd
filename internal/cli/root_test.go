package cli

import (
	"bytes"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/runlens/internal/cli/config"
	"github.com/leapstack-labs/runlens/internal/cli/testutil"
	datautil "github.com/leapstack-labs/runlens/internal/testutil"
	"github.com/leapstack-labs/runlens/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/leapstack-labs/runlens/pkg/adapters/sqlite"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), errOut.String(), err
}

// executeProject runs args against a fresh test project.
func executeProject(t *testing.T, args ...string) (string, error) {
	t.Helper()

	dir := testutil.SetupTestProject(t)
	args = append([]string{"--config", filepath.Join(dir, "runlens.yaml")}, args...)
	out, _, err := execute(t, args...)
	return out, err
}

func TestRootCommand_Metadata(t *testing.T) {
	root := NewRootCmd()

	assert.Equal(t, "runlens", root.Use)
	for _, name := range []string{"config", "data", "table", "sheet", "delimiter", "target-type", "database", "verbose", "output"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), "flag %q should exist", name)
	}

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"version", "init", "filters", "query", "summary", "plot", "explore", "serve", "completion"} {
		assert.Contains(t, names, want)
	}
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "runlens v"+Version)
}

func TestCompletionCommand(t *testing.T) {
	out, _, err := execute(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "runlens")

	_, _, err = execute(t, "completion", "tcsh")
	assert.Error(t, err)
}

func TestTargetTypeCompletion(t *testing.T) {
	out, _, err := execute(t, "__complete", "filters", "--target-type", "")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlite")
}

func TestFiltersCommand_JSON(t *testing.T) {
	out, err := executeProject(t, "filters", "-o", "json")
	require.NoError(t, err)

	var domains []struct {
		Filter core.FilterSpec `json:"filter"`
		Values []any           `json:"values"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &domains))
	require.Len(t, domains, 3)
	assert.Equal(t, "Noise_distribution", domains[0].Filter.Column)
	assert.Equal(t, []any{0.1, 0.5, 0.9}, domains[1].Values)
}

func TestFiltersCommand_Markdown(t *testing.T) {
	out, err := executeProject(t, "filters")
	require.NoError(t, err)

	testutil.AssertNoANSI(t, out)
	testutil.AssertValidMarkdown(t, out)
	assert.Contains(t, out, "# Filters (3)")
	assert.Contains(t, out, "0.1 to 0.9 (3 values)")
	assert.Contains(t, out, "Gaussian, Uniform")
}

func TestSummaryCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantOut []string
	}{
		{
			name:    "gaussian low tau",
			args:    []string{"-w", "Noise_distribution=Gaussian", "-w", "Tau=0.1:0.5"},
			wantOut: []string{"Filtering Parameters", "Gaussian", "(0.1, 0.5)", "Results (PA)", "4.00 +/- 1.41"},
		},
		{
			name:    "cross validation prefix",
			args:    []string{"-w", "Noise_distribution=Gaussian", "-w", "Tau=0.1:0.5", "-p", "CV"},
			wantOut: []string{"Results (CV)", "3.00 +/- 1.41"},
		},
		{
			name:    "unselected filters read any",
			args:    []string{"-w", "Tau=0.9"},
			wantOut: []string{"any", "(0.9, 0.9)", "6.50 +/- 0.71"},
		},
		{
			name:    "no matching runs",
			args:    []string{"-w", "Tau=0.1", "-w", "Syntethic_Neurons=30"},
			wantOut: []string{"no runs match the current selection"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeProject(t, append([]string{"summary"}, tt.args...)...)
			require.NoError(t, err)
			for _, want := range tt.wantOut {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestSummaryCommand_JSON(t *testing.T) {
	out, err := executeProject(t, "summary", "--defaults", "-o", "json")
	require.NoError(t, err)

	var view struct {
		Rows   int  `json:"rows"`
		Empty  bool `json:"empty"`
		Prefix string
		Stats  []struct {
			Column string  `json:"column"`
			Mean   float64 `json:"mean"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &view))

	// Defaults select the first noise distribution and every tau and neuron count.
	assert.Equal(t, 3, view.Rows)
	assert.False(t, view.Empty)
	assert.Equal(t, "PA", view.Prefix)
	require.Len(t, view.Stats, 2)
	assert.Equal(t, "PA_Identifiable_Dimensions", view.Stats[0].Column)
	assert.InDelta(t, 5.0, view.Stats[0].Mean, 1e-9)
}

func TestSummaryCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "value outside domain", args: []string{"-w", "Tau=0.3"}, wantErr: "value not in domain"},
		{name: "unknown filter", args: []string{"-w", "Seed=1"}, wantErr: "Seed"},
		{name: "bad expression", args: []string{"-w", "Tau"}, wantErr: "expected column=value"},
		{name: "unknown prefix", args: []string{"-p", "XX"}, wantErr: "XX"},
		{name: "inverted range", args: []string{"-w", "Tau=0.9:0.1"}, wantErr: "Tau"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeProject(t, append([]string{"summary"}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestQueryCommand(t *testing.T) {
	out, err := executeProject(t, "query", "-w", "Tau=0.9", "-o", "json")
	require.NoError(t, err)

	var result struct {
		Rows    int              `json:"rows"`
		Columns []string         `json:"columns"`
		Records []map[string]any `json:"records"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 2, result.Rows)
	assert.Len(t, result.Columns, 7)
	require.Len(t, result.Records, 2)
	assert.Equal(t, 0.9, result.Records[0]["Tau"])

	out, err = executeProject(t, "query", "--limit", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "# Runs (6)")
	assert.Contains(t, out, "showing 2 of 6 runs")
}

func TestPlotCommand(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	pngPath := filepath.Join(dir, "runs.png")

	out, _, err := execute(t, "--config", filepath.Join(dir, "runlens.yaml"), "plot", "--defaults", "--out", pngPath)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+pngPath)

	f, err := os.Open(pngPath)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 1500, img.Bounds().Dx())
	assert.Equal(t, 600, img.Bounds().Dy())
}

func TestPlotCommand_Descriptor(t *testing.T) {
	out, err := executeProject(t, "plot", "-p", "CV", "-o", "json")
	require.NoError(t, err)

	var d struct {
		Panels []struct {
			YColumn string `json:"y_column"`
		} `json:"panels"`
		Height int `json:"height"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	require.Len(t, d.Panels, 2)
	assert.Equal(t, "CV_Identifiable_Dimensions", d.Panels[0].YColumn)
	assert.Equal(t, 600, d.Height)

	out, err = executeProject(t, "plot")
	require.NoError(t, err)
	assert.Contains(t, out, "Plot (2 panels, 1500x600)")
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "runs.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(datautil.RunsCSV), 0600))

	out, _, err := execute(t, "init", dir, "--data", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "runlens.yaml")

	configPath := filepath.Join(dir, "runlens.yaml")
	cfg, err := config.LoadConfig(configPath, nil)
	require.NoError(t, err)

	assert.Equal(t, csvPath, cfg.Data.Source)
	assert.Len(t, cfg.Filters, 3)
	assert.Equal(t, []string{"PA", "CV"}, cfg.Results.ConditionPrefixes)
	assert.True(t, cfg.HasPlot())

	// The generated config drives the other commands.
	out, _, err = execute(t, "--config", configPath, "summary", "--defaults", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, "PA_Score")

	_, _, err = execute(t, "init", dir, "--data", csvPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	_, _, err = execute(t, "init", dir, "--data", csvPath, "--force")
	require.NoError(t, err)
}

func TestInitCommand_RequiresData(t *testing.T) {
	_, _, err := execute(t, "init", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--data")
}

func TestUnknownTargetType(t *testing.T) {
	_, err := executeProject(t, "filters", "--target-type", "nosuch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown adapter type")
}

func TestMissingColumnsFailAtStartup(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.csv"), []byte("Tau,Seed\n0.1,1\n"), 0600))

	_, _, err := execute(t, "--config", filepath.Join(dir, "runlens.yaml"), "--data", filepath.Join(dir, "other.csv"), "filters")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Noise_distribution")
}
