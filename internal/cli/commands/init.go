package commands

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/runlens/internal/cli/config"
	"github.com/leapstack-labs/runlens/internal/cli/output"
	intconfig "github.com/leapstack-labs/runlens/internal/config"
	"github.com/leapstack-labs/runlens/internal/engine"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// configFileName is the file init writes.
const configFileName = "runlens.yaml"

// configHeader starts every generated config file.
const configHeader = `# runlens configuration, generated by "runlens init".
# Review the filters, results and plot below before exploring.
`

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Generate runlens.yaml from a dataset",
		Long: `Inspect a dataset and write a runlens.yaml describing it.

Columns are classified by their contents:
  - Text columns become single-valued filters
  - Numeric columns sharing a suffix under several prefixes (PA_Score,
    CV_Score) become result columns read under those condition prefixes
  - Other numeric columns become range filters, discrete when they hold
    at most 12 distinct values

A plot of the result columns against the first range filter is proposed
when the dataset allows it.`,
		Example: `  # Scaffold from a CSV file in the current directory
  runlens init --data runs.csv

  # Scaffold from one worksheet of a workbook into a new directory
  runlens init analysis --data results.xlsx --sheet Sweep

  # Regenerate an existing config
  runlens init --data runs.csv --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(cmd, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, force bool) error {
	flags := cmd.Flags()
	source, _ := flags.GetString("data")
	if source == "" {
		return errors.New("init requires --data pointing at a .csv, .tsv or .xlsx dataset")
	}

	mode, _ := flags.GetString("output")
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(mode))
	logger := config.GetLogger(cmd.Context())

	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	configPath := filepath.Join(dir, configFileName)
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", configPath)
	}

	data := intconfig.DataConfig{Source: absSource(source)}
	data.Sheet, _ = flags.GetString("sheet")
	data.Delimiter, _ = flags.GetString("delimiter")
	data.Table, _ = flags.GetString("table")

	var target *intconfig.TargetConfig
	if targetType, _ := flags.GetString("target-type"); targetType != "" {
		target = &intconfig.TargetConfig{Type: targetType}
		target.Database, _ = flags.GetString("database")
	}

	eng, err := engine.New(engine.Config{Data: data, Target: target, Logger: logger})
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	profiles, err := eng.Profile(cmd.Context())
	if err != nil {
		return err
	}

	data.Source = relativeSource(data.Source, dir)
	scaffold := intconfig.Scaffold(profiles, data)
	scaffold.Target = target

	content, err := marshalConfig(scaffold)
	if err != nil {
		return err
	}
	if err := os.WriteFile(configPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(map[string]any{
			"path":     configPath,
			"filters":  len(scaffold.Filters),
			"results":  len(scaffold.Results.Columns),
			"prefixes": scaffold.Results.ConditionPrefixes,
			"plot":     scaffold.HasPlot(),
		})
	}

	r.Success(fmt.Sprintf("Wrote %s", configPath))
	r.StatusLine("filters", "", fmt.Sprintf("%d", len(scaffold.Filters)))
	r.StatusLine("result columns", "", fmt.Sprintf("%d", len(scaffold.Results.Columns)))
	if len(scaffold.Results.ConditionPrefixes) > 0 {
		r.StatusLine("condition prefixes", "", fmt.Sprint(scaffold.Results.ConditionPrefixes))
	}
	if !scaffold.HasPlot() {
		r.Muted("No plot proposed; add plot.x_axis, plot.y_axes and plot.color_variable by hand.")
	}
	return nil
}

// marshalConfig renders cfg as YAML under the generated-file header.
func marshalConfig(cfg *intconfig.Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(configHeader)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// absSource makes a local dataset path absolute. URLs are unchanged.
func absSource(source string) string {
	if isURL(source) {
		return source
	}
	if abs, err := filepath.Abs(source); err == nil {
		return abs
	}
	return source
}

// relativeSource expresses a local dataset path relative to the config
// directory, which is how runlens.yaml paths are resolved.
func relativeSource(source, dir string) string {
	if isURL(source) {
		return source
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return source
	}
	if rel, err := filepath.Rel(absDir, source); err == nil {
		return filepath.ToSlash(rel)
	}
	return source
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}
