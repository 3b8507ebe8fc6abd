package commands

import (
	"fmt"

	"github.com/leapstack-labs/runlens/internal/cli/output"
	"github.com/leapstack-labs/runlens/internal/engine"
	"github.com/spf13/cobra"
)

// NewSummaryCommand creates the summary command.
func NewSummaryCommand() *cobra.Command {
	opts := &SelectionOptions{}

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize the result columns of a selection",
		Long: `Apply a selection and report each result column as mean +/- standard
deviation, under the chosen condition prefix.

The filtering parameters in effect are listed first. Filters left
unselected read "any".`,
		Example: `  # Summary of the default selection under the first prefix
  runlens summary --defaults

  # Cross-validation results for Gaussian noise
  runlens summary -w Noise_distribution=Gaussian -p CV`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSummary(cmd, opts)
		},
	}

	addSelectionFlags(cmd, opts)
	return cmd
}

func runSummary(cmd *cobra.Command, opts *SelectionOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	view, err := runView(cmd, cmdCtx, opts)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(view)
	}
	renderSummary(r, view)
	return nil
}

// renderSummary writes the parameters and statistics of view.
func renderSummary(r *output.Renderer, view *engine.View) {
	markdown := r.EffectiveMode() == output.ModeMarkdown
	header := func(text string) {
		if markdown {
			r.Println(output.FormatHeader(2, text))
			r.Println("")
			return
		}
		r.Header(2, text)
	}

	header("Filtering Parameters")
	params := make([][]string, len(view.Parameters))
	for i, p := range view.Parameters {
		params[i] = []string{p.Label, p.Value}
	}
	r.Table([]string{"Parameter", "Value"}, params)

	if view.Empty {
		r.Warning(emptyMessage)
		return
	}

	title := "Results"
	if view.Prefix != "" {
		title = fmt.Sprintf("Results (%s)", view.Prefix)
	}
	header(title)
	rows := make([][]string, len(view.Stats))
	for i, s := range view.Stats {
		rows[i] = []string{s.Label, s.Display(), fmt.Sprint(s.N)}
	}
	r.Table([]string{"Result", "Mean +/- Std", "Runs"}, rows)
}
