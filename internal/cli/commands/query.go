package commands

import (
	"fmt"

	"github.com/leapstack-labs/runlens/internal/cli/output"
	"github.com/leapstack-labs/runlens/pkg/core"
	"github.com/spf13/cobra"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	SelectionOptions
	Limit int
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Show the runs matching a selection",
		Long: `Apply a selection and print the matching runs.

Without --where every run matches. Each --where narrows the runs down on one
configured filter; range filters take min:max and include both bounds.`,
		Example: `  # All Gaussian runs with Tau between 0.1 and 0.5
  runlens query -w Noise_distribution=Gaussian -w Tau=0.1:0.5

  # Matching runs as JSON records
  runlens query -w Tau=0.5 -o json

  # First 20 runs of the default selection
  runlens query --defaults --limit 20`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQuery(cmd, opts)
		},
	}

	addSelectionFlags(cmd, &opts.SelectionOptions)
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 0, "Maximum number of runs to print (0 for all)")

	return cmd
}

func runQuery(cmd *cobra.Command, opts *QueryOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	sel, _, err := opts.resolve(cmd.Context(), cmdCtx.Engine)
	if err != nil {
		return err
	}
	table, err := cmdCtx.Engine.ApplySelection(cmd.Context(), sel)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(map[string]any{
			"rows":    table.Len(),
			"columns": table.Columns(),
			"records": limitRecords(table.Records(), opts.Limit),
		})
	}

	if table.Len() == 0 {
		r.Warning(emptyMessage)
		return nil
	}

	title := fmt.Sprintf("Runs (%d)", table.Len())
	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatHeader(1, title))
		r.Println("")
	} else {
		r.Header(1, title)
	}
	r.Table(table.Columns(), tableRows(table, opts.Limit))
	if opts.Limit > 0 && table.Len() > opts.Limit {
		r.Muted(fmt.Sprintf("showing %d of %d runs", opts.Limit, table.Len()))
	}
	return nil
}

// tableRows formats up to limit rows of table for display. A limit of 0
// keeps every row.
func tableRows(table *core.Table, limit int) [][]string {
	n := table.Len()
	if limit > 0 {
		n = min(n, limit)
	}
	rows := make([][]string, n)
	for i := range n {
		row := table.Row(i)
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = core.FormatValue(v)
		}
		rows[i] = cells
	}
	return rows
}

func limitRecords(records []map[string]any, limit int) []map[string]any {
	if limit > 0 && len(records) > limit {
		return records[:limit]
	}
	return records
}
