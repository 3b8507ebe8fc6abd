package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/runlens/internal/cli/output"
	"github.com/leapstack-labs/runlens/internal/engine"
	"github.com/leapstack-labs/runlens/pkg/core"
	"github.com/spf13/cobra"
)

// maxListedValues caps how many values of a single-valued filter are listed.
const maxListedValues = 10

// NewFiltersCommand creates the filters command.
func NewFiltersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "filters",
		Short: "List the configured filters and their values",
		Long: `List every configured filter with the values it can take.

Single-valued filters list their distinct values in dataset order. Range
filters show their sorted bounds; those are the defaults used by --defaults.`,
		Example: `  # Show filters
  runlens filters

  # As JSON, for scripts
  runlens filters -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFilters(cmd)
		},
	}
}

func runFilters(cmd *cobra.Command) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	domains, err := cmdCtx.Engine.ListFilters(cmd.Context())
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(domains)
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, fmt.Sprintf("Filters (%d)", len(domains))))
		r.Println("")
	default:
		r.Header(1, fmt.Sprintf("Filters (%d)", len(domains)))
	}

	rows := make([][]string, 0, len(domains))
	for _, d := range domains {
		rows = append(rows, []string{d.Filter.Label, d.Filter.Column, string(d.Filter.Kind), describeDomain(d)})
	}
	r.Table([]string{"Filter", "Column", "Kind", "Values"}, rows)
	return nil
}

// describeDomain renders the values a filter can take.
func describeDomain(d engine.FilterDomain) string {
	if len(d.Values) == 0 {
		return "(no values)"
	}
	if d.Filter.Kind.IsRange() {
		return fmt.Sprintf("%s to %s (%d values)", core.FormatValue(d.Min()), core.FormatValue(d.Max()), len(d.Values))
	}

	shown := d.Values[:min(len(d.Values), maxListedValues)]
	parts := make([]string, len(shown))
	for i, v := range shown {
		parts[i] = core.FormatValue(v)
	}
	out := strings.Join(parts, ", ")
	if extra := len(d.Values) - len(shown); extra > 0 {
		out += fmt.Sprintf(", ... (+%d more)", extra)
	}
	return out
}
