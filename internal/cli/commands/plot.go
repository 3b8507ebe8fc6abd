package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/leapstack-labs/runlens/internal/cli/output"
	"github.com/leapstack-labs/runlens/internal/engine"
	"github.com/leapstack-labs/runlens/internal/plot"
	"github.com/spf13/cobra"
)

// errNoPlot is returned when runlens.yaml declares no plot.
var errNoPlot = errors.New("no plot configured (add plot.y_axes to runlens.yaml)")

// PlotOptions holds options for the plot command.
type PlotOptions struct {
	SelectionOptions
	Out string
}

// NewPlotCommand creates the plot command.
func NewPlotCommand() *cobra.Command {
	opts := &PlotOptions{}

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Plot the result columns of a selection",
		Long: `Apply a selection and compose the comparison figure: one scatter panel
per configured y axis against the shared x axis, colored by the color
variable. Y columns are read under the condition prefix.

With --out the figure is rendered to a PNG file. Otherwise the figure
description is printed; use -o json for the full descriptor.`,
		Example: `  # Render the default selection to a file
  runlens plot --defaults --out runs.png

  # Plot descriptor for the CV prefix
  runlens plot -p CV -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlot(cmd, opts)
		},
	}

	addSelectionFlags(cmd, &opts.SelectionOptions)
	cmd.Flags().StringVar(&opts.Out, "out", "", "Write the plot as PNG to this file")

	return cmd
}

func runPlot(cmd *cobra.Command, opts *PlotOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if !cmdCtx.Engine.HasPlot() {
		return errNoPlot
	}

	view, err := runView(cmd, cmdCtx, &opts.SelectionOptions)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if view.Empty {
		if r.EffectiveMode() == output.ModeJSON {
			return r.JSON(view)
		}
		r.Warning(emptyMessage)
		return nil
	}

	if opts.Out != "" {
		if err := writePlot(opts.Out, view.Plot); err != nil {
			return err
		}
		cmdCtx.Logger.Debug("plot written", "path", opts.Out, "panels", len(view.Plot.Panels))
		if r.EffectiveMode() == output.ModeJSON {
			return r.JSON(map[string]any{"path": opts.Out, "width": view.Plot.Width, "height": view.Plot.Height})
		}
		r.Success(fmt.Sprintf("wrote %s (%dx%d)", opts.Out, view.Plot.Width, view.Plot.Height))
		return nil
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(view.Plot)
	}
	renderPlotOutline(r, view)
	return nil
}

// writePlot renders d as PNG into path.
func writePlot(path string, d *plot.Descriptor) error {
	f, err := os.Create(path) //nolint:gosec // path comes from the user's --out flag
	if err != nil {
		return fmt.Errorf("failed to create plot file: %w", err)
	}
	if err := plot.RenderPNG(f, d); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to render plot: %w", err)
	}
	return f.Close()
}

// renderPlotOutline describes the panels of view's plot.
func renderPlotOutline(r *output.Renderer, view *engine.View) {
	d := view.Plot
	title := fmt.Sprintf("Plot (%d panels, %dx%d)", len(d.Panels), d.Width, d.Height)
	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatHeader(1, title))
		r.Println("")
	} else {
		r.Header(1, title)
	}

	rows := make([][]string, len(d.Panels))
	for i, p := range d.Panels {
		rows[i] = []string{p.Title, p.XLabel, p.YColumn, fmt.Sprint(len(p.X))}
	}
	r.Table([]string{"Panel", "X", "Y Column", "Points"}, rows)
	r.Muted(fmt.Sprintf("colored by %s (%s); use --out to render a PNG", d.ColorLabel, d.ColorScale.Name))
}
