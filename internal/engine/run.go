package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/leapstack-labs/runlens/internal/plot"
	"github.com/leapstack-labs/runlens/internal/query"
	"github.com/leapstack-labs/runlens/internal/stats"
	"github.com/leapstack-labs/runlens/pkg/core"
)

// View is everything the presentation layer shows for one selection.
type View struct {
	Selection  core.Selection   `json:"selection"`
	Prefix     string           `json:"prefix,omitempty"`
	Parameters []Parameter      `json:"parameters"`
	Table      *core.Table      `json:"-"`
	Rows       int              `json:"rows"`
	Stats      []stats.Stat     `json:"stats,omitempty"`
	Plot       *plot.Descriptor `json:"plot,omitempty"`
	// Empty is set when no row matches the selection. Stats and Plot are nil.
	Empty bool `json:"empty"`
}

// ApplySelection returns the rows matching every selected filter. The
// source is never modified; the same selection always yields the same rows.
func (e *Engine) ApplySelection(ctx context.Context, sel core.Selection) (*core.Table, error) {
	if err := e.ensureOpen(ctx); err != nil {
		return nil, err
	}

	pred, err := query.Compile(e.filters, sel)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	table, err := e.src.FilteredRows(ctx, pred)
	if err != nil {
		return nil, fmt.Errorf("failed to apply selection: %w", err)
	}
	e.logger.Debug("selection applied",
		"predicate", pred.String(),
		"params", len(pred.Params()),
		"rows", table.Len(),
		"duration", time.Since(start))
	return table, nil
}

// Summarize computes the result statistics of table under prefix.
func (e *Engine) Summarize(table *core.Table, prefix string) ([]stats.Stat, error) {
	return stats.Summarize(table, e.results, prefix)
}

// Compose builds the plot descriptor of table under prefix.
func (e *Engine) Compose(table *core.Table, prefix string) (*plot.Descriptor, error) {
	if err := e.results.ValidatePrefix(prefix); err != nil {
		return nil, err
	}
	return plot.Compose(table, e.plot, prefix)
}

// Run applies sel and derives the summary and plot for prefix. A selection
// matching no rows is not an error: the view comes back with Empty set.
func (e *Engine) Run(ctx context.Context, sel core.Selection, prefix string) (*View, error) {
	if err := e.results.ValidatePrefix(prefix); err != nil {
		return nil, err
	}

	sel = sel.Clone()
	table, err := e.ApplySelection(ctx, sel)
	if err != nil {
		return nil, err
	}

	view := &View{
		Selection:  sel,
		Prefix:     prefix,
		Parameters: DescribeSelection(e.filters, sel),
		Table:      table,
		Rows:       table.Len(),
	}
	if table.Len() == 0 {
		view.Empty = true
		return view, nil
	}

	if view.Stats, err = e.Summarize(table, prefix); err != nil {
		return nil, err
	}
	if e.HasPlot() {
		if view.Plot, err = e.Compose(table, prefix); err != nil {
			return nil, err
		}
	}
	return view, nil
}
