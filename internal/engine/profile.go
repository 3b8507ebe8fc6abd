package engine

import (
	"context"

	"github.com/leapstack-labs/runlens/internal/config"
	"github.com/leapstack-labs/runlens/pkg/core"
)

// Schema returns the column names of the loaded dataset in table order.
func (e *Engine) Schema(ctx context.Context) ([]string, error) {
	if err := e.ensureOpen(ctx); err != nil {
		return nil, err
	}
	return e.src.Schema(ctx)
}

// Profile reports, per dataset column, whether it is numeric and how many
// distinct values it holds. Null cells are ignored.
func (e *Engine) Profile(ctx context.Context) ([]config.ColumnProfile, error) {
	columns, err := e.Schema(ctx)
	if err != nil {
		return nil, err
	}

	profiles := make([]config.ColumnProfile, 0, len(columns))
	for _, column := range columns {
		values, err := Resolve(ctx, e.src, column)
		if err != nil {
			return nil, err
		}

		p := config.ColumnProfile{Name: column, Numeric: true}
		for _, v := range values {
			if v == nil {
				continue
			}
			p.Distinct++
			if _, ok := core.ToFloat(v); !ok || isText(v) {
				p.Numeric = false
			}
		}
		if p.Distinct == 0 {
			p.Numeric = false
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}
