package engine

import (
	"context"
	"fmt"
	"slices"

	"github.com/leapstack-labs/runlens/internal/source"
	"github.com/leapstack-labs/runlens/pkg/core"
)

// FilterDomain is a filter together with the values it can take.
type FilterDomain struct {
	Filter core.FilterSpec `json:"filter"`
	Values []any           `json:"values"`
}

// Min returns the smallest domain value, or nil for an empty domain.
func (d FilterDomain) Min() any {
	if len(d.Values) == 0 {
		return nil
	}
	return d.Values[0]
}

// Max returns the largest domain value, or nil for an empty domain.
func (d FilterDomain) Max() any {
	if len(d.Values) == 0 {
		return nil
	}
	return d.Values[len(d.Values)-1]
}

// Resolve returns the distinct values of column in source order.
func Resolve(ctx context.Context, src source.Source, column string) ([]any, error) {
	values, err := src.DistinctValues(ctx, column)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve domain of %q: %w", column, err)
	}
	return values, nil
}

// ListFilters resolves the domain of every configured filter. Range filters
// have their values sorted ascending; single-valued filters keep source order.
// NULL cells are not selectable and are left out of every domain.
func (e *Engine) ListFilters(ctx context.Context) ([]FilterDomain, error) {
	if err := e.ensureOpen(ctx); err != nil {
		return nil, err
	}

	domains := make([]FilterDomain, 0, len(e.filters))
	for _, f := range e.filters {
		values, err := Resolve(ctx, e.src, f.Column)
		if err != nil {
			return nil, err
		}
		values = slices.DeleteFunc(values, func(v any) bool { return v == nil })
		if f.Kind.IsRange() {
			values = core.SortValues(values)
		}
		domains = append(domains, FilterDomain{Filter: f, Values: values})
	}
	return domains, nil
}

// DefaultSelection returns the initial selection: the first value of each
// single-valued filter and the full domain of each range filter.
func (e *Engine) DefaultSelection(ctx context.Context) (core.Selection, error) {
	domains, err := e.ListFilters(ctx)
	if err != nil {
		return nil, err
	}
	return DefaultSelection(domains), nil
}

// DefaultSelection builds the initial selection from resolved domains.
// Filters with an empty domain are left unselected.
func DefaultSelection(domains []FilterDomain) core.Selection {
	sel := make(core.Selection, len(domains))
	for _, d := range domains {
		if len(d.Values) == 0 {
			continue
		}
		if d.Filter.Kind.IsRange() {
			sel[d.Filter.Column] = core.Between(d.Min(), d.Max())
		} else {
			sel[d.Filter.Column] = core.Single(d.Values[0])
		}
	}
	return sel
}
