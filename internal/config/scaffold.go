package config

import (
	"slices"
	"strings"

	"github.com/leapstack-labs/runlens/pkg/core"
)

// DiscreteLimit is the largest number of distinct values a numeric column
// may have to be scaffolded as a range_discrete filter.
const DiscreteLimit = 12

// maxPlotPanels caps the number of y axes a scaffold plots.
const maxPlotPanels = 3

// ColumnProfile summarizes one dataset column for scaffolding.
type ColumnProfile struct {
	Name     string
	Numeric  bool
	Distinct int
}

// Scaffold proposes a configuration for a dataset from its column profiles.
//
// Numeric columns sharing a suffix under two or more prefixes ("PA_Score",
// "CV_Score") become result columns read under those condition prefixes.
// Text columns become single-valued filters; numeric columns become range
// filters, discrete when they have few values. Without prefixes, numeric
// columns with many values are treated as results instead.
func Scaffold(profiles []ColumnProfile, data DataConfig) *Config {
	cfg := &Config{Data: data}

	prefixes, results := detectPrefixes(profiles)
	consumed := make(map[string]bool)
	for _, p := range prefixes {
		for _, r := range results {
			consumed[core.EffectiveColumn(p, r)] = true
		}
	}
	cfg.Results.ConditionPrefixes = prefixes

	for _, col := range profiles {
		if consumed[col.Name] {
			continue
		}
		switch {
		case !col.Numeric:
			cfg.Filters = append(cfg.Filters, filterFor(core.FilterSingleValued, col.Name))
		case col.Distinct <= DiscreteLimit:
			cfg.Filters = append(cfg.Filters, filterFor(core.FilterRangeDiscrete, col.Name))
		case len(prefixes) > 0:
			cfg.Filters = append(cfg.Filters, filterFor(core.FilterRangeContinuous, col.Name))
		default:
			results = append(results, col.Name)
		}
	}

	for _, r := range results {
		cfg.Results.Columns = append(cfg.Results.Columns, core.ResultColumnSpec{Column: r, Label: humanize(r)})
	}

	cfg.Plot = scaffoldPlot(cfg.Filters, results)
	return cfg
}

// detectPrefixes finds condition prefixes and the result suffixes present
// under every one of them.
func detectPrefixes(profiles []ColumnProfile) ([]string, []string) {
	bySuffix := make(map[string][]string)
	var suffixes []string
	for _, col := range profiles {
		if !col.Numeric {
			continue
		}
		prefix, suffix, ok := strings.Cut(col.Name, "_")
		if !ok || prefix == "" || suffix == "" {
			continue
		}
		if _, seen := bySuffix[suffix]; !seen {
			suffixes = append(suffixes, suffix)
		}
		bySuffix[suffix] = append(bySuffix[suffix], prefix)
	}

	var prefixes []string
	for _, s := range suffixes {
		if len(bySuffix[s]) >= 2 {
			prefixes = bySuffix[s]
			break
		}
	}
	if prefixes == nil {
		return nil, nil
	}

	var results []string
	for _, s := range suffixes {
		if containsAll(bySuffix[s], prefixes) {
			results = append(results, s)
		}
	}
	return prefixes, results
}

func containsAll(have, want []string) bool {
	for _, w := range want {
		if !slices.Contains(have, w) {
			return false
		}
	}
	return true
}

func scaffoldPlot(filters []FilterSpec, results []string) PlotSpec {
	var x, color string
	for _, kind := range []core.FilterKind{core.FilterRangeContinuous, core.FilterRangeDiscrete} {
		if i := slices.IndexFunc(filters, func(f FilterSpec) bool { return f.Kind == kind }); i >= 0 {
			x = filters[i].Column
			break
		}
	}
	for _, f := range filters {
		if f.Column != x {
			color = f.Column
			break
		}
	}
	if x == "" || color == "" || len(results) == 0 {
		return PlotSpec{}
	}

	spec := PlotSpec{
		XAxis:         core.ColumnRef{Name: x, Label: humanize(x)},
		ColorVariable: core.ColumnRef{Name: color, Label: humanize(color)},
	}
	for _, r := range results[:min(len(results), maxPlotPanels)] {
		spec.YAxes = append(spec.YAxes, core.ColumnRef{Name: r, Label: humanize(r)})
	}
	return spec
}

func filterFor(kind core.FilterKind, column string) FilterSpec {
	return FilterSpec{Kind: kind, Column: column, Label: humanize(column)}
}

// humanize turns a column name into a display label.
func humanize(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}
