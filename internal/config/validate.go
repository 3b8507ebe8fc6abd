package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/runlens/pkg/adapter"
)

// Validate checks the structure of the configuration. Column existence is
// checked later, against the loaded dataset.
func (c *Config) Validate() error {
	var errs []error

	seen := make(map[string]bool, len(c.Filters))
	for i, f := range c.Filters {
		switch {
		case f.Column == "":
			errs = append(errs, fmt.Errorf("filters[%d]: column is required", i))
		case seen[f.Column]:
			errs = append(errs, fmt.Errorf("filters[%d]: duplicate filter on column %q", i, f.Column))
		}
		seen[f.Column] = true
		if !f.Kind.Valid() {
			errs = append(errs, fmt.Errorf("filters[%d]: unknown kind %q (expected single_valued, range_discrete or range_continuous)", i, f.Kind))
		}
	}

	for i, r := range c.Results.Columns {
		if r.Column == "" {
			errs = append(errs, fmt.Errorf("results.columns[%d]: column is required", i))
		}
	}
	for i, p := range c.Results.ConditionPrefixes {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, fmt.Errorf("results.condition_prefixes[%d]: prefix is empty", i))
		}
	}

	if len(c.Plot.YAxes) > 0 {
		if c.Plot.XAxis.Name == "" {
			errs = append(errs, errors.New("plot.x_axis.name is required"))
		}
		if c.Plot.ColorVariable.Name == "" {
			errs = append(errs, errors.New("plot.color_variable.name is required"))
		}
		for i, y := range c.Plot.YAxes {
			if y.Name == "" {
				errs = append(errs, fmt.Errorf("plot.y_axes[%d]: name is required", i))
			}
		}
	}

	if err := ValidateTarget(c.Target); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// HasPlot reports whether a plot is configured.
func (c *Config) HasPlot() bool {
	return len(c.Plot.YAxes) > 0
}

// ValidateTarget checks the target against the adapter registry.
func ValidateTarget(t *TargetConfig) error {
	if t == nil || t.Type == "" {
		return errors.New("target type is required")
	}
	if !adapter.IsRegistered(strings.ToLower(t.Type)) {
		return &adapter.UnknownAdapterError{
			Type:      t.Type,
			Available: adapter.ListAdapters(),
		}
	}
	return nil
}
