package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/runlens/pkg/core"
)

// Parameter is one line of the "Filtering Parameters" summary.
type Parameter struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// DescribeSelection lists each filter's label with its selected value, or
// "(min, max)" for range filters. Unselected filters read "any".
func DescribeSelection(filters []core.FilterSpec, sel core.Selection) []Parameter {
	params := make([]Parameter, 0, len(filters))
	for _, f := range filters {
		label := f.Label
		if label == "" {
			label = f.Column
		}

		value := "any"
		if c, ok := sel.Lookup(f.Column); ok {
			if fitted, err := c.Fit(f); err == nil {
				c = fitted
			}
			switch {
			case f.Kind.IsRange() && c.HasRange():
				value = fmt.Sprintf("(%s, %s)", core.FormatValue(c.Min), core.FormatValue(c.Max))
			case c.HasValue():
				value = core.FormatValue(c.Value)
			}
		}
		params = append(params, Parameter{Label: label, Value: value})
	}
	return params
}

// ParseChoice turns user text into a choice over domain. Single-valued
// filters take "value"; range filters take "min:max" or a single value,
// which selects a collapsed range. Values are matched against the domain by
// their display form, and continuous ranges also accept any number.
func ParseChoice(domain FilterDomain, raw string) (core.Choice, error) {
	raw = strings.TrimSpace(raw)
	f := domain.Filter

	if !f.Kind.IsRange() {
		v, err := matchValue(domain, raw)
		if err != nil {
			return core.Choice{}, err
		}
		return core.Single(v), nil
	}

	lo, hi, found := strings.Cut(raw, ":")
	if !found {
		hi = lo
	}
	minV, err := matchValue(domain, lo)
	if err != nil {
		return core.Choice{}, err
	}
	maxV, err := matchValue(domain, hi)
	if err != nil {
		return core.Choice{}, err
	}
	return core.Between(minV, maxV), nil
}

// matchValue finds the domain value whose display form is raw. Numeric
// text matches numerically equal domain values.
func matchValue(domain FilterDomain, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	for _, v := range domain.Values {
		if core.FormatValue(v) == raw {
			return v, nil
		}
	}

	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		for _, v := range domain.Values {
			if f, ok := core.ToFloat(v); ok && !isText(v) && f == n {
				return v, nil
			}
		}
		if domain.Filter.Kind == core.FilterRangeContinuous {
			return n, nil
		}
	}

	return nil, fmt.Errorf("%w: %q for filter %q", core.ErrValueNotInDomain, raw, domain.Filter.Column)
}

func isText(v any) bool {
	switch v.(type) {
	case string, []byte:
		return true
	}
	return false
}

// ParseAssignments builds a selection from "column=value" and
// "column=min:max" expressions. Columns must name configured filters.
func ParseAssignments(domains []FilterDomain, exprs []string) (core.Selection, error) {
	sel := make(core.Selection, len(exprs))
	for _, expr := range exprs {
		column, raw, ok := strings.Cut(expr, "=")
		if !ok {
			return nil, fmt.Errorf("invalid filter expression %q: expected column=value or column=min:max", expr)
		}
		column = strings.TrimSpace(column)

		domain, ok := findDomain(domains, column)
		if !ok {
			return nil, &core.ColumnError{Err: core.ErrUnknownColumn, Column: column, Context: "filter"}
		}
		choice, err := ParseChoice(domain, raw)
		if err != nil {
			return nil, err
		}
		sel[column] = choice
	}
	return sel, nil
}

func findDomain(domains []FilterDomain, column string) (FilterDomain, bool) {
	for _, d := range domains {
		if d.Filter.Column == column {
			return d, true
		}
	}
	return FilterDomain{}, false
}

// ResolveSelection checks a selection built from decoded JSON against the
// resolved domains. Each choice must fit its filter kind; a lone value on a
// range filter becomes a collapsed range. Values are replaced by the
// matching domain value so that 10 (a JSON number) selects the integer 10.
// Columns must name configured filters.
func ResolveSelection(domains []FilterDomain, sel core.Selection) (core.Selection, error) {
	out := make(core.Selection, len(sel))
	for column, c := range sel {
		domain, ok := findDomain(domains, column)
		if !ok {
			return nil, &core.ColumnError{Err: core.ErrUnknownColumn, Column: column, Context: "filter"}
		}

		c, err := c.Fit(domain.Filter)
		if err != nil {
			return nil, err
		}
		if c.Value != nil {
			if c.Value, err = resolveValue(domain, c.Value); err != nil {
				return nil, err
			}
		}
		if c.Min != nil {
			if c.Min, err = resolveValue(domain, c.Min); err != nil {
				return nil, err
			}
		}
		if c.Max != nil {
			if c.Max, err = resolveValue(domain, c.Max); err != nil {
				return nil, err
			}
		}
		out[column] = c
	}
	return out, nil
}

func resolveValue(domain FilterDomain, v any) (any, error) {
	for _, d := range domain.Values {
		if core.ValuesEqual(d, v) {
			return d, nil
		}
	}
	if _, ok := core.ToFloat(v); ok && !isText(v) && domain.Filter.Kind == core.FilterRangeContinuous {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %q for filter %q", core.ErrValueNotInDomain, core.FormatValue(v), domain.Filter.Column)
}
