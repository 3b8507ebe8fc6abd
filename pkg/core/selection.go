package core

import "maps"

// Choice is the analyst's selection for one filter: either a single
// scalar or a (Min, Max) pair. A nil bound means "not selected".
type Choice struct {
	Value any `json:"value,omitempty"`
	Min   any `json:"min,omitempty"`
	Max   any `json:"max,omitempty"`
}

// Single returns a single-valued choice.
func Single(v any) Choice {
	return Choice{Value: v}
}

// Between returns a range choice.
func Between(lo, hi any) Choice {
	return Choice{Min: lo, Max: hi}
}

// HasValue reports whether a single value is selected.
func (c Choice) HasValue() bool { return c.Value != nil }

// HasRange reports whether both range bounds are selected.
func (c Choice) HasRange() bool { return c.Min != nil && c.Max != nil }

// Collapsed reports whether the range bounds are equal.
func (c Choice) Collapsed() bool {
	return c.HasRange() && ValuesEqual(c.Min, c.Max)
}

// Fit checks c against the kind of filter f. A lone value on a range filter
// becomes the collapsed range (v, v). The empty choice fits every kind.
func (c Choice) Fit(f FilterSpec) (Choice, error) {
	bounds := c.Min != nil || c.Max != nil
	if !f.Kind.IsRange() {
		if bounds {
			return Choice{}, &ShapeError{Column: f.Column, Kind: f.Kind, Reason: "range bounds given for a single-valued filter"}
		}
		return c, nil
	}

	switch {
	case c.Value != nil && bounds:
		return Choice{}, &ShapeError{Column: f.Column, Kind: f.Kind, Reason: "both a value and range bounds given"}
	case c.Value != nil:
		return Between(c.Value, c.Value), nil
	case bounds && !c.HasRange():
		return Choice{}, &ShapeError{Column: f.Column, Kind: f.Kind, Reason: "a range needs both min and max"}
	}
	return c, nil
}

// Selection maps a filter column to the analyst's choice.
// It is passed by value into each recomputation; callers own it.
type Selection map[string]Choice

// Clone returns an independent copy of the selection.
func (s Selection) Clone() Selection {
	if s == nil {
		return Selection{}
	}
	return maps.Clone(s)
}

// Lookup returns the choice for column, if any.
func (s Selection) Lookup(column string) (Choice, bool) {
	c, ok := s[column]
	return c, ok
}

// Validate checks every range choice for min <= max against the filters.
// Only filters of a range kind are checked.
func (s Selection) Validate(filters []FilterSpec) error {
	for _, f := range filters {
		if !f.Kind.IsRange() {
			continue
		}
		c, ok := s[f.Column]
		if !ok || !c.HasRange() {
			continue
		}
		if CompareValues(c.Min, c.Max) > 0 {
			return &RangeError{Column: f.Column, Min: c.Min, Max: c.Max}
		}
	}
	return nil
}
