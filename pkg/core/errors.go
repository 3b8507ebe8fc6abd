package core

import (
	"errors"
	"fmt"
	"strings"
)

// Schema-level errors. These indicate a broken configuration and are
// raised once, at startup, before any query runs.
var (
	// ErrUnknownColumn is returned when a filter references a column the
	// data source does not have.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrMissingColumn is returned when a result or plot column is absent
	// from the data source schema.
	ErrMissingColumn = errors.New("missing column")

	// ErrInvalidPrefix is returned when the selected condition prefix is not
	// one of the configured prefixes.
	ErrInvalidPrefix = errors.New("invalid condition prefix")
)

// Per-interaction errors. Callers recover from these locally.
var (
	// ErrInvalidRange is returned when a range selection has min > max.
	ErrInvalidRange = errors.New("invalid range")

	// ErrEmptyInput is returned when aggregation or plotting is attempted
	// against zero rows.
	ErrEmptyInput = errors.New("no data for current filters")

	// ErrUndefinedStdDev signals that a sample standard deviation cannot be
	// computed from fewer than two values.
	ErrUndefinedStdDev = errors.New("standard deviation undefined for fewer than two values")

	// ErrMissingResultColumn is returned when a plotted column is absent
	// from the filtered table.
	ErrMissingResultColumn = errors.New("missing result column")

	// ErrNonNumeric is returned when a statistic or axis needs a number and
	// the cell holds something else.
	ErrNonNumeric = errors.New("non-numeric value")

	// ErrValueNotInDomain is returned when a textual selection does not match
	// any value present in the filter's column.
	ErrValueNotInDomain = errors.New("value not in domain")

	// ErrSelectionShape is returned when a choice does not fit its filter's
	// kind, such as bounds on a single-valued filter.
	ErrSelectionShape = errors.New("selection does not match filter kind")
)

// ColumnError ties a column name to one of the sentinel errors.
type ColumnError struct {
	Err     error
	Column  string
	Context string // e.g. "filter", "result", "plot x axis"
}

func (e *ColumnError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s %q", e.Err, e.Context, e.Column)
	}
	return fmt.Sprintf("%s: %q", e.Err, e.Column)
}

func (e *ColumnError) Unwrap() error { return e.Err }

// RangeError reports a range selection whose lower bound exceeds its upper bound.
type RangeError struct {
	Column string
	Min    any
	Max    any
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s for %q: minimum %s must be less than or equal to maximum %s",
		ErrInvalidRange, e.Column, FormatValue(e.Min), FormatValue(e.Max))
}

func (e *RangeError) Unwrap() error { return ErrInvalidRange }

// PrefixError reports a condition prefix outside the configured set.
type PrefixError struct {
	Prefix  string
	Allowed []string
}

func (e *PrefixError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("%s %q: no condition prefixes are configured", ErrInvalidPrefix, e.Prefix)
	}
	return fmt.Sprintf("%s %q\nAvailable prefixes: %s", ErrInvalidPrefix, e.Prefix, strings.Join(e.Allowed, ", "))
}

func (e *PrefixError) Unwrap() error { return ErrInvalidPrefix }

// ShapeError reports a choice whose fields do not fit the filter kind.
type ShapeError struct {
	Column string
	Kind   FilterKind
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s for %q (%s): %s", ErrSelectionShape, e.Column, e.Kind, e.Reason)
}

func (e *ShapeError) Unwrap() error { return ErrSelectionShape }

// IsRecoverable reports whether err is a per-interaction condition that the
// presentation layer should show to the user instead of aborting.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrEmptyInput) ||
		errors.Is(err, ErrValueNotInDomain) ||
		errors.Is(err, ErrSelectionShape) ||
		errors.Is(err, ErrNonNumeric)
}
