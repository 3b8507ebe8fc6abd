// Package stats computes the per-column summaries shown for a filtered table.
package stats

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat"

	"github.com/leapstack-labs/runlens/pkg/core"
)

// Stat is the summary of one result column. Values keep full precision;
// rounding happens only in Display.
type Stat struct {
	Label  string   `json:"label"`
	Column string   `json:"column"`
	N      int      `json:"n"`
	Mean   float64  `json:"mean"`
	Std    *float64 `json:"std"` // nil when N < 2
}

// StdDev returns the sample standard deviation, or ErrUndefinedStdDev when
// it was computed from fewer than two values.
func (s Stat) StdDev() (float64, error) {
	if s.Std == nil {
		return 0, fmt.Errorf("%w: %s has %d value(s)", core.ErrUndefinedStdDev, s.Column, s.N)
	}
	return *s.Std, nil
}

var printer = message.NewPrinter(language.English)

// Display formats the summary as "mean +/- std" with two decimals.
func (s Stat) Display() string {
	if s.Std == nil {
		return printer.Sprintf("%.2f +/- n/a", s.Mean)
	}
	return printer.Sprintf("%.2f +/- %.2f", s.Mean, *s.Std)
}

// Summarize computes the mean and sample standard deviation of every result
// column, in configuration order, reading columns under prefix.
//
// An empty table yields core.ErrEmptyInput. NULL or non-numeric cells are an
// error rather than being skipped.
func Summarize(table *core.Table, results core.ResultsConfig, prefix string) ([]Stat, error) {
	if err := results.ValidatePrefix(prefix); err != nil {
		return nil, err
	}
	if table == nil || table.Len() == 0 {
		return nil, core.ErrEmptyInput
	}

	out := make([]Stat, 0, len(results.Columns))
	for _, rc := range results.Columns {
		column := core.EffectiveColumn(prefix, rc.Column)

		values, err := table.Floats(column)
		if err != nil {
			var colErr *core.ColumnError
			if errors.As(err, &colErr) {
				colErr.Context = "result"
			}
			return nil, err
		}

		s := Stat{Label: rc.Label, Column: column, N: len(values)}
		if len(values) < 2 {
			s.Mean = stat.Mean(values, nil)
		} else {
			mean, std := stat.MeanStdDev(values, nil)
			s.Mean = mean
			s.Std = &std
		}
		out = append(out, s)
	}
	return out, nil
}
