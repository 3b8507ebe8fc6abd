// Package query compiles a filter selection into a conjunctive predicate.
//
// A compiled Predicate is backend neutral: it renders to parameterized SQL
// for adapter-backed sources and evaluates directly against in-memory rows.
package query

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/runlens/pkg/core"
)

// Op is the comparison a clause applies.
type Op int

const (
	// OpEq matches rows whose column equals the single parameter.
	OpEq Op = iota
	// OpBetween matches rows whose column lies in [min, max], inclusive.
	OpBetween
)

func (o Op) String() string {
	if o == OpBetween {
		return "BETWEEN"
	}
	return "="
}

// Clause is one predicate over one column.
type Clause struct {
	Column string
	Op     Op
	Params []any
}

func (c Clause) String() string {
	if c.Op == OpBetween {
		return fmt.Sprintf("%s BETWEEN %s AND %s", c.Column, core.FormatValue(c.Params[0]), core.FormatValue(c.Params[1]))
	}
	return fmt.Sprintf("%s = %s", c.Column, core.FormatValue(c.Params[0]))
}

// Predicate is the AND of its clauses. The zero value matches every row.
type Predicate struct {
	clauses []Clause
}

// Compile walks filters in configuration order and emits a clause for every
// filter with an active choice. Filters without a choice are skipped; a
// range with equal bounds collapses to equality. A choice that does not fit
// its filter kind fails with core.ErrSelectionShape.
func Compile(filters []core.FilterSpec, sel core.Selection) (*Predicate, error) {
	p := &Predicate{}
	for _, f := range filters {
		choice, ok := sel.Lookup(f.Column)
		if !ok {
			continue
		}
		choice, err := choice.Fit(f)
		if err != nil {
			return nil, err
		}

		if !f.Kind.IsRange() {
			if choice.HasValue() {
				p.clauses = append(p.clauses, Clause{Column: f.Column, Op: OpEq, Params: []any{choice.Value}})
			}
			continue
		}

		if !choice.HasRange() {
			continue
		}
		switch c := core.CompareValues(choice.Min, choice.Max); {
		case c > 0:
			return nil, &core.RangeError{Column: f.Column, Min: choice.Min, Max: choice.Max}
		case c == 0:
			p.clauses = append(p.clauses, Clause{Column: f.Column, Op: OpEq, Params: []any{choice.Min}})
		default:
			p.clauses = append(p.clauses, Clause{Column: f.Column, Op: OpBetween, Params: []any{choice.Min, choice.Max}})
		}
	}
	return p, nil
}

// Clauses returns the compiled clauses in emission order.
func (p *Predicate) Clauses() []Clause {
	if p == nil {
		return nil
	}
	return p.clauses
}

// IsIdentity reports whether the predicate matches every row.
func (p *Predicate) IsIdentity() bool {
	return p == nil || len(p.clauses) == 0
}

// Params returns the bind parameters in placeholder order.
func (p *Predicate) Params() []any {
	var params []any
	for _, c := range p.Clauses() {
		params = append(params, c.Params...)
	}
	return params
}

// Columns returns the columns the predicate references.
func (p *Predicate) Columns() []string {
	cols := make([]string, 0, len(p.Clauses()))
	for _, c := range p.Clauses() {
		cols = append(cols, c.Column)
	}
	return cols
}

// Render formats the predicate as a SQL boolean expression using the given
// identifier quoting and 1-based placeholder functions. The identity
// predicate renders as the empty string.
func (p *Predicate) Render(quote func(string) string, placeholder func(int) string) string {
	if p.IsIdentity() {
		return ""
	}
	parts := make([]string, 0, len(p.clauses))
	n := 0
	next := func() string {
		n++
		return placeholder(n)
	}
	for _, c := range p.clauses {
		switch c.Op {
		case OpBetween:
			parts = append(parts, fmt.Sprintf("%s BETWEEN %s AND %s", quote(c.Column), next(), next()))
		default:
			parts = append(parts, fmt.Sprintf("%s = %s", quote(c.Column), next()))
		}
	}
	return strings.Join(parts, " AND ")
}

// SQL renders the predicate with double-quoted identifiers and "?" markers.
func (p *Predicate) SQL() string {
	return p.Render(
		func(s string) string { return `"` + strings.ReplaceAll(s, `"`, `""`) + `"` },
		func(int) string { return "?" },
	)
}

func (p *Predicate) String() string {
	if p.IsIdentity() {
		return "TRUE"
	}
	parts := make([]string, len(p.clauses))
	for i, c := range p.clauses {
		parts[i] = c.String()
	}
	return strings.Join(parts, " AND ")
}

// Match evaluates the predicate against one row. lookup returns the row's
// value for a column. NULL cells never match, as in SQL.
func (p *Predicate) Match(lookup func(column string) (any, bool)) bool {
	for _, c := range p.Clauses() {
		v, ok := lookup(c.Column)
		if !ok || v == nil {
			return false
		}
		switch c.Op {
		case OpBetween:
			if core.CompareValues(v, c.Params[0]) < 0 || core.CompareValues(v, c.Params[1]) > 0 {
				return false
			}
		default:
			if !core.ValuesEqual(v, c.Params[0]) {
				return false
			}
		}
	}
	return true
}
