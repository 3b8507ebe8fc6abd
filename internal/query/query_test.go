package query

import (
	"errors"
	"fmt"
	"testing"

	"github.com/leapstack-labs/runlens/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var runFilters = []core.FilterSpec{
	{Kind: core.FilterSingleValued, Column: "Noise_distribution", Label: "Noise distribution"},
	{Kind: core.FilterRangeContinuous, Column: "Tau", Label: "Tau"},
	{Kind: core.FilterRangeDiscrete, Column: "Syntethic_Neurons", Label: "Synthetic neurons"},
}

func TestCompile(t *testing.T) {
	tests := []struct {
		name       string
		sel        core.Selection
		wantSQL    string
		wantParams []any
	}{
		{
			name:    "empty selection is identity",
			sel:     core.Selection{},
			wantSQL: "",
		},
		{
			name: "single value and range",
			sel: core.Selection{
				"Noise_distribution": core.Single("Gaussian"),
				"Tau":                core.Between(0.1, 0.5),
			},
			wantSQL:    `"Noise_distribution" = ? AND "Tau" BETWEEN ? AND ?`,
			wantParams: []any{"Gaussian", 0.1, 0.5},
		},
		{
			name:       "equal bounds collapse to equality",
			sel:        core.Selection{"Tau": core.Between(0.5, 0.5)},
			wantSQL:    `"Tau" = ?`,
			wantParams: []any{0.5},
		},
		{
			name:       "single value on range filter collapses to equality",
			sel:        core.Selection{"Tau": core.Single(0.5)},
			wantSQL:    `"Tau" = ?`,
			wantParams: []any{0.5},
		},
		{
			name:    "single-valued filter without value is skipped",
			sel:     core.Selection{"Noise_distribution": {}},
			wantSQL: "",
		},
		{
			name:    "unconfigured column is ignored",
			sel:     core.Selection{"Seed": core.Single(int64(7))},
			wantSQL: "",
		},
		{
			name: "parameters follow configuration order",
			sel: core.Selection{
				"Syntethic_Neurons":  core.Between(int64(10), int64(30)),
				"Noise_distribution": core.Single("Uniform"),
			},
			wantSQL:    `"Noise_distribution" = ? AND "Syntethic_Neurons" BETWEEN ? AND ?`,
			wantParams: []any{"Uniform", int64(10), int64(30)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred, err := Compile(runFilters, tt.sel)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, pred.SQL())
			assert.Equal(t, tt.wantParams, pred.Params())
			assert.Equal(t, tt.wantSQL == "", pred.IsIdentity())
		})
	}
}

func TestCompile_InvertedRange(t *testing.T) {
	_, err := Compile(runFilters, core.Selection{"Tau": core.Between(0.9, 0.1)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidRange))
	assert.True(t, core.IsRecoverable(err))
}

func TestCompile_ShapeMismatch(t *testing.T) {
	tests := []struct {
		name string
		sel  core.Selection
	}{
		{name: "bounds on single-valued filter", sel: core.Selection{"Noise_distribution": core.Between("Gaussian", "Gaussian")}},
		{name: "half-open range", sel: core.Selection{"Tau": {Min: 0.1}}},
		{name: "value and bounds", sel: core.Selection{"Tau": {Value: 0.5, Min: 0.1, Max: 0.9}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(runFilters, tt.sel)
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrSelectionShape), "got %v", err)
			assert.True(t, core.IsRecoverable(err))
		})
	}
}

func TestCompile_ParamCount(t *testing.T) {
	choices := map[string][]core.Choice{
		"Noise_distribution": {{}, core.Single("Gaussian")},
		"Tau":                {{}, core.Between(0.1, 0.9), core.Between(0.5, 0.5)},
		"Syntethic_Neurons":  {{}, core.Between(int64(10), int64(20))},
	}

	for _, noise := range choices["Noise_distribution"] {
		for _, tau := range choices["Tau"] {
			for _, neurons := range choices["Syntethic_Neurons"] {
				sel := core.Selection{"Noise_distribution": noise, "Tau": tau, "Syntethic_Neurons": neurons}
				name := fmt.Sprintf("%v/%v/%v", noise, tau, neurons)
				t.Run(name, func(t *testing.T) {
					want := 0
					if noise.HasValue() {
						want++
					}
					for _, c := range []core.Choice{tau, neurons} {
						switch {
						case c.Collapsed():
							want++
						case c.HasRange():
							want += 2
						}
					}

					pred, err := Compile(runFilters, sel)
					require.NoError(t, err)
					assert.Len(t, pred.Params(), want)
				})
			}
		}
	}
}

func TestPredicate_Render(t *testing.T) {
	pred, err := Compile(runFilters, core.Selection{
		"Noise_distribution": core.Single("Gaussian"),
		"Tau":                core.Between(0.1, 0.5),
	})
	require.NoError(t, err)

	got := pred.Render(
		func(s string) string { return "[" + s + "]" },
		func(i int) string { return fmt.Sprintf("$%d", i) },
	)
	assert.Equal(t, "[Noise_distribution] = $1 AND [Tau] BETWEEN $2 AND $3", got)
	assert.Equal(t, "Noise_distribution = Gaussian AND Tau BETWEEN 0.1 AND 0.5", pred.String())
	assert.Equal(t, []string{"Noise_distribution", "Tau"}, pred.Columns())
}

func TestPredicate_Match(t *testing.T) {
	pred, err := Compile(runFilters, core.Selection{
		"Noise_distribution": core.Single("Gaussian"),
		"Tau":                core.Between(0.1, 0.5),
	})
	require.NoError(t, err)

	row := func(noise any, tau any) func(string) (any, bool) {
		m := map[string]any{"Noise_distribution": noise, "Tau": tau}
		return func(col string) (any, bool) {
			v, ok := m[col]
			return v, ok
		}
	}

	assert.True(t, pred.Match(row("Gaussian", 0.1)), "lower bound is inclusive")
	assert.True(t, pred.Match(row("Gaussian", 0.5)), "upper bound is inclusive")
	assert.False(t, pred.Match(row("Gaussian", 0.9)))
	assert.False(t, pred.Match(row("Uniform", 0.1)))
	assert.False(t, pred.Match(row(nil, 0.1)), "NULL never matches")

	var identity *Predicate
	assert.True(t, identity.Match(row(nil, nil)))
	assert.Equal(t, "TRUE", identity.String())
}
