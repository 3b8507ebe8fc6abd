package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterKind(t *testing.T) {
	assert.True(t, FilterRangeContinuous.IsRange())
	assert.True(t, FilterRangeDiscrete.IsRange())
	assert.False(t, FilterSingleValued.IsRange())

	assert.True(t, FilterSingleValued.Valid())
	assert.False(t, FilterKind("slider").Valid())
}

func TestEffectiveColumn(t *testing.T) {
	assert.Equal(t, "Score", EffectiveColumn("", "Score"))
	assert.Equal(t, "Linear_Score", EffectiveColumn("Linear", "Score"))
}

func TestResultsConfig_ValidatePrefix(t *testing.T) {
	tests := []struct {
		name     string
		results  ResultsConfig
		prefix   string
		wantErr  bool
		contains string
	}{
		{name: "no prefixes, empty prefix", results: ResultsConfig{}, prefix: ""},
		{name: "no prefixes, prefix given", results: ResultsConfig{}, prefix: "Linear", wantErr: true, contains: "no condition prefixes"},
		{name: "configured prefix", results: ResultsConfig{ConditionPrefixes: []string{"Linear", "Nonlinear"}}, prefix: "Nonlinear"},
		{
			name:     "unknown prefix",
			results:  ResultsConfig{ConditionPrefixes: []string{"Linear", "Nonlinear"}},
			prefix:   "Quadratic",
			wantErr:  true,
			contains: "Available prefixes: Linear, Nonlinear",
		},
		{
			name:    "empty prefix when prefixes configured",
			results: ResultsConfig{ConditionPrefixes: []string{"Linear"}},
			prefix:  "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.results.ValidatePrefix(tt.prefix)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidPrefix))
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}

func TestTargetConfig(t *testing.T) {
	target := &TargetConfig{
		Type:     "postgres",
		Host:     "localhost",
		Port:     5432,
		Database: "experiments",
		User:     "analyst",
		Password: "secret",
	}

	cfg := target.AdapterConfig()
	assert.Equal(t, "postgres", cfg.Type)
	assert.Equal(t, "analyst", cfg.Username)
	assert.Equal(t, "secret", cfg.Password)

	assert.Equal(t, "postgres://localhost:5432/experiments", target.String())
	assert.NotContains(t, target.String(), "secret")

	local := &TargetConfig{Type: "sqlite", Database: ":memory:"}
	assert.Equal(t, "sqlite::memory:", local.String())
}

func TestErrors(t *testing.T) {
	colErr := &ColumnError{Err: ErrUnknownColumn, Column: "Tau", Context: "filter"}
	assert.Equal(t, `unknown column: filter "Tau"`, colErr.Error())
	assert.True(t, errors.Is(colErr, ErrUnknownColumn))

	assert.True(t, IsRecoverable(&RangeError{Column: "Tau", Min: 0.5, Max: 0.1}))
	assert.True(t, IsRecoverable(ErrEmptyInput))
	assert.False(t, IsRecoverable(colErr))
	assert.False(t, IsRecoverable(&PrefixError{Prefix: "x"}))

	shapeErr := &ShapeError{Column: "Noise_distribution", Kind: FilterSingleValued, Reason: "range bounds given"}
	assert.Equal(t, `selection does not match filter kind for "Noise_distribution" (single_valued): range bounds given`, shapeErr.Error())
	assert.True(t, errors.Is(shapeErr, ErrSelectionShape))
	assert.True(t, IsRecoverable(shapeErr))
	assert.True(t, IsRecoverable(fmt.Errorf("column %q: %w", "PA_Score", ErrNonNumeric)))
}
