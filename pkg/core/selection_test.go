package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChoice(t *testing.T) {
	single := Single("Gaussian")
	assert.True(t, single.HasValue())
	assert.False(t, single.HasRange())

	rng := Between(0.1, 0.5)
	assert.False(t, rng.HasValue())
	assert.True(t, rng.HasRange())
	assert.False(t, rng.Collapsed())

	assert.True(t, Between(int64(3), 3.0).Collapsed())
	assert.False(t, Choice{Min: 1.0}.HasRange(), "half-open range is not a range")
}

func TestChoice_Fit(t *testing.T) {
	noise := FilterSpec{Kind: FilterSingleValued, Column: "Noise_distribution"}
	tau := FilterSpec{Kind: FilterRangeDiscrete, Column: "Tau"}

	tests := []struct {
		name    string
		filter  FilterSpec
		choice  Choice
		want    Choice
		wantErr bool
	}{
		{name: "single value", filter: noise, choice: Single("Gaussian"), want: Single("Gaussian")},
		{name: "empty single", filter: noise, choice: Choice{}, want: Choice{}},
		{name: "bounds on single-valued filter", filter: noise, choice: Between("Gaussian", "Gaussian"), wantErr: true},
		{name: "lone min on single-valued filter", filter: noise, choice: Choice{Min: "Gaussian"}, wantErr: true},
		{name: "range", filter: tau, choice: Between(0.1, 0.5), want: Between(0.1, 0.5)},
		{name: "value on range filter collapses", filter: tau, choice: Single(0.5), want: Between(0.5, 0.5)},
		{name: "empty range", filter: tau, choice: Choice{}, want: Choice{}},
		{name: "half-open range", filter: tau, choice: Choice{Max: 0.5}, wantErr: true},
		{name: "value and bounds", filter: tau, choice: Choice{Value: 0.5, Min: 0.1, Max: 0.9}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.choice.Fit(tt.filter)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrSelectionShape))
				assert.True(t, IsRecoverable(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelection_Clone(t *testing.T) {
	sel := Selection{"Tau": Between(0.1, 0.5)}
	clone := sel.Clone()
	clone["Tau"] = Between(0.2, 0.3)

	assert.Equal(t, Between(0.1, 0.5), sel["Tau"])
	assert.NotNil(t, Selection(nil).Clone())
}

func TestSelection_Validate(t *testing.T) {
	filters := []FilterSpec{
		{Kind: FilterSingleValued, Column: "Noise_distribution"},
		{Kind: FilterRangeContinuous, Column: "Tau"},
		{Kind: FilterRangeDiscrete, Column: "Syntethic_Neurons"},
	}

	tests := []struct {
		name    string
		sel     Selection
		wantErr bool
	}{
		{name: "empty selection", sel: Selection{}},
		{name: "ordered range", sel: Selection{"Tau": Between(0.1, 0.5)}},
		{name: "collapsed range", sel: Selection{"Syntethic_Neurons": Between(int64(20), int64(20))}},
		{name: "inverted range", sel: Selection{"Tau": Between(0.5, 0.1)}, wantErr: true},
		{name: "single-valued filter ignores bounds", sel: Selection{"Noise_distribution": Between("b", "a")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sel.Validate(filters)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRange))

			var rangeErr *RangeError
			require.ErrorAs(t, err, &rangeErr)
			assert.Equal(t, "Tau", rangeErr.Column)
		})
	}
}
