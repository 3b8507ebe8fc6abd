package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	return NewTable(
		[]string{"Tau", "Noise_distribution", "Score"},
		[][]any{
			{0.1, "Gaussian", 1.0},
			{0.5, "Uniform", nil},
		},
	)
}

func TestTable_Accessors(t *testing.T) {
	tbl := sampleTable()

	assert.Equal(t, []string{"Tau", "Noise_distribution", "Score"}, tbl.Columns())
	assert.Equal(t, 2, tbl.Len())
	assert.True(t, tbl.HasColumn("Tau"))
	assert.False(t, tbl.HasColumn("tau"))

	v, ok := tbl.Value(1, "Noise_distribution")
	require.True(t, ok)
	assert.Equal(t, "Uniform", v)

	_, ok = tbl.Value(5, "Tau")
	assert.False(t, ok)

	col, ok := tbl.Column("Tau")
	require.True(t, ok)
	assert.Equal(t, []any{0.1, 0.5}, col)
}

func TestTable_Floats(t *testing.T) {
	tbl := sampleTable()

	got, err := tbl.Floats("Tau")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.5}, got)

	_, err = tbl.Floats("Score")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNonNumeric))
	assert.Contains(t, err.Error(), "row 2")

	_, err = tbl.Floats("Missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingResultColumn))
}

func TestTable_Records(t *testing.T) {
	recs := sampleTable().Records()
	require.Len(t, recs, 2)
	assert.Equal(t, map[string]any{"Tau": 0.1, "Noise_distribution": "Gaussian", "Score": 1.0}, recs[0])
}

func TestTable_Empty(t *testing.T) {
	tbl := NewTable([]string{"Tau"}, nil)
	assert.Equal(t, 0, tbl.Len())

	got, err := tbl.Floats("Tau")
	require.NoError(t, err)
	assert.Empty(t, got)
}
