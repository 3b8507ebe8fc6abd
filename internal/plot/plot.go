// Package plot composes the multi-panel comparison figure: one scatter panel
// per configured y-axis, a shared x-axis, and one color scale whose legend
// is attached to the last panel only.
package plot

import (
	"errors"
	"math"

	"github.com/leapstack-labs/runlens/pkg/core"
)

// Layout constants for the composed figure.
const (
	PanelHeight    = 300
	FigureWidth    = 1500
	ColorScaleName = "Bluered"
	MarkerSize     = 5
)

// Colorbar is the legend metadata for the shared color scale.
// Positions are fractions of the panel's plotting area.
type Colorbar struct {
	Title     string  `json:"title"`
	Len       float64 `json:"len"`
	Thickness int     `json:"thickness"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	YAnchor   string  `json:"yanchor"`
}

// ColorScale maps color values onto the named scale. Bounds are computed
// once over the whole table. Categories is set when the color variable is
// not numeric; values are then ordinal codes into it.
type ColorScale struct {
	Name       string   `json:"name"`
	Min        float64  `json:"min"`
	Max        float64  `json:"max"`
	Categories []string `json:"categories,omitempty"`
}

// Normalize maps v into [0, 1] on the scale.
func (s ColorScale) Normalize(v float64) float64 {
	if s.Max <= s.Min {
		return 0.5
	}
	return math.Min(1, math.Max(0, (v-s.Min)/(s.Max-s.Min)))
}

// Panel is one scatter sub-plot.
type Panel struct {
	Title      string    `json:"title"`
	XColumn    string    `json:"x_column"`
	YColumn    string    `json:"y_column"`
	XLabel     string    `json:"x_label"`
	YLabel     string    `json:"y_label"`
	X          []float64 `json:"x"`
	Y          []float64 `json:"y"`
	Color      []float64 `json:"color"`
	ShowLegend bool      `json:"show_legend"`
	Colorbar   *Colorbar `json:"colorbar"`
}

// Descriptor is the complete, backend-independent figure description.
type Descriptor struct {
	Panels     []Panel    `json:"panels"`
	ColorLabel string     `json:"color_label"`
	ColorScale ColorScale `json:"color_scale"`
	Width      int        `json:"width"`
	Height     int        `json:"height"`
}

// Compose builds the figure for table. Y columns are read under prefix;
// the x-axis and color variable are never prefixed.
func Compose(table *core.Table, spec core.PlotSpec, prefix string) (*Descriptor, error) {
	if table == nil || table.Len() == 0 {
		return nil, core.ErrEmptyInput
	}

	xs, err := floats(table, spec.XAxis.Name, "plot x axis")
	if err != nil {
		return nil, err
	}

	colors, scale, err := colorValues(table, spec.ColorVariable.Name)
	if err != nil {
		return nil, err
	}

	d := &Descriptor{
		Panels:     make([]Panel, 0, len(spec.YAxes)),
		ColorLabel: spec.ColorVariable.Label,
		ColorScale: scale,
		Width:      FigureWidth,
		Height:     PanelHeight * len(spec.YAxes),
	}

	for _, y := range spec.YAxes {
		column := core.EffectiveColumn(prefix, y.Name)
		ys, err := floats(table, column, "plot y axis")
		if err != nil {
			return nil, err
		}
		d.Panels = append(d.Panels, Panel{
			Title:   y.Label,
			XColumn: spec.XAxis.Name,
			YColumn: column,
			XLabel:  spec.XAxis.Label,
			YLabel:  y.Label,
			X:       xs,
			Y:       ys,
			Color:   colors,
		})
	}

	if n := len(d.Panels); n > 0 {
		d.Panels[n-1].Colorbar = &Colorbar{
			Title:     spec.ColorVariable.Label,
			Len:       0.5,
			Thickness: 15,
			X:         1.02,
			Y:         0.5,
			YAnchor:   "middle",
		}
	}
	return d, nil
}

func floats(table *core.Table, column, context string) ([]float64, error) {
	values, err := table.Floats(column)
	if err != nil {
		var colErr *core.ColumnError
		if errors.As(err, &colErr) {
			colErr.Context = context
		}
		return nil, err
	}
	return values, nil
}

// colorValues returns one color value per row and the shared scale.
// A column with any non-numeric cell is treated as categorical.
func colorValues(table *core.Table, column string) ([]float64, ColorScale, error) {
	scale := ColorScale{Name: ColorScaleName}

	cells, ok := table.Column(column)
	if !ok {
		return nil, scale, &core.ColumnError{Err: core.ErrMissingResultColumn, Column: column, Context: "plot color variable"}
	}

	out := make([]float64, len(cells))
	numeric := true
	for i, c := range cells {
		f, ok := core.ToFloat(c)
		if !ok {
			numeric = false
			break
		}
		out[i] = f
	}

	if !numeric {
		codes := make(map[string]int)
		for i, c := range cells {
			key := core.FormatValue(c)
			code, seen := codes[key]
			if !seen {
				code = len(scale.Categories)
				codes[key] = code
				scale.Categories = append(scale.Categories, key)
			}
			out[i] = float64(code)
		}
	}

	scale.Min, scale.Max = out[0], out[0]
	for _, v := range out[1:] {
		scale.Min = math.Min(scale.Min, v)
		scale.Max = math.Max(scale.Max, v)
	}
	return out, scale, nil
}
