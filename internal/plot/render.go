package plot

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Padding around each panel's plotting area, in pixels. The right side
// leaves room for the colorbar and its labels.
const (
	padTop    = 30
	padLeft   = 20
	padRight  = 140
	padBottom = 20
)

// Bluered interpolates the blue-to-red scale at t in [0, 1].
func Bluered(t float64) drawing.Color {
	t = math.Min(1, math.Max(0, t))
	return drawing.Color{R: uint8(math.Round(255 * t)), G: 0, B: uint8(math.Round(255 * (1 - t))), A: 255}
}

// RenderPNG draws the figure as a single PNG: panels stacked top to bottom,
// the colorbar drawn beside the panel that carries it.
func RenderPNG(w io.Writer, d *Descriptor) error {
	if d == nil || len(d.Panels) == 0 {
		return errors.New("plot has no panels")
	}

	panelH := d.Height / len(d.Panels)
	canvas := image.NewRGBA(image.Rect(0, 0, d.Width, d.Height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	for i, p := range d.Panels {
		img, err := renderPanel(p, d.ColorScale, d.Width, panelH)
		if err != nil {
			return fmt.Errorf("failed to render panel %q: %w", p.Title, err)
		}
		area := image.Rect(0, i*panelH, d.Width, (i+1)*panelH)
		draw.Draw(canvas, area, img, img.Bounds().Min, draw.Over)

		if p.Colorbar != nil {
			drawColorbar(canvas, area, d.ColorScale, p.Colorbar)
		}
	}

	return png.Encode(w, canvas)
}

func renderPanel(p Panel, scale ColorScale, width, height int) (image.Image, error) {
	series := chart.ContinuousSeries{
		Name:    p.YLabel,
		XValues: p.X,
		YValues: p.Y,
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    MarkerSize,
			DotColorProvider: func(_, _ chart.Range, index int, _, _ float64) drawing.Color {
				return Bluered(scale.Normalize(p.Color[index]))
			},
		},
	}

	ch := chart.Chart{
		Title:      p.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: padTop, Left: padLeft, Right: padRight, Bottom: padBottom}},
		XAxis:      chart.XAxis{Name: p.XLabel, Range: paddedRange(p.X)},
		YAxis:      chart.YAxis{Name: p.YLabel, Range: paddedRange(p.Y)},
		Series:     []chart.Series{series},
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

// paddedRange returns the data range, widened when every value is equal
// so the axis never collapses to zero width.
func paddedRange(values []float64) *chart.ContinuousRange {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		pad := math.Max(math.Abs(lo)*0.1, 0.5)
		lo, hi = lo-pad, hi+pad
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

// colorbarRect positions the bar relative to the panel's plotting area.
func colorbarRect(area image.Rectangle, cb *Colorbar) image.Rectangle {
	plotLeft := area.Min.X + padLeft
	plotRight := area.Max.X - padRight
	plotTop := area.Min.Y + padTop
	plotH := area.Dy() - padTop - padBottom

	x := plotLeft + int(cb.X*float64(plotRight-plotLeft))
	length := int(cb.Len * float64(plotH))
	anchor := plotTop + int((1-cb.Y)*float64(plotH))

	top := anchor
	switch cb.YAnchor {
	case "middle":
		top = anchor - length/2
	case "bottom":
		top = anchor - length
	}
	return image.Rect(x, top, x+cb.Thickness, top+length)
}

func drawColorbar(dst *image.RGBA, area image.Rectangle, scale ColorScale, cb *Colorbar) {
	bar := colorbarRect(area, cb)
	span := bar.Dy() - 1
	for y := bar.Min.Y; y < bar.Max.Y; y++ {
		t := 1.0
		if span > 0 {
			t = 1 - float64(y-bar.Min.Y)/float64(span)
		}
		draw.Draw(dst, image.Rect(bar.Min.X, y, bar.Max.X, y+1), image.NewUniform(Bluered(t)), image.Point{}, draw.Src)
	}

	face := basicfont.Face7x13
	ascent := face.Metrics().Ascent.Ceil()
	labelX := bar.Max.X + 4

	drawText(dst, face, cb.Title, bar.Min.X, bar.Min.Y-6)

	if len(scale.Categories) > 0 {
		for i, name := range scale.Categories {
			t := scale.Normalize(float64(i))
			y := bar.Max.Y - int(t*float64(span))
			drawText(dst, face, name, labelX, y+ascent/2)
		}
		return
	}
	drawText(dst, face, formatTick(scale.Max), labelX, bar.Min.Y+ascent)
	drawText(dst, face, formatTick(scale.Min), labelX, bar.Max.Y)
}

func drawText(dst *image.RGBA, face font.Face, text string, x, y int) {
	dr := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	dr.DrawString(text)
}

func formatTick(v float64) string {
	return fmt.Sprintf("%.4g", v)
}
