// Package plot renders an annotated SVG of a spectrum and its peaks.
//
// The layout follows spectroscopy convention: wavenumber decreases left to
// right (optionally on a log axis), transmittance spans the vertical axis,
// and each detected peak gets a tick mark with a rotated "<wavenumber>
// <strength>" annotation below the curve.
package plot

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/cwbudde/algo-ir/peaks"
	"github.com/cwbudde/algo-ir/spectrum"
)

// Style controls the appearance of the rendered plot.
type Style struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Margin     int    `yaml:"margin"`
	LineColor  string `yaml:"line_color"`
	AxisColor  string `yaml:"axis_color"`
	LabelColor string `yaml:"label_color"`

	LineWidth float64 `yaml:"line_width"`
	AxisWidth float64 `yaml:"axis_width"`

	FontSize      int `yaml:"font_size"`
	LabelFontSize int `yaml:"label_font_size"`

	// LogX plots the wavenumber axis logarithmically, the conventional
	// presentation for mid-IR spectra.
	LogX bool `yaml:"log_x"`
}

// DefaultStyle returns the styling used when no configuration overrides it.
func DefaultStyle() Style {
	return Style{
		Width:         800,
		Height:        400,
		Margin:        50,
		LineColor:     "#00004d",
		AxisColor:     "#000000",
		LabelColor:    "#000000",
		LineWidth:     0.75,
		AxisWidth:     0.5,
		FontSize:      11,
		LabelFontSize: 9,
		LogX:          true,
	}
}

// mapper converts data coordinates to pixel coordinates.
type mapper struct {
	st           Style
	wMin, wMax   float64
	yMin, yMax   float64
	logX         bool
	plotW, plotH int
}

func newMapper(s *spectrum.Spectrum, st Style) mapper {
	wMin, wMax := s.Range()
	yMin, yMax := s.IntensityRange()

	// Reserve a fifth of the intensity range below the curve for labels.
	span := yMax - yMin
	if span == 0 {
		span = 1
	}

	yMin -= 0.35 * span
	yMax += 0.05 * span

	logX := st.LogX && wMin > 0

	return mapper{
		st:    st,
		wMin:  wMin,
		wMax:  wMax,
		yMin:  yMin,
		yMax:  yMax,
		logX:  logX,
		plotW: st.Width - 2*st.Margin,
		plotH: st.Height - 2*st.Margin,
	}
}

// x maps a wavenumber to a pixel column; high wavenumbers sit on the left.
func (m mapper) x(w float64) int {
	var frac float64
	if m.logX {
		frac = (math.Log(m.wMax) - math.Log(w)) / (math.Log(m.wMax) - math.Log(m.wMin))
	} else {
		frac = (m.wMax - w) / (m.wMax - m.wMin)
	}

	return m.st.Margin + int(math.Round(frac*float64(m.plotW)))
}

func (m mapper) y(v float64) int {
	frac := (m.yMax - v) / (m.yMax - m.yMin)

	return m.st.Margin + int(math.Round(frac*float64(m.plotH)))
}

// Render writes the spectrum, axes and peak annotations as SVG.
func Render(w io.Writer, s *spectrum.Spectrum, pks []peaks.Peak, title string, st Style) error {
	if st.Width <= 0 || st.Height <= 0 {
		return fmt.Errorf("plot: invalid canvas size %dx%d", st.Width, st.Height)
	}

	m := newMapper(s, st)

	canvas := svg.New(w)
	canvas.Start(st.Width, st.Height)
	canvas.Rect(0, 0, st.Width, st.Height, "fill:white")

	drawFrame(canvas, m, title)
	drawCurve(canvas, m, s)

	for _, pk := range pks {
		drawPeak(canvas, m, s, pk)
	}

	canvas.End()

	return nil
}

func drawFrame(canvas *svg.SVG, m mapper, title string) {
	st := m.st
	axisStyle := fmt.Sprintf("stroke:%s;stroke-width:%g;fill:none", st.AxisColor, st.AxisWidth)
	textStyle := fmt.Sprintf("font-size:%dpx;fill:%s;text-anchor:middle", st.FontSize, st.LabelColor)

	canvas.Rect(st.Margin, st.Margin, m.plotW, m.plotH, axisStyle)

	if title != "" {
		canvas.Text(st.Margin, st.Height-12,
			title, fmt.Sprintf("font-size:%dpx;fill:%s;text-anchor:start", st.FontSize, st.LabelColor))
	}

	// Wavenumber ticks on the top edge, high to low.
	for _, w := range xTicks(m.wMin, m.wMax) {
		x := m.x(w)
		canvas.Line(x, st.Margin, x, st.Margin+5, axisStyle)
		canvas.Text(x, st.Margin-6, fmt.Sprintf("%.0f", w), textStyle)
	}

	canvas.Text(st.Width/2, st.Margin-24, "Wavenumber [1/cm]", textStyle)

	// Intensity ticks on the left edge.
	for _, v := range yTicks(m.yMin, m.yMax) {
		y := m.y(v)
		canvas.Line(st.Margin, y, st.Margin+5, y, axisStyle)
		canvas.Text(st.Margin-8, y+st.FontSize/3,
			fmt.Sprintf("%.0f", v),
			fmt.Sprintf("font-size:%dpx;fill:%s;text-anchor:end", st.FontSize, st.LabelColor))
	}
}

func drawCurve(canvas *svg.SVG, m mapper, s *spectrum.Spectrum) {
	xs := make([]int, s.Len())
	ys := make([]int, s.Len())

	for i := 0; i < s.Len(); i++ {
		w, v := s.At(i)
		xs[i] = m.x(w)
		ys[i] = m.y(v)
	}

	canvas.Polyline(xs, ys,
		fmt.Sprintf("fill:none;stroke:%s;stroke-width:%g", m.st.LineColor, m.st.LineWidth))
}

func drawPeak(canvas *svg.SVG, m mapper, s *spectrum.Spectrum, pk peaks.Peak) {
	v, err := s.IntensityAt(pk.Position)
	if err != nil {
		return
	}

	x := m.x(pk.Position)
	y := m.y(v)

	tickTop := y + 6
	tickBottom := y + 14

	canvas.Line(x, tickTop, x, tickBottom,
		fmt.Sprintf("stroke:%s;stroke-width:%g", m.st.AxisColor, m.st.AxisWidth))

	label := fmt.Sprintf("%.0f %s", pk.Position, pk.Label.Letter())
	if pk.Broad {
		label += " br"
	}

	canvas.Gtransform(fmt.Sprintf("translate(%d,%d) rotate(-90)", x+m.st.LabelFontSize/2, tickBottom+4))
	canvas.Text(0, 0, label,
		fmt.Sprintf("font-size:%dpx;fill:%s;text-anchor:end", m.st.LabelFontSize, m.st.LabelColor))
	canvas.Gend()
}

// xTicks picks round wavenumber ticks spanning the domain.
func xTicks(wMin, wMax float64) []float64 {
	step := tickStep(wMax - wMin)

	var out []float64
	for w := math.Ceil(wMin/step) * step; w <= wMax; w += step {
		out = append(out, w)
	}

	return out
}

func yTicks(yMin, yMax float64) []float64 {
	step := tickStep(yMax - yMin)

	var out []float64
	for v := math.Ceil(yMin/step) * step; v <= yMax; v += step {
		out = append(out, v)
	}

	return out
}

// tickStep returns a 1/2/5-scaled step yielding roughly eight ticks.
func tickStep(span float64) float64 {
	if span <= 0 {
		return 1
	}

	raw := span / 8
	mag := math.Pow(10, math.Floor(math.Log10(raw)))

	switch {
	case raw/mag >= 5:
		return 5 * mag
	case raw/mag >= 2:
		return 2 * mag
	default:
		return mag
	}
}
