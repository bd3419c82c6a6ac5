// Package render draws chart specs as PNG images for clients that cannot
// draw the declarative spec themselves.
package render

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/okian/climadash/internal/domain/chartspec"
	"github.com/okian/climadash/pkg/metrics"
)

const (
	defaultWidth  = 960
	defaultHeight = 540
	areaAlpha     = 64
)

var (
	// ErrUnsupportedFamily means the family has no raster rendering.
	ErrUnsupportedFamily = errors.New("chart family cannot be rendered as PNG")
	// ErrEmptyChart means the spec has no drawable points.
	ErrEmptyChart = errors.New("chart has no points")
)

// Renderer renders specs at a fixed size.
type Renderer struct {
	width, height int
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithSize sets the image size in pixels.
func WithSize(width, height int) Option {
	return func(r *Renderer) {
		if width > 0 && height > 0 {
			r.width, r.height = width, height
		}
	}
}

// New creates a renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{width: defaultWidth, height: defaultHeight}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Supported reports whether f can be rendered.
func Supported(f chartspec.Family) bool {
	switch f {
	case chartspec.FamilyLine, chartspec.FamilyArea, chartspec.FamilyBar,
		chartspec.FamilyChoropleth, chartspec.FamilyMultiPanel:
		return true
	default:
		return false
	}
}

// PNG writes s to w.
func (r *Renderer) PNG(w io.Writer, s chartspec.Spec) error { //nolint:gocritic // hugeParam: specs are values
	err := r.render(w, s)
	outcome := "ok"
	switch {
	case errors.Is(err, ErrUnsupportedFamily):
		outcome = "unsupported"
	case err != nil:
		outcome = "error"
	}
	metrics.RecordChartRender(string(s.Family), outcome)
	return err
}

func (r *Renderer) render(w io.Writer, s chartspec.Spec) error { //nolint:gocritic // hugeParam: specs are values
	if !Supported(s.Family) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFamily, s.Family)
	}
	if s.Family == chartspec.FamilyBar || s.Family == chartspec.FamilyChoropleth {
		if len(s.Series) == 1 && s.Series[0].Kind == chartspec.KindBar {
			return r.bars(w, s)
		}
	}
	return r.lines(w, s)
}

// bars renders a single categorical series.
func (r *Renderer) bars(w io.Writer, s chartspec.Spec) error { //nolint:gocritic // hugeParam: specs are values
	pts := s.Series[0].Points
	if len(pts) == 0 {
		return ErrEmptyChart
	}
	fill := color(s.Series[0].Color)
	bars := make([]chart.Value, len(pts))
	for i, p := range pts {
		bars[i] = chart.Value{
			Label: label(p),
			Value: p.Y,
			Style: chart.Style{FillColor: fill, StrokeColor: fill},
		}
	}
	bc := chart.BarChart{
		Title:    s.Title,
		Width:    r.width,
		Height:   r.height,
		BarWidth: max(4, r.width/(2*len(bars)+1)),
		Bars:     bars,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		YAxis: chart.YAxis{Name: axisName(s.XAxis)},
	}
	if err := bc.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render bars: %w", err)
	}
	return nil
}

// lines renders every series with numeric X values. Series on panels other
// than the first, or on the y2 axis, go to the secondary axis.
func (r *Renderer) lines(w io.Writer, s chartspec.Spec) error { //nolint:gocritic // hugeParam: specs are values
	var series []chart.Series
	secondary := false
	var primary, other flatness
	for _, sr := range s.Series {
		if len(sr.Points) == 0 {
			continue
		}
		xs := make([]float64, len(sr.Points))
		ys := make([]float64, len(sr.Points))
		for i, p := range sr.Points {
			xs[i], ys[i] = p.X, p.Y
		}
		if len(xs) == 1 {
			xs = []float64{xs[0], xs[0] + 1}
			ys = []float64{ys[0], ys[0]}
		}
		cs := chart.ContinuousSeries{Name: sr.Name, XValues: xs, YValues: ys, Style: style(sr)}
		if sr.Axis == chartspec.AxisSecondary || sr.Panel > 0 {
			cs.YAxis = chart.YAxisSecondary
			secondary = true
			other.observe(ys)
		} else {
			primary.observe(ys)
		}
		series = append(series, cs)
	}
	if len(series) == 0 {
		return ErrEmptyChart
	}

	ch := chart.Chart{
		Title:  s.Title,
		Width:  r.width,
		Height: r.height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis:  chart.XAxis{Name: axisName(s.XAxis)},
		YAxis:  chart.YAxis{Name: axisName(s.YAxis), Range: primary.padding()},
		Series: series,
	}
	if secondary {
		ch.YAxisSecondary = chart.YAxis{Range: other.padding()}
		if s.Y2Axis != nil {
			ch.YAxisSecondary.Name = axisName(*s.Y2Axis)
		}
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render lines: %w", err)
	}
	return nil
}

// flatness tracks the value range of one axis. go-chart rejects a zero
// range, so a flat axis gets an explicit one.
type flatness struct {
	seen     bool
	min, max float64
}

func (f *flatness) observe(ys []float64) {
	for _, y := range ys {
		if !f.seen {
			f.min, f.max, f.seen = y, y, true
			continue
		}
		f.min, f.max = min(f.min, y), max(f.max, y)
	}
}

func (f *flatness) padding() chart.Range {
	if !f.seen || f.min != f.max {
		return nil
	}
	return &chart.ContinuousRange{Min: f.min - 1, Max: f.max + 1}
}

func style(sr chartspec.Series) chart.Style { //nolint:gocritic // hugeParam: series are values
	c := color(sr.Color)
	st := chart.Style{StrokeColor: c, StrokeWidth: 2}
	switch sr.Kind {
	case chartspec.KindDashed:
		st.StrokeDashArray = []float64{6, 4}
	case chartspec.KindMarkers:
		st.StrokeColor = drawing.ColorTransparent
		st.DotColor = c
		st.DotWidth = 2
	case chartspec.KindArea, chartspec.KindBar:
		st.FillColor = c.WithAlpha(areaAlpha)
	}
	return st
}

func color(hex string) drawing.Color {
	hex = strings.TrimPrefix(hex, "#")
	if hex == "" {
		return chart.ColorBlue
	}
	return drawing.ColorFromHex(hex)
}

func label(p chartspec.Point) string {
	if p.Label != "" {
		return p.Label
	}
	return strconv.FormatFloat(p.X, 'f', -1, 64)
}

func axisName(a chartspec.Axis) string {
	if a.Unit == "" {
		return a.Title
	}
	return a.Title + " (" + a.Unit + ")"
}
