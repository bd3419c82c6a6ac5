package chartspec

import (
	"strconv"
	"time"

	"github.com/okian/climadash/internal/domain/model"
	"github.com/okian/climadash/internal/domain/view"
)

// Families gives the chart family of every mode.
var Families = [model.ModeCount]Family{
	model.ModeTemperatureMap:        FamilyChoropleth,
	model.ModeTemperatureComparison: FamilyBar,
	model.ModeTemperatureTrend:      FamilyLine,
	model.ModeTemperatureRegional:   FamilyChoropleth,
	model.ModeSeaLevelSeries:        FamilyLine,
	model.ModeSeaLevelProjection:    FamilyLine,
	model.ModeSeaLevelRate:          FamilyBar,
	model.ModeSeaLevelSeasonal:      FamilyLine,
	model.ModeEmissionsCountry:      FamilyBar,
	model.ModeEmissionsTrend:        FamilyLine,
	model.ModeEmissionsRegion:       FamilyArea,
	model.ModeCorrelationTime:       FamilyLine,
	model.ModeCorrelationMatrix:     FamilyHeatmap,
	model.ModeCorrelationScatter:    FamilyScatterMatrix,
	model.ModeCorrelationDashboard:  FamilyMultiPanel,
}

type specFunc func(d view.Derived, s *Spec)

var builders = [model.ModeCount]specFunc{
	model.ModeTemperatureMap:        countryValues,
	model.ModeTemperatureComparison: countryValues,
	model.ModeTemperatureTrend:      yearlyWithOverlays,
	model.ModeTemperatureRegional:   stateValues,
	model.ModeSeaLevelSeries:        monthlyWithOverlays,
	model.ModeSeaLevelProjection:    yearlyWithOverlays,
	model.ModeSeaLevelRate:          yearlyBars,
	model.ModeSeaLevelSeasonal:      seasonal,
	model.ModeEmissionsCountry:      countryValues,
	model.ModeEmissionsTrend:        perEntity,
	model.ModeEmissionsRegion:       perEntity,
	model.ModeCorrelationTime:       combinedTime,
	model.ModeCorrelationMatrix:     heatmap,
	model.ModeCorrelationScatter:    scatterMatrix,
	model.ModeCorrelationDashboard:  dashboard,
}

// Build maps d to a chart. Views without rows map to a message chart.
func Build(d view.Derived) Spec {
	title := d.Filter.Title()
	if !d.Mode.Valid() || builders[d.Mode] == nil {
		return Fallback(title, "Unknown visualisation mode")
	}
	if d.Primary.Len() == 0 {
		return Fallback(title, "No data for the current selection")
	}
	s := Spec{Family: Families[d.Mode], Title: title}
	builders[d.Mode](d, &s)
	assignColors(s.Series)
	return s
}

func axisOf(c view.Column) Axis { return Axis{Title: c.Label, Unit: c.Unit} }

var yearAxis = Axis{Title: "Year"}

func yearPoints(v view.View, col int) []Point {
	pts := make([]Point, len(v.Rows))
	for i, r := range v.Rows {
		pts[i] = Point{X: float64(r.Year), Y: r.Values[col]}
	}
	return pts
}

func overlayName(name string) string {
	switch name {
	case "rolling":
		return "Rolling mean"
	case "trend":
		return "Linear trend"
	case "projection":
		return "Projection"
	default:
		return name
	}
}

func overlayKind(name string) SeriesKind {
	if name == "rolling" {
		return KindLine
	}
	return KindDashed
}

// TemperatureScales pins the colour range of each temperature mode so that
// successive animation frames share one scale.
var TemperatureScales = map[model.Mode]ColorScale{
	model.ModeTemperatureMap:        {Name: "RdBu_r", Min: -10, Max: 30},
	model.ModeTemperatureComparison: {Name: "RdBu_r", Min: -20, Max: 40},
	model.ModeTemperatureRegional:   {Name: "RdBu_r", Min: -10, Max: 30},
}

// countryValues draws one value per country. Bars run horizontally in row
// order; the choropleth keeps the order and adds a colour scale.
func countryValues(d view.Derived, s *Spec) {
	col := d.Primary.Columns[0]
	pts := make([]Point, len(d.Primary.Rows))
	for i, r := range d.Primary.Rows {
		pts[i] = Point{Label: r.Entity, Y: r.Values[0]}
	}
	s.Series = []Series{{Name: col.Label, Kind: KindBar, Axis: AxisPrimary, Points: pts}}
	s.XAxis = axisOf(col)
	s.YAxis = Axis{Title: "Country"}
	s.Orientation = Horizontal

	if scale, ok := TemperatureScales[d.Mode]; ok {
		s.ColorScale = &scale
	}
	if s.Family == FamilyChoropleth {
		s.Orientation = ""
	}
}

// stateValues is the choropleth of one country's states.
func stateValues(d view.Derived, s *Spec) {
	countryValues(d, s)
	s.YAxis = Axis{Title: "Region"}
	if len(d.Entities) > 0 {
		s.Title += " - " + d.Entities[0]
	}
}

func yearlyWithOverlays(d view.Derived, s *Spec) {
	col := d.Primary.Columns[0]
	s.XAxis, s.YAxis = yearAxis, axisOf(col)
	s.Series = []Series{{Name: col.Label, Kind: KindLine, Axis: AxisPrimary, Points: yearPoints(d.Primary, 0)}}
	for _, o := range d.Overlays {
		s.Series = append(s.Series, Series{Name: overlayName(o.Name), Kind: overlayKind(o.Name), Axis: AxisPrimary, Points: yearPoints(o, 0)})
	}
}

func monthlyWithOverlays(d view.Derived, s *Spec) {
	col := d.Primary.Columns[0]
	s.XAxis, s.YAxis = Axis{Title: "Date"}, axisOf(col)
	frac := func(v view.View) []Point {
		xs := v.FractionalYears()
		pts := make([]Point, len(xs))
		for i, x := range xs {
			pts[i] = Point{X: x, Y: v.Rows[i].Values[0]}
		}
		return pts
	}
	s.Series = []Series{{Name: "Monthly " + col.Label, Kind: KindMarkers, Axis: AxisPrimary, Points: frac(d.Primary)}}
	for _, o := range d.Overlays {
		s.Series = append(s.Series, Series{Name: overlayName(o.Name), Kind: overlayKind(o.Name), Axis: AxisPrimary, Points: frac(o)})
	}
}

func yearlyBars(d view.Derived, s *Spec) {
	col := d.Primary.Columns[0]
	s.XAxis, s.YAxis = yearAxis, axisOf(col)
	s.Orientation = Vertical
	pts := yearPoints(d.Primary, 0)
	for i := range pts {
		pts[i].Label = strconv.Itoa(d.Primary.Rows[i].Year)
	}
	s.Series = []Series{{Name: col.Label, Kind: KindBar, Axis: AxisPrimary, Points: pts}}
}

// seasonal draws the monthly mean with a band of one standard deviation.
func seasonal(d view.Derived, s *Spec) {
	mean, std := d.Primary.Index("mean"), d.Primary.Index("std")
	s.XAxis, s.YAxis = Axis{Title: "Month"}, axisOf(d.Primary.Columns[mean])
	var m, hi, lo []Point
	for _, r := range d.Primary.Rows {
		label := time.Month(r.Month).String()[:3]
		x := float64(r.Month)
		m = append(m, Point{X: x, Label: label, Y: r.Values[mean]})
		hi = append(hi, Point{X: x, Label: label, Y: r.Values[mean] + r.Values[std]})
		lo = append(lo, Point{X: x, Label: label, Y: r.Values[mean] - r.Values[std]})
	}
	s.Series = []Series{
		{Name: "Mean", Kind: KindLine, Axis: AxisPrimary, Points: m},
		{Name: "Mean + 1σ", Kind: KindDashed, Axis: AxisPrimary, Points: hi},
		{Name: "Mean - 1σ", Kind: KindDashed, Axis: AxisPrimary, Points: lo},
	}
}

// perEntity draws one series per entity; rows arrive ordered by year so
// each series is continuous.
func perEntity(d view.Derived, s *Spec) {
	col := d.Primary.Columns[0]
	s.XAxis, s.YAxis = yearAxis, axisOf(col)
	kind := KindLine
	if s.Family == FamilyArea {
		kind = KindArea
	}
	for _, e := range d.Primary.Entities() {
		sub := d.Primary.Where(func(r view.Row) bool { return r.Entity == e })
		s.Series = append(s.Series, Series{Name: e, Kind: kind, Axis: AxisPrimary, Points: yearPoints(sub, 0)})
	}
	for _, o := range d.Overlays {
		s.Series = append(s.Series, Series{Name: overlayName(o.Name), Kind: overlayKind(o.Name), Axis: AxisPrimary, Points: yearPoints(o, 0)})
	}
}

// combinedTime puts temperature on the primary axis and the other
// indicators on the secondary one.
func combinedTime(d view.Derived, s *Spec) {
	s.XAxis = yearAxis
	s.YAxis = axisOf(d.Primary.Columns[0])
	s.Y2Axis = &Axis{Title: "Sea level / emissions"}
	for i, c := range d.Primary.Columns {
		axis := AxisSecondary
		if i == 0 {
			axis = AxisPrimary
		}
		s.Series = append(s.Series, Series{Name: c.Label, Kind: KindLine, Axis: axis, Points: yearPoints(d.Primary, i)})
	}
}

func heatmap(d view.Derived, s *Spec) {
	s.ColorScale = &ColorScale{Name: "RdBu_r", Min: -1, Max: 1}
	if d.Correlation == nil {
		return
	}
	labels := make([]string, len(d.Correlation.Labels))
	for i, key := range d.Correlation.Labels {
		labels[i] = d.Primary.Columns[d.Primary.Index(key)].Label
	}
	s.Heatmap = &Heatmap{Labels: labels, Values: d.Correlation.Values}
}

// scatterMatrix lays out one panel per regression with its points and fit line.
func scatterMatrix(d view.Derived, s *Spec) {
	s.Dimensions = append([]string(nil), view.CombinedKeys...)
	for i, f := range d.Fits {
		xc, yc := d.Primary.Columns[d.Primary.Index(f.X)], d.Primary.Columns[d.Primary.Index(f.Y)]
		xs, ys := d.Primary.Column(f.X), d.Primary.Column(f.Y)
		pts := make([]Point, len(xs))
		lo, hi := xs[0], xs[0]
		for k := range xs {
			pts[k] = Point{X: xs[k], Y: ys[k], Label: strconv.Itoa(d.Primary.Rows[k].Year)}
			lo, hi = min(lo, xs[k]), max(hi, xs[k])
		}
		s.Panels = append(s.Panels, Panel{Title: yc.Label + " vs " + xc.Label, XAxis: axisOf(xc), YAxis: axisOf(yc)})
		s.Series = append(s.Series,
			Series{Name: f.Name, Kind: KindMarkers, Axis: AxisPrimary, Panel: i, Points: pts},
			Series{Name: f.Name + " fit", Kind: KindDashed, Axis: AxisPrimary, Panel: i, Points: []Point{
				{X: lo, Y: f.Fit.Predict(lo)}, {X: hi, Y: f.Fit.Predict(hi)},
			}},
		)
	}
}

// dashboard is a 2x2 grid: one panel per indicator and one for yearly rates.
func dashboard(d view.Derived, s *Spec) {
	s.XAxis = yearAxis
	for i, c := range d.Primary.Columns {
		s.Panels = append(s.Panels, Panel{Title: c.Label, XAxis: yearAxis, YAxis: axisOf(c)})
		s.Series = append(s.Series, Series{Name: c.Label, Kind: KindLine, Axis: AxisPrimary, Panel: i, Points: yearPoints(d.Primary, i)})
	}
	rates, ok := d.Overlay("rate")
	if !ok {
		return
	}
	panel := len(s.Panels)
	s.Panels = append(s.Panels, Panel{Title: "Rate of change", XAxis: yearAxis, YAxis: Axis{Title: "Change per year"}})
	for i, c := range rates.Columns {
		s.Series = append(s.Series, Series{Name: c.Label + " rate", Kind: KindBar, Axis: AxisPrimary, Panel: panel, Points: yearPoints(rates, i)})
	}
}

