// Package chartspec maps derived views to declarative chart descriptions.
// It selects fields, axis titles and colours; drawing is left to the
// render surface.
package chartspec

// Family is the kind of chart a Spec describes.
type Family string

const (
	FamilyLine          Family = "line"
	FamilyBar           Family = "bar"
	FamilyArea          Family = "area"
	FamilyHeatmap       Family = "heatmap"
	FamilyScatterMatrix Family = "scatter-matrix"
	FamilyMultiPanel    Family = "multi-panel"
	FamilyChoropleth    Family = "choropleth"
	FamilyMessage       Family = "message" // no data, only Message
)

// SeriesKind is how a single series is drawn.
type SeriesKind string

const (
	KindLine    SeriesKind = "line"
	KindDashed  SeriesKind = "dashed"
	KindMarkers SeriesKind = "markers"
	KindBar     SeriesKind = "bar"
	KindArea    SeriesKind = "area"
)

// Axis names for Series.Axis.
const (
	AxisPrimary   = "y"
	AxisSecondary = "y2"
)

// Orientation of bar charts.
const (
	Vertical   = "v"
	Horizontal = "h"
)

// Point is one datum. Categorical charts use Label and leave X zero.
type Point struct {
	X     float64 `json:"x"`
	Label string  `json:"label,omitempty"`
	Y     float64 `json:"y"`
}

// Series is a named sequence of points.
type Series struct {
	Name   string     `json:"name"`
	Kind   SeriesKind `json:"kind"`
	Axis   string     `json:"axis"`
	Panel  int        `json:"panel"`
	Color  string     `json:"color"`
	Points []Point    `json:"points"`
}

// Axis is an axis title with an optional unit.
type Axis struct {
	Title string `json:"title"`
	Unit  string `json:"unit,omitempty"`
}

// ColorScale maps values to a named continuous scale.
type ColorScale struct {
	Name string  `json:"name"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// Heatmap is a labelled square matrix.
type Heatmap struct {
	Labels []string    `json:"labels"`
	Values [][]float64 `json:"values"`
}

// Panel is one cell of a multi-panel or scatter-matrix chart.
type Panel struct {
	Title string `json:"title"`
	XAxis Axis   `json:"x_axis"`
	YAxis Axis   `json:"y_axis"`
}

// Spec is a complete chart description.
type Spec struct {
	Family      Family      `json:"family"`
	Title       string      `json:"title"`
	XAxis       Axis        `json:"x_axis"`
	YAxis       Axis        `json:"y_axis"`
	Y2Axis      *Axis       `json:"y2_axis,omitempty"`
	Orientation string      `json:"orientation,omitempty"`
	Series      []Series    `json:"series"`
	ColorScale  *ColorScale `json:"color_scale,omitempty"`
	Heatmap     *Heatmap    `json:"heatmap,omitempty"`
	Dimensions  []string    `json:"dimensions,omitempty"`
	Panels      []Panel     `json:"panels,omitempty"`
	Message     string      `json:"message,omitempty"`
}

// Fallback is shown in place of a chart when computation failed.
func Fallback(title, message string) Spec {
	return Spec{Family: FamilyMessage, Title: title, Message: message}
}

var palette = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// assignColors colours series in order, cycling the palette.
func assignColors(series []Series) {
	for i := range series {
		series[i].Color = palette[i%len(palette)]
	}
}
