// Package chart builds data-only chart descriptions. Rendering is left to
// the browser (via Figure) or to the terminal renderer.
package chart

// Kind names the chart type.
type Kind string

const (
	KindPie     Kind = "pie"
	KindBar     Kind = "bar"
	KindScatter Kind = "scatter"
)

// Chart titles
const (
	TitlePie     = "Genre Distribution"
	TitleBar     = "Movie/TV Show with highest Minutes"
	TitleScatter = "<b>Rating Versus Votes"
)

// Visual templates
const (
	TemplateDefault = ""
	TemplateDark    = "plotly_dark"
)

// ColorScalePlasma is the sequential Plasma palette.
var ColorScalePlasma = []string{
	"#0d0887", "#46039f", "#7201a8", "#9c179e", "#bd3786",
	"#d8576b", "#ed7953", "#fb9f3a", "#fdca26", "#f0f921",
}

// Slice is one pie wedge.
type Slice struct {
	Label string
	Value float64
}

// BarItem is one horizontal bar. Category is drawn on the y axis.
type BarItem struct {
	Category string
	Value    float64
}

// Point is one scatter marker.
type Point struct {
	Label string
	X     float64
	Y     float64
}

// Axis describes one chart axis.
type Axis struct {
	Title string
	// CategoryOrder lists categories top to bottom (or left to right).
	CategoryOrder []string
}

// Spec is a chart description prior to rendering. Only the field matching
// Kind is populated.
type Spec struct {
	Kind  Kind
	Title string

	Slices []Slice
	Bars   []BarItem
	Points []Point

	XAxis Axis
	YAxis Axis

	ColorScale []string
	Template   string
}

// Empty reports whether the chart has nothing to draw.
func (s Spec) Empty() bool {
	return len(s.Slices) == 0 && len(s.Bars) == 0 && len(s.Points) == 0
}
