package chart

// Figure is the Plotly figure document for a Spec: traces plus layout, in
// the shape plotly.js accepts for Plotly.react.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is a single Plotly trace. Only the fields used by the three chart
// kinds are modelled.
type Trace struct {
	Type          string    `json:"type"`
	Labels        []string  `json:"labels,omitempty"`
	Values        []float64 `json:"values,omitempty"`
	X             any       `json:"x,omitempty"`
	Y             any       `json:"y,omitempty"`
	Text          []string  `json:"text,omitempty"`
	Orientation   string    `json:"orientation,omitempty"`
	Mode          string    `json:"mode,omitempty"`
	Marker        *Marker   `json:"marker,omitempty"`
	HoverTemplate string    `json:"hovertemplate,omitempty"`
}

// Marker styles bars and scatter points.
type Marker struct {
	Color string `json:"color,omitempty"`
}

// Layout is the Plotly layout object.
type Layout struct {
	Title     Title           `json:"title"`
	XAxis     *LayoutAxis     `json:"xaxis,omitempty"`
	YAxis     *LayoutAxis     `json:"yaxis,omitempty"`
	Legend    *Legend         `json:"legend,omitempty"`
	ColorAxis *ColorAxis      `json:"coloraxis,omitempty"`
	Template  *LayoutTemplate `json:"template,omitempty"`
	BarMode   string          `json:"barmode,omitempty"`
}

// Title is a layout or axis title.
type Title struct {
	Text string `json:"text"`
}

// LayoutAxis configures one cartesian axis.
type LayoutAxis struct {
	Title         Title    `json:"title"`
	CategoryOrder string   `json:"categoryorder,omitempty"`
	CategoryArray []string `json:"categoryarray,omitempty"`
	AutoRange     string   `json:"autorange,omitempty"`
}

// Legend configures the legend.
type Legend struct {
	TraceGroupGap int `json:"tracegroupgap"`
}

// ColorAxis carries the continuous colour scale as [position, colour] stops.
type ColorAxis struct {
	ColorScale [][2]any `json:"colorscale"`
}

// LayoutTemplate is an inline Plotly template; plotly.js does not resolve
// template names on its own.
type LayoutTemplate struct {
	Name   string         `json:"name,omitempty"`
	Layout TemplateLayout `json:"layout"`
}

// TemplateLayout is the subset of template layout keys we set.
type TemplateLayout struct {
	PaperBGColor string         `json:"paper_bgcolor"`
	PlotBGColor  string         `json:"plot_bgcolor"`
	Font         TemplateFont   `json:"font"`
	XAxis        TemplateAxis   `json:"xaxis"`
	YAxis        TemplateAxis   `json:"yaxis"`
	ColorWay     []string       `json:"colorway,omitempty"`
	Polar        *TemplatePolar `json:"polar,omitempty"`
}

// TemplateFont sets the default font colour.
type TemplateFont struct {
	Color string `json:"color"`
}

// TemplateAxis sets axis grid and line colours.
type TemplateAxis struct {
	GridColor     string `json:"gridcolor"`
	LineColor     string `json:"linecolor"`
	ZeroLineColor string `json:"zerolinecolor"`
}

// TemplatePolar sets the polar background.
type TemplatePolar struct {
	BGColor string `json:"bgcolor"`
}

var darkTemplate = &LayoutTemplate{
	Name: TemplateDark,
	Layout: TemplateLayout{
		PaperBGColor: "rgb(17,17,17)",
		PlotBGColor:  "rgb(17,17,17)",
		Font:         TemplateFont{Color: "#f2f5fa"},
		XAxis:        TemplateAxis{GridColor: "#283442", LineColor: "#506784", ZeroLineColor: "#283442"},
		YAxis:        TemplateAxis{GridColor: "#283442", LineColor: "#506784", ZeroLineColor: "#283442"},
		ColorWay: []string{
			"#636efa", "#EF553B", "#00cc96", "#ab63fa", "#FFA15A",
			"#19d3f3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
		},
		Polar: &TemplatePolar{BGColor: "rgb(17,17,17)"},
	},
}

// Figure converts s into a Plotly figure document.
func (s Spec) Figure() Figure {
	fig := Figure{
		Data:   []Trace{},
		Layout: Layout{Title: Title{Text: s.Title}},
	}

	switch s.Kind {
	case KindPie:
		labels := make([]string, len(s.Slices))
		values := make([]float64, len(s.Slices))
		for i, sl := range s.Slices {
			labels[i] = sl.Label
			values[i] = sl.Value
		}
		fig.Data = append(fig.Data, Trace{
			Type:          "pie",
			Labels:        labels,
			Values:        values,
			HoverTemplate: "label=%{label}<br>value=%{value}<extra></extra>",
		})
		fig.Layout.Legend = &Legend{TraceGroupGap: 0}

	case KindBar:
		x := make([]float64, len(s.Bars))
		y := make([]string, len(s.Bars))
		for i, b := range s.Bars {
			x[i] = b.Value
			y[i] = b.Category
		}
		fig.Data = append(fig.Data, Trace{
			Type:          "bar",
			Orientation:   "h",
			X:             x,
			Y:             y,
			Marker:        &Marker{Color: "#636efa"},
			HoverTemplate: s.XAxis.Title + "=%{x}<br>" + s.YAxis.Title + "=%{y}<extra></extra>",
		})
		fig.Layout.BarMode = "relative"
		fig.Layout.XAxis = &LayoutAxis{Title: Title{Text: s.XAxis.Title}}
		fig.Layout.YAxis = &LayoutAxis{Title: Title{Text: s.YAxis.Title}}
		if len(s.YAxis.CategoryOrder) > 0 {
			// First category on top.
			fig.Layout.YAxis.CategoryOrder = "array"
			fig.Layout.YAxis.CategoryArray = s.YAxis.CategoryOrder
			fig.Layout.YAxis.AutoRange = "reversed"
		}

	case KindScatter:
		x := make([]float64, len(s.Points))
		y := make([]float64, len(s.Points))
		text := make([]string, len(s.Points))
		for i, p := range s.Points {
			x[i] = p.X
			y[i] = p.Y
			text[i] = p.Label
		}
		fig.Data = append(fig.Data, Trace{
			Type:          "scatter",
			Mode:          "markers",
			X:             x,
			Y:             y,
			Text:          text,
			Marker:        &Marker{Color: "#636efa"},
			HoverTemplate: s.XAxis.Title + "=%{x}<br>" + s.YAxis.Title + "=%{y}<extra>%{text}</extra>",
		})
		fig.Layout.XAxis = &LayoutAxis{Title: Title{Text: s.XAxis.Title}}
		fig.Layout.YAxis = &LayoutAxis{Title: Title{Text: s.YAxis.Title}}
		fig.Layout.Legend = &Legend{TraceGroupGap: 0}
	}

	if len(s.ColorScale) > 0 {
		fig.Layout.ColorAxis = &ColorAxis{ColorScale: colorStops(s.ColorScale)}
	}
	if s.Template == TemplateDark {
		fig.Layout.Template = darkTemplate
	}
	return fig
}

func colorStops(colors []string) [][2]any {
	stops := make([][2]any, len(colors))
	for i, c := range colors {
		pos := 0.0
		if len(colors) > 1 {
			pos = float64(i) / float64(len(colors)-1)
		}
		stops[i] = [2]any{pos, c}
	}
	return stops
}
