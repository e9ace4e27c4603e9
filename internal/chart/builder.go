package chart

import (
	"slices"

	"github.com/marco/toonboard/internal/aggregate"
	"github.com/marco/toonboard/internal/dataset"
)

// Pie builds the genre distribution chart for records.
func Pie(records []dataset.Record) Spec {
	dist := aggregate.GenreDistribution(records)
	spec := Spec{
		Kind:   KindPie,
		Title:  TitlePie,
		Slices: make([]Slice, 0, len(dist)),
	}
	for _, gc := range dist {
		spec.Slices = append(spec.Slices, Slice{Label: gc.Genre, Value: float64(gc.Count)})
	}
	return spec
}

// Bar builds one bar per record, Minutes against Name, with names laid out
// in order.
func Bar(records []dataset.Record, order []string) Spec {
	spec := Spec{
		Kind:  KindBar,
		Title: TitleBar,
		Bars:  make([]BarItem, 0, len(records)),
		XAxis: Axis{Title: dataset.ColumnMinutes},
		YAxis: Axis{Title: dataset.ColumnName, CategoryOrder: slices.Clone(order)},
	}
	for _, r := range records {
		spec.Bars = append(spec.Bars, BarItem{Category: r.Name, Value: float64(r.Minutes)})
	}
	return spec
}

// Scatter plots Rating against Votes on the dark template.
func Scatter(records []dataset.Record) Spec {
	spec := Spec{
		Kind:       KindScatter,
		Title:      TitleScatter,
		Points:     make([]Point, 0, len(records)),
		XAxis:      Axis{Title: dataset.ColumnRating},
		YAxis:      Axis{Title: dataset.ColumnVotes},
		ColorScale: slices.Clone(ColorScalePlasma),
		Template:   TemplateDark,
	}
	for _, r := range records {
		spec.Points = append(spec.Points, Point{Label: r.Name, X: r.Rating, Y: float64(r.Votes)})
	}
	return spec
}

// Build returns the chart of the given kind over ds. ok is false for an
// unknown kind.
func Build(kind Kind, ds *dataset.Dataset) (spec Spec, ok bool) {
	records := ds.Records()
	switch kind {
	case KindPie:
		return Pie(records), true
	case KindBar:
		return Bar(records, aggregate.TitleOrder(records)), true
	case KindScatter:
		return Scatter(records), true
	}
	return Spec{}, false
}
