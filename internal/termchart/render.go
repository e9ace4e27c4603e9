// Package termchart draws chart descriptions as terminal text.
package termchart

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/marco/toonboard/internal/chart"
)

const (
	defaultWidth  = 80
	minWidth      = 40
	maxLabelWidth = 32
	plotHeight    = 12
	barRune       = "█"
	emptyMessage  = "(no data)"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Renderer draws chart specs to fit a terminal width.
type Renderer struct {
	width   int
	printer *message.Printer
}

// NewRenderer creates a Renderer for the given terminal width. Widths below
// a usable minimum are raised; zero means 80 columns.
func NewRenderer(width int) *Renderer {
	if width <= 0 {
		width = defaultWidth
	}
	if width < minWidth {
		width = minWidth
	}
	return &Renderer{
		width:   width,
		printer: message.NewPrinter(language.English),
	}
}

// Render returns the framed text drawing of spec.
func (r *Renderer) Render(spec chart.Spec) string {
	styles := StylesFor(spec)
	// Border and padding take four columns; Width covers padding only.
	inner := r.width - 4

	var body string
	switch spec.Kind {
	case chart.KindPie:
		body = r.pie(spec, styles, inner)
	case chart.KindBar:
		body = r.bars(spec, styles, inner)
	case chart.KindScatter:
		body = r.scatter(spec, styles, inner)
	default:
		body = styles.Muted.Render(fmt.Sprintf("unsupported chart kind %q", spec.Kind))
	}

	title := styles.Title.Render(PlainTitle(spec.Title))
	return styles.Frame.Width(inner + 2).Render(title + "\n\n" + body)
}

// PlainTitle strips markup tags from a chart title.
func PlainTitle(title string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(title, ""))
}

// FormatCount formats n with thousands separators.
func (r *Renderer) FormatCount(n float64) string {
	if n == math.Trunc(n) {
		return r.printer.Sprintf("%d", int64(n))
	}
	return r.printer.Sprintf("%.2f", n)
}

func (r *Renderer) pie(spec chart.Spec, styles Styles, width int) string {
	if len(spec.Slices) == 0 {
		return styles.Muted.Render(emptyMessage)
	}

	total := 0.0
	labels := make([]string, len(spec.Slices))
	for i, s := range spec.Slices {
		total += s.Value
		labels[i] = s.Label
	}
	labelWidth := columnWidth(labels)

	rows := make([]string, 0, len(spec.Slices))
	for i, s := range spec.Slices {
		share := 0.0
		if total > 0 {
			share = s.Value / total
		}
		suffix := fmt.Sprintf(" %s (%.1f%%)", r.FormatCount(s.Value), share*100)
		barWidth := width - labelWidth - 1 - runewidth.StringWidth(suffix)
		rows = append(rows, fmt.Sprintf("%s %s%s",
			styles.Label.Render(pad(s.Label, labelWidth)),
			styles.color(i).Render(strings.Repeat(barRune, scaled(share, barWidth))),
			styles.Value.Render(suffix),
		))
	}
	return strings.Join(rows, "\n")
}

func (r *Renderer) bars(spec chart.Spec, styles Styles, width int) string {
	if len(spec.Bars) == 0 {
		return styles.Muted.Render(emptyMessage)
	}

	bars := orderedBars(spec.Bars, spec.YAxis.CategoryOrder)

	maxValue := 0.0
	labels := make([]string, len(bars))
	for i, b := range bars {
		maxValue = math.Max(maxValue, b.Value)
		labels[i] = b.Category
	}
	labelWidth := columnWidth(labels)
	valueWidth := runewidth.StringWidth(r.FormatCount(maxValue)) + 1

	rows := make([]string, 0, len(bars)+1)
	for _, b := range bars {
		share := 0.0
		if maxValue > 0 {
			share = b.Value / maxValue
		}
		barWidth := width - labelWidth - 1 - valueWidth
		rows = append(rows, fmt.Sprintf("%s %s %s",
			styles.Label.Render(pad(b.Category, labelWidth)),
			styles.color(0).Render(strings.Repeat(barRune, scaled(share, barWidth))),
			styles.Value.Render(r.FormatCount(b.Value)),
		))
	}
	rows = append(rows, styles.Muted.Render(fmt.Sprintf("%s → %s", spec.YAxis.Title, spec.XAxis.Title)))
	return strings.Join(rows, "\n")
}

// orderedBars sorts bars by the position of their category in order.
// Categories missing from order go last, in input order.
func orderedBars(bars []chart.BarItem, order []string) []chart.BarItem {
	out := make([]chart.BarItem, len(bars))
	copy(out, bars)
	if len(order) == 0 {
		return out
	}
	rank := make(map[string]int, len(order))
	for i, c := range order {
		rank[c] = i
	}
	pos := func(c string) int {
		if i, ok := rank[c]; ok {
			return i
		}
		return len(order)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return pos(out[i].Category) < pos(out[j].Category)
	})
	return out
}

func (r *Renderer) scatter(spec chart.Spec, styles Styles, width int) string {
	if len(spec.Points) == 0 {
		return styles.Muted.Render(emptyMessage)
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range spec.Points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	yLabelWidth := max(
		runewidth.StringWidth(r.FormatCount(maxY)),
		runewidth.StringWidth(r.FormatCount(minY)),
	)
	plotWidth := width - yLabelWidth - 3
	if plotWidth < 10 {
		plotWidth = 10
	}

	// Cell hit counts; denser cells take later palette colours.
	grid := make([][]int, plotHeight)
	for i := range grid {
		grid[i] = make([]int, plotWidth)
	}
	for _, p := range spec.Points {
		col := position(p.X, minX, maxX, plotWidth)
		row := plotHeight - 1 - position(p.Y, minY, maxY, plotHeight)
		grid[row][col]++
	}

	var sb strings.Builder
	for row := 0; row < plotHeight; row++ {
		label := ""
		switch row {
		case 0:
			label = r.FormatCount(maxY)
		case plotHeight - 1:
			label = r.FormatCount(minY)
		}
		sb.WriteString(styles.Muted.Render(padLeft(label, yLabelWidth)))
		sb.WriteString(styles.Muted.Render(" │"))
		for col := 0; col < plotWidth; col++ {
			n := grid[row][col]
			if n == 0 {
				sb.WriteString(" ")
				continue
			}
			sb.WriteString(styles.color(min(n-1, len(styles.Palette)-1)).Render("●"))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(styles.Muted.Render(strings.Repeat(" ", yLabelWidth) + " └" + strings.Repeat("─", plotWidth)))
	sb.WriteString("\n")
	lo, hi := r.FormatCount(minX), r.FormatCount(maxX)
	gap := plotWidth - runewidth.StringWidth(lo) - runewidth.StringWidth(hi)
	if gap < 1 {
		gap = 1
	}
	sb.WriteString(styles.Muted.Render(strings.Repeat(" ", yLabelWidth+2) + lo + strings.Repeat(" ", gap) + hi))
	sb.WriteString("\n")
	sb.WriteString(styles.Muted.Render(fmt.Sprintf("x: %s   y: %s   n=%d", spec.XAxis.Title, spec.YAxis.Title, len(spec.Points))))
	return sb.String()
}

// position maps v in [lo, hi] onto a cell index in [0, cells).
func position(v, lo, hi float64, cells int) int {
	if hi <= lo {
		return cells / 2
	}
	i := int((v - lo) / (hi - lo) * float64(cells-1))
	return min(max(i, 0), cells-1)
}

func scaled(share float64, width int) int {
	if width <= 0 || share <= 0 {
		return 0
	}
	n := int(math.Round(share * float64(width)))
	if n == 0 {
		n = 1
	}
	return min(n, width)
}

func columnWidth(labels []string) int {
	w := 0
	for _, l := range labels {
		w = max(w, runewidth.StringWidth(l))
	}
	return min(w, maxLabelWidth)
}

func pad(s string, width int) string {
	s = runewidth.Truncate(s, width, "…")
	return runewidth.FillRight(s, width)
}

func padLeft(s string, width int) string {
	return runewidth.FillLeft(s, width)
}
