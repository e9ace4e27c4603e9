package termchart

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/marco/toonboard/internal/chart"
)

// Styles holds the lipgloss styles used to draw one chart.
type Styles struct {
	Title lipgloss.Style
	Label lipgloss.Style
	Value lipgloss.Style
	Muted lipgloss.Style
	Frame lipgloss.Style
	// Palette colours series in turn.
	Palette []lipgloss.Color
}

// DefaultStyles returns the light style set.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().Foreground(lipgloss.Color("#0077B6")).Bold(true),
		Label: lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC")),
		Value: lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")),
		Muted: lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")),
		Frame: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#626262")).Padding(0, 1),
		Palette: []lipgloss.Color{
			"#636efa", "#EF553B", "#00cc96", "#ab63fa", "#FFA15A",
			"#19d3f3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
		},
	}
}

// DarkStyles returns the style set for charts on the dark template.
func DarkStyles(scale []string) Styles {
	s := DefaultStyles()
	s.Title = s.Title.Foreground(lipgloss.Color("#f2f5fa"))
	s.Frame = s.Frame.BorderForeground(lipgloss.Color("#506784")).Background(lipgloss.Color("#111111"))
	if len(scale) > 0 {
		s.Palette = make([]lipgloss.Color, len(scale))
		for i, c := range scale {
			s.Palette[i] = lipgloss.Color(c)
		}
	}
	return s
}

// StylesFor picks the style set matching the chart's template.
func StylesFor(spec chart.Spec) Styles {
	if spec.Template == chart.TemplateDark {
		return DarkStyles(spec.ColorScale)
	}
	return DefaultStyles()
}

func (s Styles) color(i int) lipgloss.Style {
	if len(s.Palette) == 0 {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(s.Palette[i%len(s.Palette)])
}
