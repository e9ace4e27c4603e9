// Package tui is the terminal counterpart of the interactive dashboard: a
// genre checklist driving a live pie, plus the CSV download.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/marco/toonboard/internal/chart"
	"github.com/marco/toonboard/internal/interact"
	"github.com/marco/toonboard/internal/termchart"
)

var views = []chart.Kind{chart.KindPie, chart.KindBar, chart.KindScatter}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0077B6"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA15A")).Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF553B"))
)

// Options configures the terminal dashboard.
type Options struct {
	// Dir receives downloaded files. Empty means the working directory.
	Dir   string
	Width int
}

// downloadedMsg reports a finished download.
type downloadedMsg struct {
	path string
	rows int
}

type downloadErrMsg struct{ err error }

// Model is the bubbletea model.
type Model struct {
	ctx      context.Context
	dash     *interact.Dashboard
	labels   []string
	checked  map[string]bool
	cursor   int
	view     int
	clicks   int
	dir      string
	renderer *termchart.Renderer
	keys     keyMap
	help     help.Model
	status   string
	err      error
	quitting bool
}

// New creates a model with every genre checked.
func New(ctx context.Context, dash *interact.Dashboard, opts Options) Model {
	labels := dash.Labels()
	checked := make(map[string]bool, len(labels))
	for _, l := range labels {
		checked[l] = true
	}
	return Model{
		ctx:      ctx,
		dash:     dash,
		labels:   labels,
		checked:  checked,
		dir:      opts.Dir,
		renderer: termchart.NewRenderer(opts.Width),
		keys:     defaultKeyMap(),
		help:     help.New(),
	}
}

// Run starts the program and blocks until the user quits or ctx is done.
func Run(ctx context.Context, dash *interact.Dashboard, opts Options) error {
	program := tea.NewProgram(New(ctx, dash, opts), tea.WithContext(ctx), tea.WithAltScreen())
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Selected returns the checked genres in checklist order.
func (m Model) Selected() []string {
	out := make([]string, 0, len(m.labels))
	for _, l := range m.labels {
		if m.checked[l] {
			out = append(out, l)
		}
	}
	return out
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.renderer = termchart.NewRenderer(msg.Width)
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.labels)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Toggle):
			if len(m.labels) > 0 {
				l := m.labels[m.cursor]
				m.checked[l] = !m.checked[l]
			}
		case key.Matches(msg, m.keys.All):
			all := len(m.Selected()) < len(m.labels)
			for _, l := range m.labels {
				m.checked[l] = all
			}
		case key.Matches(msg, m.keys.Next):
			m.view = (m.view + 1) % len(views)
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Download):
			m.clicks++
			m.status = "downloading..."
			m.err = nil
			return m, m.download(m.clicks, m.Selected())
		}

	case downloadedMsg:
		m.status = fmt.Sprintf("wrote %d rows to %s", msg.rows, msg.path)
	case downloadErrMsg:
		m.status = ""
		m.err = msg.err
	}
	return m, nil
}

// download runs the download callback the same way the web page does and
// writes the decoded payload into the output directory.
func (m Model) download(clicks int, selected []string) tea.Cmd {
	dash := m.dash
	ctx := m.ctx
	dir := m.dir
	return func() tea.Msg {
		value, _ := json.Marshal(clicks)
		state, _ := json.Marshal(selected)
		update, err := dash.Registry().Dispatch(ctx, interact.DownloadButton, interact.Inputs{
			Value: value,
			State: map[interact.Prop]json.RawMessage{interact.GenreChecklist: state},
		})
		if err != nil {
			return downloadErrMsg{err: err}
		}
		payload, ok := update.Data.(interact.Payload)
		if !ok {
			return downloadErrMsg{err: fmt.Errorf("unexpected download data %T", update.Data)}
		}
		path, err := writePayload(dir, payload)
		if err != nil {
			return downloadErrMsg{err: err}
		}
		return downloadedMsg{path: path, rows: len(dash.ExportRecords(selected))}
	}
}

// writePayload decodes payload into dir and returns the file path.
func writePayload(dir string, payload interact.Payload) (string, error) {
	data, err := payload.Decode()
	if err != nil {
		return "", fmt.Errorf("failed to decode download: %w", err)
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create download directory: %w", err)
		}
	}
	path := filepath.Join(dir, filepath.Base(payload.Filename))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	kind := views[m.view]

	if kind == chart.KindPie {
		b.WriteString(headerStyle.Render("Select Genres:"))
		b.WriteString("\n")
		for i, l := range m.labels {
			box := "[ ]"
			if m.checked[l] {
				box = "[x]"
			}
			line := fmt.Sprintf("%s %s", box, l)
			if i == m.cursor {
				line = cursorStyle.Render("> " + line)
			} else {
				line = "  " + line
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(m.renderer.Render(m.chart(kind)))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render("download failed: " + m.err.Error()))
		b.WriteString("\n")
	case m.status != "":
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) chart(kind chart.Kind) chart.Spec {
	if kind == chart.KindPie {
		return m.dash.FilterPie(m.Selected())
	}
	spec, _ := m.dash.Chart(kind)
	return spec
}
