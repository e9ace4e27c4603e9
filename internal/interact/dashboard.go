package interact

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/marco/toonboard/internal/aggregate"
	"github.com/marco/toonboard/internal/chart"
	"github.com/marco/toonboard/internal/dataset"
)

// UI element properties the dashboard binds.
var (
	GenreChecklist = Prop{ID: "genre-checklist", Property: "value"}
	GenrePieChart  = Prop{ID: "genre-pie-chart", Property: "figure"}
	DownloadButton = Prop{ID: "btn-download", Property: "n_clicks"}
	DownloadCSV    = Prop{ID: "download-csv", Property: "data"}
)

// DefaultFilename is the name offered for the downloaded CSV.
const DefaultFilename = "selected_data.csv"

// Payload is a downloadable file, base64 encoded for transport.
type Payload struct {
	Content  string `json:"content"`
	Filename string `json:"filename"`
	Type     string `json:"type"`
	Base64   bool   `json:"base64"`
}

// Decode returns the raw file bytes.
func (p Payload) Decode() ([]byte, error) {
	if !p.Base64 {
		return []byte(p.Content), nil
	}
	return base64.StdEncoding.DecodeString(p.Content)
}

// Options tunes a Dashboard.
type Options struct {
	Filename string
	// HonorFilter exports the live checklist selection instead of every
	// startup genre.
	HonorFilter bool
}

// Dashboard holds an immutable dataset and the values derived from it at
// startup. Its methods are pure functions of the dataset and the control
// values passed in.
type Dashboard struct {
	ds       *dataset.Dataset
	records  []dataset.Record
	labels   []string
	order    []string
	opts     Options
	registry *Registry
}

// New builds a Dashboard over ds.
func New(ds *dataset.Dataset, opts Options) *Dashboard {
	if opts.Filename == "" {
		opts.Filename = DefaultFilename
	}
	records := ds.Records()
	d := &Dashboard{
		ds:      ds,
		records: records,
		labels:  aggregate.Genres(records),
		order:   aggregate.TitleOrder(records),
		opts:    opts,
	}
	d.registry = NewRegistry()
	// Fixed IDs on a fresh registry cannot collide.
	_ = d.registry.Register(Callback{
		Input:  GenreChecklist,
		Output: GenrePieChart,
		Handle: d.handleFilter,
	})
	_ = d.registry.Register(Callback{
		Input:  DownloadButton,
		Output: DownloadCSV,
		State:  []Prop{GenreChecklist},
		Handle: d.handleDownload,
	})
	return d
}

// Dataset returns the dataset the dashboard was built from.
func (d *Dashboard) Dataset() *dataset.Dataset {
	return d.ds
}

// Registry returns the callbacks bound to this dashboard.
func (d *Dashboard) Registry() *Registry {
	return d.registry
}

// Labels returns the checklist labels: every genre present at startup.
func (d *Dashboard) Labels() []string {
	return slices.Clone(d.labels)
}

// Filename returns the name offered for downloads.
func (d *Dashboard) Filename() string {
	return d.opts.Filename
}

// Pie returns the unfiltered genre chart.
func (d *Dashboard) Pie() chart.Spec {
	return chart.Pie(d.records)
}

// Bar returns the minutes-by-title chart.
func (d *Dashboard) Bar() chart.Spec {
	return chart.Bar(d.records, d.order)
}

// Scatter returns the rating-versus-votes chart.
func (d *Dashboard) Scatter() chart.Spec {
	return chart.Scatter(d.records)
}

// Chart returns the chart of the given kind.
func (d *Dashboard) Chart(kind chart.Kind) (chart.Spec, bool) {
	switch kind {
	case chart.KindPie:
		return d.Pie(), true
	case chart.KindBar:
		return d.Bar(), true
	case chart.KindScatter:
		return d.Scatter(), true
	}
	return chart.Spec{}, false
}

// FilterPie returns the genre chart restricted to the selected genres. An
// empty selection gives an empty chart.
func (d *Dashboard) FilterPie(selected []string) chart.Spec {
	return chart.Pie(aggregate.FilterByGenre(d.records, selected))
}

// ExportRecords returns the records a download contains. Unless the
// dashboard honours the filter, that is every startup genre regardless of
// selected.
func (d *Dashboard) ExportRecords(selected []string) []dataset.Record {
	genres := d.labels
	if d.opts.HonorFilter {
		genres = selected
	}
	return aggregate.FilterByGenre(d.records, genres)
}

// ExportCSV returns the CSV bytes for a download.
func (d *Dashboard) ExportCSV(selected []string) ([]byte, error) {
	return dataset.EncodeCSV(d.ds.Columns(), d.ExportRecords(selected))
}

// Download returns the payload for the given click count. Before the first
// click (clicks <= 0) it returns ErrNoUpdate.
func (d *Dashboard) Download(clicks int, selected []string) (Payload, error) {
	if clicks <= 0 {
		return Payload{}, ErrNoUpdate
	}
	data, err := d.ExportCSV(selected)
	if err != nil {
		return Payload{}, fmt.Errorf("failed to serialise download: %w", err)
	}
	return Payload{
		Content:  base64.StdEncoding.EncodeToString(data),
		Filename: d.opts.Filename,
		Type:     "text/csv",
		Base64:   true,
	}, nil
}

func (d *Dashboard) handleFilter(ctx context.Context, in Inputs) (any, error) {
	selected, err := d.decodeSelection(in.Value)
	if err != nil {
		return nil, err
	}
	return d.FilterPie(selected).Figure(), nil
}

func (d *Dashboard) handleDownload(ctx context.Context, in Inputs) (any, error) {
	clicks, err := decodeClicks(in.Value)
	if err != nil {
		return nil, err
	}
	selected, err := d.decodeSelection(in.State[GenreChecklist])
	if err != nil {
		return nil, err
	}
	return d.Download(clicks, selected)
}

// decodeSelection reads a JSON string list. An absent or null value means
// the default selection, all startup genres.
func (d *Dashboard) decodeSelection(raw json.RawMessage) ([]string, error) {
	if isNull(raw) {
		return d.Labels(), nil
	}
	var selected []string
	if err := json.Unmarshal(raw, &selected); err != nil {
		return nil, fmt.Errorf("%w: %s must be a list of genres: %w", ErrInvalidInput, GenreChecklist, err)
	}
	if selected == nil {
		selected = []string{}
	}
	return selected, nil
}

// decodeClicks reads a click counter. An absent or null value is the unset
// state, reported as zero.
func decodeClicks(raw json.RawMessage) (int, error) {
	if isNull(raw) {
		return 0, nil
	}
	var clicks int
	if err := json.Unmarshal(raw, &clicks); err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer: %w", ErrInvalidInput, DownloadButton, err)
	}
	return clicks, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
