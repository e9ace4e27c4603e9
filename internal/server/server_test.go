package server

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/marco/toonboard/internal/chart"
	"github.com/marco/toonboard/internal/config"
	"github.com/marco/toonboard/internal/dataset"
	"github.com/marco/toonboard/internal/interact"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testDashboard() *interact.Dashboard {
	ds := dataset.New(nil, []dataset.Record{
		{Name: "Toy Story", Genre: "Animation", Minutes: 81, Votes: 1000000, Rating: 8.3},
		{Name: "Arcane", Genre: "Action", Minutes: 40, Votes: 300000, Rating: 9},
		{Name: "Up", Genre: "Animation", Minutes: 96, Votes: 1100000, Rating: 8.3},
	})
	return interact.New(ds, interact.Options{})
}

func newTestServer(t *testing.T, variant string) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Dashboard.Variant = variant
	srv, err := New(cfg, testDashboard())
	require.NoError(t, err)
	return srv
}

func do(t *testing.T, srv *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func postUpdate(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/_update", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return do(t, srv, req)
}

func TestIndex_Interactive(t *testing.T) {
	srv := newTestServer(t, config.VariantInteractive)
	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)

	assert.Equal(t, "Top 20 Animation Movies", doc.Find("title").Text())
	assert.Equal(t, 3, doc.Find(".tab").Length())

	var values []string
	doc.Find("#genre-checklist input[type=checkbox]").Each(func(_ int, s *goquery.Selection) {
		v, _ := s.Attr("value")
		_, checked := s.Attr("checked")
		assert.True(t, checked, v)
		values = append(values, v)
	})
	assert.Equal(t, []string{"Animation", "Action"}, values)

	assert.Equal(t, 1, doc.Find("#btn-download").Length())
	assert.Equal(t, 1, doc.Find("#download-csv").Length())
	src, _ := doc.Find("script[src]").First().Attr("src")
	assert.Equal(t, PlotlyURL, src)
}

func TestIndex_Basic(t *testing.T) {
	srv := newTestServer(t, config.VariantBasic)
	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)

	assert.Equal(t, 0, doc.Find("#genre-checklist").Length())
	assert.Equal(t, 0, doc.Find("#btn-download").Length())

	var kinds []string
	doc.Find(".graph").Each(func(_ int, s *goquery.Selection) {
		kinds = append(kinds, s.AttrOr("data-figure", ""))
	})
	assert.Equal(t, []string{"pie", "bar", "scatter"}, kinds)
}

func TestIndex_UnknownPath(t *testing.T) {
	srv := newTestServer(t, config.VariantBasic)
	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatic(t *testing.T) {
	srv := newTestServer(t, config.VariantInteractive)
	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/static/dashboard.js", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/_update")
}

func TestHealthAndGenres(t *testing.T) {
	srv := newTestServer(t, config.VariantInteractive)

	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","records":3}`, rec.Body.String())

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/genres", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"genres":["Animation","Action"]}`, rec.Body.String())
}

func decodeFigure(t *testing.T, rec *httptest.ResponseRecorder) chart.Figure {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var fig chart.Figure
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fig))
	return fig
}

func TestFigures(t *testing.T) {
	srv := newTestServer(t, config.VariantInteractive)

	fig := decodeFigure(t, do(t, srv, httptest.NewRequest(http.MethodGet, "/api/figures/pie", nil)))
	require.Len(t, fig.Data, 1)
	assert.Equal(t, "pie", fig.Data[0].Type)
	assert.Equal(t, []string{"Animation", "Action"}, fig.Data[0].Labels)
	assert.Equal(t, []float64{2, 1}, fig.Data[0].Values)
	assert.Equal(t, chart.TitlePie, fig.Layout.Title.Text)

	fig = decodeFigure(t, do(t, srv, httptest.NewRequest(http.MethodGet, "/api/figures/bar", nil)))
	require.NotNil(t, fig.Layout.YAxis)
	assert.Equal(t, []string{"Up", "Toy Story", "Arcane"}, fig.Layout.YAxis.CategoryArray)

	fig = decodeFigure(t, do(t, srv, httptest.NewRequest(http.MethodGet, "/api/figures/scatter", nil)))
	assert.Equal(t, "markers", fig.Data[0].Mode)
	assert.NotNil(t, fig.Layout.Template)

	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/figures/radar", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFigures_PieGenreQuery(t *testing.T) {
	srv := newTestServer(t, config.VariantInteractive)

	fig := decodeFigure(t, do(t, srv, httptest.NewRequest(http.MethodGet, "/api/figures/pie?genre=Action", nil)))
	assert.Equal(t, []string{"Action"}, fig.Data[0].Labels)

	fig = decodeFigure(t, do(t, srv, httptest.NewRequest(http.MethodGet, "/api/figures/pie?genre=Action&genre=Animation", nil)))
	assert.ElementsMatch(t, []string{"Action", "Animation"}, fig.Data[0].Labels)

	fig = decodeFigure(t, do(t, srv, httptest.NewRequest(http.MethodGet, "/api/figures/pie?genre=", nil)))
	assert.Empty(t, fig.Data[0].Labels)
	assert.Equal(t, chart.TitlePie, fig.Layout.Title.Text)
}

func TestUpdate_Filter(t *testing.T) {
	srv := newTestServer(t, config.VariantInteractive)

	rec := postUpdate(t, srv, `{"input":"genre-checklist.value","value":["Animation"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Output string       `json:"output"`
		Data   chart.Figure `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "genre-pie-chart.figure", resp.Output)
	assert.Equal(t, []string{"Animation"}, resp.Data.Data[0].Labels)
	assert.Equal(t, []float64{2}, resp.Data.Data[0].Values)
}

func TestUpdate_Download(t *testing.T) {
	srv := newTestServer(t, config.VariantInteractive)

	rec := postUpdate(t, srv, `{"input":"btn-download.n_clicks","value":null}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = postUpdate(t, srv, `{"input":"btn-download.n_clicks","value":0}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = postUpdate(t, srv, `{"input":"btn-download.n_clicks","value":2,"state":{"genre-checklist.value":["Action"]}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Output string           `json:"output"`
		Data   interact.Payload `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "download-csv.data", resp.Output)
	assert.Equal(t, "selected_data.csv", resp.Data.Filename)
	assert.Equal(t, "text/csv", resp.Data.Type)
	assert.True(t, resp.Data.Base64)

	body, err := resp.Data.Decode()
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	assert.Equal(t, "Name,genre,Minutes,Votes,Rating", lines[0])
	// Every startup genre is exported regardless of the checklist.
	assert.Len(t, lines, 4)
}

func TestUpdate_Errors(t *testing.T) {
	srv := newTestServer(t, config.VariantInteractive)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed body", `{"input":`, http.StatusBadRequest},
		{"bad property", `{"input":"nodot","value":1}`, http.StatusBadRequest},
		{"unknown input", `{"input":"slider.value","value":1}`, http.StatusNotFound},
		{"bad value", `{"input":"genre-checklist.value","value":"Action"}`, http.StatusBadRequest},
		{"bad state key", `{"input":"btn-download.n_clicks","value":1,"state":{"x":[]}}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postUpdate(t, srv, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/_update", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	assert.Equal(t, http.StatusUnsupportedMediaType, do(t, srv, req).Code)
}

func TestDownload(t *testing.T) {
	srv := newTestServer(t, config.VariantInteractive)

	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/download", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/download?n_clicks=x", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/download?n_clicks=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=selected_data.csv`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Name,genre,Minutes,Votes,Rating\n"))
	assert.Contains(t, rec.Body.String(), "Arcane,Action,40,300000,9\n")
}

func TestInteractiveRoutesNeedInteractiveVariant(t *testing.T) {
	testCases := []struct {
		name    string
		variant string
		want    int
	}{
		{"basic", config.VariantBasic, http.StatusNotFound},
		{"interactive", config.VariantInteractive, http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t, tc.variant)

			rec := postUpdate(t, srv, `{"input":"genre-checklist.value","value":["Action"]}`)
			assert.Equal(t, tc.want, rec.Code)

			rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/download?n_clicks=1", nil))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestFigures_EncodeFailureIs500(t *testing.T) {
	cfg := config.Default()
	dash := interact.New(dataset.New(nil, []dataset.Record{
		{Name: "Odd", Genre: "Comedy", Minutes: 90, Votes: 1234, Rating: math.Inf(1)},
	}), interact.Options{})
	srv, err := New(cfg, dash)
	require.NoError(t, err)

	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/figures/scatter", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"failed to encode response"}`, rec.Body.String())
}

func TestRequestID(t *testing.T) {
	srv := newTestServer(t, config.VariantInteractive)

	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err)

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	assert.Equal(t, id, do(t, srv, req).Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	assert.NotEqual(t, "not-a-uuid", do(t, srv, req).Header().Get(RequestIDHeader))
}

func TestSwap(t *testing.T) {
	srv := newTestServer(t, config.VariantInteractive)

	next := interact.New(dataset.New(nil, []dataset.Record{
		{Name: "Coco", Genre: "Family", Minutes: 105, Votes: 500000, Rating: 8.4},
	}), interact.Options{})
	srv.Swap(next)
	srv.Swap(nil)

	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/genres", nil))
	assert.JSONEq(t, `{"genres":["Family"]}`, rec.Body.String())
}

func TestNew_RequiresDashboard(t *testing.T) {
	_, err := New(config.Default(), nil)
	assert.Error(t, err)
}

func TestServe_GracefulShutdown(t *testing.T) {
	srv := newTestServer(t, config.VariantInteractive)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	transport := &http.Transport{DisableKeepAlives: true}
	defer transport.CloseIdleConnections()
	client := &http.Client{Transport: transport, Timeout: 5 * time.Second}

	resp, err := client.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"ok"`)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
