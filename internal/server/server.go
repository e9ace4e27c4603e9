// Package server serves the dashboards over HTTP. Figures are emitted as
// plotly JSON and drawn in the browser; control changes are posted back and
// dispatched through the dashboard's callback registry.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/marco/toonboard/internal/config"
	"github.com/marco/toonboard/internal/interact"
)

// PlotlyURL is the plotly.js bundle the page loads.
const PlotlyURL = "https://cdn.plot.ly/plotly-2.35.2.min.js"

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Server holds the current dashboard snapshot and the HTTP handler tree.
type Server struct {
	cfg     *config.Config
	dash    atomic.Pointer[interact.Dashboard]
	page    *template.Template
	handler http.Handler
}

// New creates a Server over an initial dashboard.
func New(cfg *config.Config, dash *interact.Dashboard) (*Server, error) {
	if dash == nil {
		return nil, errors.New("server needs a dashboard")
	}
	page, err := template.ParseFS(templateFS, "templates/index.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}

	s := &Server{cfg: cfg, page: page}
	s.dash.Store(dash)
	s.handler = s.routes()
	return s, nil
}

// Swap replaces the dashboard served to subsequent requests. Requests in
// flight keep the snapshot they started with.
func (s *Server) Swap(dash *interact.Dashboard) {
	if dash == nil {
		return
	}
	s.dash.Store(dash)
	slog.Info("dashboard snapshot replaced", "records", dash.Dataset().Len())
}

// Dashboard returns the current snapshot.
func (s *Server) Dashboard() *interact.Dashboard {
	return s.dash.Load()
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	static, _ := fs.Sub(staticFS, "static")

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/genres", s.handleGenres)
	mux.HandleFunc("GET /api/figures/{kind}", s.handleFigure)
	if s.cfg.Dashboard.Variant == config.VariantInteractive {
		mux.HandleFunc("POST /_update", s.handleUpdate)
		mux.HandleFunc("GET /download", s.handleDownload)
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))

	return requestID(accessLog(recoverPanics(mux)))
}

// Run listens on the configured address until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully within the configured timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: time.Duration(s.cfg.Server.ReadHeaderTimeoutSeconds) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("dashboard listening",
			"addr", ln.Addr().String(),
			"variant", s.cfg.Dashboard.Variant,
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(s.cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()

	slog.Info("shutting down dashboard")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
