package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/marco/toonboard/internal/chart"
	"github.com/marco/toonboard/internal/config"
	"github.com/marco/toonboard/internal/interact"
)

const maxUpdateBytes = 1 << 20

type pageData struct {
	Title       string
	Variant     string
	Interactive bool
	Labels      []string
	PlotlyURL   string
}

type updateRequest struct {
	Input string                     `json:"input"`
	Value json.RawMessage            `json:"value"`
	State map[string]json.RawMessage `json:"state,omitempty"`
}

type updateResponse struct {
	Output string `json:"output"`
	Data   any    `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	dash := s.Dashboard()
	data := pageData{
		Title:       s.cfg.Dashboard.Title,
		Variant:     s.cfg.Dashboard.Variant,
		Interactive: s.cfg.Dashboard.Variant == config.VariantInteractive,
		Labels:      dash.Labels(),
		PlotlyURL:   PlotlyURL,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil {
		slog.Error("failed to render page",
			"request_id", RequestIDFrom(r.Context()),
			"error", err,
		)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"records": s.Dashboard().Dataset().Len(),
	})
}

func (s *Server) handleGenres(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"genres": s.Dashboard().Labels()})
}

func (s *Server) handleFigure(w http.ResponseWriter, r *http.Request) {
	dash := s.Dashboard()
	kind := chart.Kind(r.PathValue("kind"))

	if selected, ok := selection(r); ok && kind == chart.KindPie {
		writeJSON(w, http.StatusOK, dash.FilterPie(selected).Figure())
		return
	}
	spec, ok := dash.Chart(kind)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown figure %q", kind))
		return
	}
	writeJSON(w, http.StatusOK, spec.Figure())
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		if mt, _, _ := mime.ParseMediaType(ct); mt != "application/json" {
			writeError(w, http.StatusUnsupportedMediaType, "expected application/json")
			return
		}
	}

	var req updateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid update body: "+err.Error())
		return
	}

	input, err := interact.ParseProp(req.Input)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in := interact.Inputs{Value: req.Value, State: make(map[interact.Prop]json.RawMessage, len(req.State))}
	for key, raw := range req.State {
		p, err := interact.ParseProp(key)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		in.State[p] = raw
	}

	update, err := s.Dashboard().Registry().Dispatch(r.Context(), input, in)
	switch {
	case errors.Is(err, interact.ErrNoUpdate):
		w.WriteHeader(http.StatusNoContent)
		return
	case errors.Is(err, interact.ErrUnknownInput):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, interact.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		slog.Error("callback failed",
			"request_id", RequestIDFrom(r.Context()),
			"input", input.String(),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "callback failed")
		return
	}

	slog.Debug("callback dispatched",
		"request_id", RequestIDFrom(r.Context()),
		"input", input.String(),
		"output", update.Output.String(),
	)
	writeJSON(w, http.StatusOK, updateResponse{Output: update.Output.String(), Data: update.Data})
}

// handleDownload serves the CSV as an attachment, for clients that cannot
// decode the base64 payload themselves.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	dash := s.Dashboard()

	clicks := 0
	if v := r.URL.Query().Get("n_clicks"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "n_clicks must be an integer")
			return
		}
		clicks = n
	}
	selected, ok := selection(r)
	if !ok {
		selected = dash.Labels()
	}

	payload, err := dash.Download(clicks, selected)
	if errors.Is(err, interact.ErrNoUpdate) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		slog.Error("download failed", "request_id", RequestIDFrom(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, "download failed")
		return
	}
	body, err := payload.Decode()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "download failed")
		return
	}

	w.Header().Set("Content-Type", payload.Type)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": payload.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Write(body)
}

// selection reads repeated genre query values. ok is false when the
// parameter is absent, meaning the default selection. Blank values are
// dropped so that "?genre=" selects nothing.
func selection(r *http.Request) (selected []string, ok bool) {
	values, ok := r.URL.Query()["genre"]
	if !ok {
		return nil, false
	}
	selected = make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			selected = append(selected, v)
		}
	}
	return selected, true
}

// writeJSON encodes v before touching the header so an encoding failure
// still reaches the client as a 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"failed to encode response"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(data, '\n'))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
