// Package api provides the HTTP surface: the WebSocket stream endpoint,
// threshold management, history export and health.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/holee9/gx10-dashboard/internal/alerter"
	"github.com/holee9/gx10-dashboard/internal/broadcast"
	"github.com/holee9/gx10-dashboard/internal/model"
	"github.com/holee9/gx10-dashboard/internal/store"
)

// Server is the dashboard HTTP server.
type Server struct {
	thresholds  *alerter.ThresholdStore
	hub         *broadcast.Hub
	broadcaster *broadcast.Broadcaster
	buffer      *store.Store // nil when server-side recording is off
	mux         *http.ServeMux
	server      *http.Server
}

// NewServer creates the HTTP server. buffer may be nil, in which case export
// endpoints report recording as unavailable.
func NewServer(addr string, th *alerter.ThresholdStore, hub *broadcast.Hub, b *broadcast.Broadcaster, buffer *store.Store) *Server {
	srv := &Server{
		thresholds:  th,
		hub:         hub,
		broadcaster: b,
		buffer:      buffer,
		mux:         http.NewServeMux(),
	}

	srv.registerRoutes()

	srv.server = &http.Server{
		Addr:         addr,
		Handler:      SecurityHeadersMiddleware(RecoveryMiddleware(LoggingMiddleware(srv.mux))),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return srv
}

// Run starts the HTTP server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	slog.Info("HTTP server starting", "addr", s.server.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		slog.Info("HTTP server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// Handler exposes the full middleware-wrapped handler for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /ws", s.handleWS)

	s.mux.HandleFunc("GET /api/thresholds", s.handleGetThresholds)
	s.mux.HandleFunc("PUT /api/thresholds", s.handlePutThresholds)
	s.mux.HandleFunc("POST /api/thresholds/reset", s.handleResetThresholds)

	s.mux.HandleFunc("GET /api/export", s.handleExport)

	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
}

// writeJSON marshals v to JSON into a buffer first, then writes it to the
// response. This ensures marshalling errors can be returned as a proper 500.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("encoding JSON response", "path", r.URL.Path, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(data); err != nil {
		slog.Debug("writing JSON response", "path", r.URL.Path, "error", err)
	}
}

func (s *Server) handleGetThresholds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]any{
		"thresholds": s.thresholds.Get(),
		"defaults":   alerter.DefaultThresholds(),
	})
}

func (s *Server) handlePutThresholds(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Thresholds *model.ThresholdPatch `json:"thresholds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, fmt.Sprintf("invalid body: %v", err), http.StatusBadRequest)
		return
	}
	if body.Thresholds == nil {
		http.Error(w, "missing thresholds field", http.StatusBadRequest)
		return
	}

	merged, err := s.thresholds.Set(*body.Thresholds)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, r, map[string]any{"thresholds": merged})
}

func (s *Server) handleResetThresholds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]any{"thresholds": s.thresholds.Reset()})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.buffer == nil {
		http.Error(w, "recording disabled", http.StatusServiceUnavailable)
		return
	}

	hours := 24
	if h := r.URL.Query().Get("hours"); h != "" {
		v, err := strconv.Atoi(h)
		if err != nil || v < 1 || v > 168 {
			http.Error(w, "hours must be an integer in [1,168]", http.StatusBadRequest)
			return
		}
		hours = v
	}
	since := time.Now().Add(-time.Duration(hours) * time.Hour).Unix()

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	stamp := time.Now().UTC().Format("2006-01-02")

	switch format {
	case "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=metrics-%s.json", stamp))
		if err := s.buffer.ExportJSON(w, since); err != nil {
			slog.Error("exporting JSON", "error", err)
		}
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=metrics-%s.csv", stamp))
		if err := s.buffer.ExportCSV(w, since); err != nil {
			slog.Error("exporting CSV", "error", err)
		}
	default:
		http.Error(w, "format must be json or csv", http.StatusBadRequest)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":      "ok",
		"subscribers": s.hub.Count(),
	}
	if t := s.broadcaster.LastTick(); !t.IsZero() {
		resp["last_tick"] = t.UTC().Format(time.RFC3339)
	}
	writeJSON(w, r, resp)
}
