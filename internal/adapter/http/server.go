// Package http serves health, metrics, and the nowcast catalog.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/fire-nowcast-engine/internal/domain"
	"github.com/couchcryptid/fire-nowcast-engine/internal/store"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Catalog is the read side of the nowcast store.
type Catalog interface {
	List() []store.CatalogEntry
	Get(fireID string) (domain.Nowcast, bool)
}

// Server exposes health, readiness, metrics, and nowcast routes.
type Server struct {
	httpServer *http.Server
	catalog    Catalog
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and the
// /fires serving routes.
func NewServer(addr string, ready ReadinessChecker, catalog Catalog, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		catalog: catalog,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /fires", s.handleListFires)
	mux.HandleFunc("GET /fires/{id}/nowcast", s.handleGetNowcast)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func (s *Server) handleListFires(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"fires": s.catalog.List()})
}

// nowcastResponse is the detail view: the nowcast metadata, optionally with
// the full rasters when the client asks for them.
type nowcastResponse struct {
	domain.Nowcast
	Grids *gridsPayload `json:"grids,omitempty"`
}

type gridsPayload struct {
	H              int        `json:"h"`
	W              int        `json:"w"`
	Transform      [6]float64 `json:"transform"`
	Probability    []float32  `json:"probability"` // calibrated
	RawProbability []float32  `json:"raw_probability"`
	MeanIntensity  []float32  `json:"mean_intensity"`
	Uncertainty    []float32  `json:"uncertainty"`
	Direction      []float32  `json:"direction"` // compass degrees, -1 where undefined
}

// handleGetNowcast serves the latest nowcast for a fire. The grids are large,
// so they are only included with ?include=grids.
func (s *Server) handleGetNowcast(w http.ResponseWriter, r *http.Request) {
	fireID := r.PathValue("id")
	n, ok := s.catalog.Get(fireID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no nowcast for fire " + fireID})
		return
	}

	resp := nowcastResponse{Nowcast: n}
	if r.URL.Query().Get("include") == "grids" {
		tr := n.Probability.Transform
		resp.Grids = &gridsPayload{
			H:              n.Probability.H,
			W:              n.Probability.W,
			Transform:      [6]float64{tr.A, tr.B, tr.C, tr.D, tr.E, tr.F},
			Probability:    n.CalibratedProbability.Data(),
			RawProbability: n.Probability.Data(),
			MeanIntensity:  n.MeanIntensity.Data(),
			Uncertainty:    n.Uncertainty.Data(),
			Direction:      n.Direction.Data(),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
