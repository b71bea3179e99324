package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/floodwatch-map-service/internal/domain"
	"github.com/couchcryptid/floodwatch-map-service/internal/geoselect"
	"github.com/couchcryptid/floodwatch-map-service/internal/session"
	"github.com/couchcryptid/floodwatch-map-service/internal/timeseries"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MapService is the live map session behind the view API.
type MapService interface {
	MapView() session.MapView
	DetailView() session.DetailView
	Dispatch(ctx context.Context, ev geoselect.Event) (geoselect.Transition, session.MapView, error)
	RefreshSnapshot(ctx context.Context) error
	OpenDetail(ctx context.Context, ref domain.StationRef, r timeseries.Range) (session.DetailView, error)
	SetRange(ctx context.Context, r timeseries.Range) (session.DetailView, error)
	SelectStation(ctx context.Context, ref domain.StationRef) (session.DetailView, error)
	CloseDetail(ctx context.Context) error
}

// Server exposes health, readiness, metrics, and the map view API.
type Server struct {
	httpServer *http.Server
	svc        MapService
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the health and view routes.
func NewServer(addr string, svc MapService, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:    svc,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/map", s.handleMap)
	mux.HandleFunc("POST /api/map/events", s.handleEvent)
	mux.HandleFunc("POST /api/map/refresh", s.handleRefresh)
	mux.HandleFunc("POST /api/stations/{ref}/select", s.handleSelect)
	mux.HandleFunc("POST /api/stations/{ref}/detail", s.handleOpenDetail)
	mux.HandleFunc("GET /api/stations/{ref}/chart", s.handleChart)
	mux.HandleFunc("PUT /api/stations/detail/range", s.handleSetRange)
	mux.HandleFunc("DELETE /api/stations/detail", s.handleCloseDetail)

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

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client went away
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
