// Package api serves stop search and forecasts over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/catouberos/transit-forecast/internal/handler"
	"github.com/catouberos/transit-forecast/internal/models"
	"github.com/catouberos/transit-forecast/internal/provider"
)

const DefaultPort = 8080

type DataStore interface {
	EnsureLoaded(ctx context.Context) bool
	Stops() []models.Stop
	Routes() []models.Route
	SearchStops(query string) []models.Stop
	FindStopByID(id models.ID) (models.Stop, bool)
	FindRoutesByTitle(title string) []models.Route
}

type Forecaster interface {
	StopForecast(ctx context.Context, stop models.Stop) string
}

type QueryHandler interface {
	Handle(ctx context.Context, q handler.Query) handler.Reply
}

type Server struct {
	store      DataStore
	forecaster Forecaster
	queries    QueryHandler
	provider   provider.Provider
	now        func() time.Time

	server *http.Server
}

func New(p provider.Provider, store DataStore, forecaster Forecaster, queries QueryHandler, port int) *Server {
	if port == 0 {
		port = DefaultPort
	}

	s := &Server{
		store:      store,
		forecaster: forecaster,
		queries:    queries,
		provider:   p,
		now:        time.Now,
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(logRequests)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/stops", s.handleStops).Methods("GET")
	api.HandleFunc("/stops/{id}", s.handleStop).Methods("GET")
	api.HandleFunc("/stops/{id}/forecast", s.handleStopForecast).Methods("GET")
	api.HandleFunc("/routes", s.handleRoutes).Methods("GET")
	api.HandleFunc("/platforms/{id}/gtfsrt", s.handlePlatformFeed).Methods("GET")
	api.HandleFunc("/query", s.handleQuery).Methods("POST")

	return r
}

// ListenAndServe blocks until the server fails or is shut down.
func (s *Server) ListenAndServe() error {
	slog.Info("Starting HTTP API", "addr", s.server.Addr)

	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		slog.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}
