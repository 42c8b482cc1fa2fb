// Package api is the HTTP surface the calendar widget talks to.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"barberia/internal/availability"
	"barberia/internal/booking"
	"barberia/internal/events"
	"barberia/internal/export"
	"barberia/internal/snapshot"
)

// HTTPServer serves availability and booking endpoints for the widget.
type HTTPServer struct {
	server    *http.Server
	store     *snapshot.Store
	engine    *availability.Engine
	submitter *booking.Submitter
	sessions  *booking.SessionStore
	bus       *events.Bus
	report    *export.DayReport
	logger    zerolog.Logger
	now       func() time.Time
}

// NewHTTPServer wires the handlers on the given port.
func NewHTTPServer(
	port int,
	store *snapshot.Store,
	engine *availability.Engine,
	submitter *booking.Submitter,
	sessions *booking.SessionStore,
	bus *events.Bus,
	logger zerolog.Logger,
) *HTTPServer {
	s := &HTTPServer{
		store:     store,
		engine:    engine,
		submitter: submitter,
		sessions:  sessions,
		bus:       bus,
		report:    export.NewDayReport(engine),
		logger:    logger,
		now:       time.Now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/services", s.withRequestID(s.handleServices))
	mux.HandleFunc("/api/month", s.withRequestID(s.handleMonth))
	mux.HandleFunc("/api/slots", s.withRequestID(s.handleSlots))
	mux.HandleFunc("/api/appointments", s.withRequestID(s.handleCreateAppointment))
	mux.HandleFunc("/api/export/schedule", s.withRequestID(s.handleExport))
	mux.HandleFunc("/healthz", s.handleHealth)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Handler exposes the mux for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

// Start runs the server until it is shut down.
func (s *HTTPServer) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("http server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// withRequestID tags each request with an id and logs its outcome.
func (s *HTTPServer) withRequestID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestID)

		start := time.Now()
		next(w, r)
		s.logger.Debug().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request handled")
	}
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !s.store.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "loading"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"fetched_at": s.store.FetchedAt().Format(time.RFC3339),
	})
}

// requireSnapshot rejects requests until the initial snapshot loaded.
// Core-data fetch failure is a blocking error state, not a silent empty
// calendar.
func (s *HTTPServer) requireSnapshot(w http.ResponseWriter) bool {
	if s.store.Ready() {
		return true
	}
	writeError(w, http.StatusServiceUnavailable, "booking data not loaded; retry shortly")
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
