// Package httpapi exposes the matchmaking engine over HTTP.
//
// All responses are JSON envelopes with a `success` boolean; failures carry
// an `error` message and never a stack trace.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nextlevelbuilder/pairline/internal/match"
	"github.com/nextlevelbuilder/pairline/internal/metrics"
)

// Config holds the HTTP server settings.
type Config struct {
	Address      string
	Port         int
	AppID        string // external-service app identifier echoed to paired callers
	RateLimitRPM int
	RateBurst    int
}

// Server wires the engine, metrics, and middleware into an http.Server.
type Server struct {
	engine  *match.Engine
	metrics *metrics.Metrics
	limiter *RateLimiter
	appID   string

	httpServer *http.Server
}

// NewServer creates the HTTP API server.
func NewServer(cfg Config, engine *match.Engine, m *metrics.Metrics) *Server {
	s := &Server{
		engine:  engine,
		metrics: m,
		limiter: NewRateLimiter(cfg.RateLimitRPM, cfg.RateBurst),
		appID:   cfg.AppID,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Address, cfg.Port),
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.recoverer)
	r.Use(s.requestLogger)
	r.Use(s.rateLimit)

	r.Get("/api/health", s.withMetrics("/api/health", s.handleHealth))
	r.Post("/api/request-connection", s.withMetrics("/api/request-connection", s.handleRequestConnection))
	r.Get("/api/check-pairing/{requestID}", s.withMetrics("/api/check-pairing", s.handleCheckPairing))
	r.Post("/api/cancel-connection", s.withMetrics("/api/cancel-connection", s.handleCancelConnection))
	r.Post("/api/end-call", s.withMetrics("/api/end-call", s.handleEndCall))
	r.Get("/api/active-channels", s.withMetrics("/api/active-channels", s.handleActiveChannels))

	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// ListenAndServe runs the server until Shutdown or a listener error.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
