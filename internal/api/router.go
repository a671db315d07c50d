package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// routes wires the dashboard endpoints. Routes are method-scoped, so the
// router answers 405s itself; RequestID threads a correlation ID through
// the request logs.
func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/dashboard", s.handleDashboard)
	r.Get("/api/gauge", s.handleGauge)
	r.Get("/api/metrics", s.handleMetrics)
	r.Get("/api/healthz", s.handleHealthz)
	r.Get("/ws", s.handleWS)

	return r
}
