package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ISWebster1401/PlantCare--sub000/internal/dashboard"
	"github.com/ISWebster1401/PlantCare--sub000/internal/push"
	"github.com/ISWebster1401/PlantCare--sub000/internal/telemetry"
	"github.com/ISWebster1401/PlantCare--sub000/pkg/config"
)

// Server is the dashboard HTTP server. It serves snapshot and gauge
// queries, the metric descriptor tables and the WebSocket push endpoint.
type Server struct {
	config           *config.HTTPConfig
	engine           *dashboard.Engine
	hub              *push.Hub
	defaultTimeframe telemetry.Timeframe
	httpServer       *http.Server
	startedAt        time.Time
}

// NewServer creates a new dashboard server
func NewServer(cfg *config.HTTPConfig, engine *dashboard.Engine, hub *push.Hub, defaultTimeframe telemetry.Timeframe) *Server {
	s := &Server{
		config:           cfg,
		engine:           engine,
		hub:              hub,
		defaultTimeframe: defaultTimeframe,
		startedAt:        time.Now(),
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to start dashboard server: %w", err)
	}

	fmt.Printf("Dashboard server listening on %s\n", s.httpServer.Addr)

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			fmt.Printf("Dashboard server error: %v\n", err)
		}
	}()

	return nil
}

// Stop shuts the HTTP server down gracefully, draining in-flight
// requests until ctx expires
func (s *Server) Stop(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	fmt.Println("Dashboard server stopped")
	return err
}
