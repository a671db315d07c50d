package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ISWebster1401/PlantCare--sub000/internal/api"
	"github.com/ISWebster1401/PlantCare--sub000/internal/dashboard"
	"github.com/ISWebster1401/PlantCare--sub000/internal/push"
	"github.com/ISWebster1401/PlantCare--sub000/internal/schedule"
	"github.com/ISWebster1401/PlantCare--sub000/internal/source"
	"github.com/ISWebster1401/PlantCare--sub000/internal/telemetry"
	"github.com/ISWebster1401/PlantCare--sub000/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	fmt.Println("Starting PlantCare Dashboard...")

	timeframe, err := telemetry.ParseTimeframe(cfg.Engine.Timeframe)
	if err != nil {
		log.Fatalf("Invalid default timeframe: %v", err)
	}

	// Open the configured reading source backend
	registry, readings, cleanup, err := openSource(cfg)
	if err != nil {
		log.Fatalf("Failed to open reading source: %v", err)
	}
	defer cleanup()

	engine := dashboard.NewEngine(registry, readings, cfg.Engine.ReadingLimit)

	// WebSocket hub for live snapshot pushes
	hub := push.NewHub()
	go hub.Run()
	fmt.Println("Push hub started")

	// HTTP server
	server := api.NewServer(&cfg.HTTP, engine, hub, timeframe)
	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start dashboard server: %v", err)
	}

	// Schedule the periodic refresh: run a pass, push the snapshot to
	// every connected dashboard
	scheduler := schedule.NewScheduler()
	scheduler.Start()
	defer scheduler.Stop()

	refresh := func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Engine.RefreshInterval)
		defer cancel()

		snapshot, err := engine.Run(ctx, timeframe)
		if err != nil {
			log.Printf("Refresh pass failed: %v", err)
			return
		}
		hub.BroadcastSnapshot(snapshot)
	}
	if err := scheduler.Every("dashboard-refresh", cfg.Engine.RefreshInterval, refresh); err != nil {
		log.Fatalf("Failed to schedule refresh: %v", err)
	}

	// Print statistics periodically
	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			schedStats := scheduler.Stats()
			fmt.Printf("\n--- Dashboard Statistics ---\n")
			fmt.Printf("WebSocket Clients: %d\n", hub.Count())
			fmt.Printf("Scheduled Tasks: %d (%d recurring)\n", schedStats.ScheduledTasks, schedStats.RecurringTasks)
			fmt.Printf("----------------------------\n\n")
		}
	}()

	fmt.Println("\n✓ PlantCare Dashboard is running")
	fmt.Printf("✓ HTTP server listening on port %d\n", cfg.HTTP.Port)
	fmt.Printf("✓ Snapshot refresh every %s (%s buckets)\n", cfg.Engine.RefreshInterval, timeframe)
	fmt.Println("✓ Press Ctrl+C to stop")

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Printf("Dashboard server shutdown error: %v", err)
	}
}

// openSource wires the configured backend as both the device registry
// and the reading source.
func openSource(cfg *config.Config) (dashboard.DeviceRegistry, dashboard.ReadingSource, func(), error) {
	switch cfg.Engine.Source {
	case "postgres":
		store, err := source.Open(cfg.Database.ConnectionString())
		if err != nil {
			return nil, nil, nil, err
		}
		fmt.Println("Connected to database")
		return store, store, func() { store.Close() }, nil

	case "http":
		client := source.NewAPIClient(cfg.API.BaseURL, cfg.API.Token, cfg.API.Timeout)
		fmt.Printf("Using PlantCare API at %s\n", cfg.API.BaseURL)
		return client, client, func() {}, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown reading source %q", cfg.Engine.Source)
	}
}
