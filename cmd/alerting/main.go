package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/ISWebster1401/PlantCare--sub000/internal/alerting"
	"github.com/ISWebster1401/PlantCare--sub000/internal/dashboard"
	"github.com/ISWebster1401/PlantCare--sub000/internal/queue"
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

	fmt.Println("Starting Alerting Service...")

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

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	fmt.Println("Connected to Redis")

	// Create state manager
	stateManager := alerting.NewStateManager(redisClient, cfg.Alerting.SeenTTL)

	// Create the alert topic and producer
	if err := queue.EnsureTopic(cfg.Kafka.Brokers, cfg.Kafka.TopicAlerts, cfg.Kafka.NumPartitions, 1); err != nil {
		fmt.Printf("Note: Topic creation failed (may already exist): %v\n", err)
	}

	producer := queue.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicAlerts)
	defer producer.Close()
	fmt.Println("Alert producer initialized")

	// Schedule the evaluation ticks
	scheduler := schedule.NewScheduler()
	scheduler.Start()
	defer scheduler.Stop()

	evaluate := func() {
		evalCtx, cancel := context.WithTimeout(ctx, cfg.Alerting.EvalInterval)
		defer cancel()

		if err := runEvaluation(evalCtx, engine, timeframe, stateManager, producer); err != nil {
			log.Printf("Evaluation pass failed: %v", err)
		}
	}
	if err := scheduler.Every("alert-evaluation", cfg.Alerting.EvalInterval, evaluate); err != nil {
		log.Fatalf("Failed to schedule evaluation: %v", err)
	}

	fmt.Println("\n✓ Alerting Service is running")
	fmt.Printf("✓ Evaluating every %s, publishing to %s\n", cfg.Alerting.EvalInterval, cfg.Kafka.TopicAlerts)
	fmt.Println("✓ Press Ctrl+C to stop")

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down gracefully...")
}

// runEvaluation executes one evaluation pass: recompute alerts, drop the
// ones already published, push the rest to the notification topic.
func runEvaluation(ctx context.Context, engine *dashboard.Engine, tf telemetry.Timeframe, stateManager *alerting.StateManager, producer *queue.Producer) error {
	snapshot, err := engine.Run(ctx, tf)
	if err != nil {
		return err
	}

	fresh, err := stateManager.FilterNew(ctx, snapshot.Alerts)
	if err != nil {
		return err
	}

	for _, alert := range fresh {
		data, err := alerting.EncodeEvent(alerting.NewEvent(alert))
		if err != nil {
			log.Printf("Failed to encode alert %s: %v", alert.ID, err)
			continue
		}

		// Keyed by device ID so one device's alerts stay ordered
		if err := producer.Publish(ctx, alert.DeviceID, data); err != nil {
			log.Printf("Failed to publish alert %s: %v", alert.ID, err)
			// Release the claim so the next pass can retry the publish
			if err := stateManager.Forget(ctx, alert.ID); err != nil {
				log.Printf("Failed to release alert %s: %v", alert.ID, err)
			}
			continue
		}

		fmt.Printf("Published alert %s (%s, %s)\n", alert.ID, alert.DeviceName, alert.Severity)
	}

	if len(snapshot.Alerts) > 0 {
		fmt.Printf("Evaluation pass: %d active alerts, %d new\n", len(snapshot.Alerts), len(fresh))
	}

	return nil
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
