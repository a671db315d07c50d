package dashboard

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ISWebster1401/PlantCare--sub000/internal/aggregation"
	"github.com/ISWebster1401/PlantCare--sub000/internal/alerting"
	"github.com/ISWebster1401/PlantCare--sub000/internal/telemetry"
)

// DefaultReadingLimit caps the readings fetched per device when no
// limit is configured.
const DefaultReadingLimit = 200

// ErrRegistryUnavailable marks a pass that failed before any readings
// were fetched because the device registry could not be reached.
var ErrRegistryUnavailable = &PassError{"device registry unavailable"}

// PassError represents an aggregation pass error
type PassError struct {
	message string
}

func (e *PassError) Error() string {
	return e.message
}

// DeviceRegistry lists the devices to aggregate over.
type DeviceRegistry interface {
	Devices(ctx context.Context) (telemetry.DeviceList, error)
}

// ReadingSource fetches one device's recent readings, newest first,
// bounded by limit.
type ReadingSource interface {
	Readings(ctx context.Context, deviceIdentifier string, limit int) ([]telemetry.Reading, error)
}

// Engine runs full aggregation passes: fetch the device list, fan out
// the per-device reading fetches, then fold the collected data into
// chart entries, a summary, alerts and an insights line. Every pass
// owns its working set; nothing is cached or carried between passes.
type Engine struct {
	registry DeviceRegistry
	source   ReadingSource
	limit    int
}

// NewEngine creates an engine. limit caps the readings fetched per
// device; zero or negative selects DefaultReadingLimit.
func NewEngine(registry DeviceRegistry, source ReadingSource, limit int) *Engine {
	if limit <= 0 {
		limit = DefaultReadingLimit
	}
	return &Engine{registry: registry, source: source, limit: limit}
}

// Run executes one aggregation pass for the given timeframe. A registry
// failure fails the whole pass; a single device's fetch failure only
// blanks that device's series.
func (e *Engine) Run(ctx context.Context, tf telemetry.Timeframe) (*telemetry.Snapshot, error) {
	list, err := e.registry.Devices(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	list = list.Normalize()

	devices := list.Devices
	if devices == nil {
		devices = []telemetry.Device{}
	}

	snapshot := &telemetry.Snapshot{
		PassID:      uuid.New().String(),
		Timeframe:   tf,
		Devices:     devices,
		GeneratedAt: time.Now().UTC(),
	}

	// An empty fleet short-circuits to an empty series and a zero
	// summary. This is a designed fallback, not an error.
	if len(list.Devices) == 0 {
		snapshot.ChartData = []telemetry.ChartEntry{}
		snapshot.Alerts = []telemetry.Alert{}
		snapshot.Summary = aggregation.ComputeSummary(list, nil)
		snapshot.InsightsText = emptyFleetInsights
		return snapshot, nil
	}

	readingsByDevice := e.fetchAll(ctx, list.Devices)
	if err := ctx.Err(); err != nil {
		// The caller abandoned the pass; never hand back partial output
		return nil, err
	}

	series := make([]aggregation.DeviceSeries, len(list.Devices))
	for i, device := range list.Devices {
		samples, dropped := aggregation.ParseSamples(readingsByDevice[i])
		if dropped > 0 {
			log.Printf("Dropped %d unparseable readings from device %s", dropped, device.ID)
		}
		series[i] = aggregation.DeviceSeries{Device: device, Samples: samples}
	}

	snapshot.ChartData = aggregation.BuildChartData(series, tf)
	snapshot.Summary = aggregation.ComputeSummary(list, series)
	snapshot.Alerts = alerting.DetectAll(list.Devices, readingsByDevice)
	snapshot.InsightsText = insightsText(snapshot.Summary, snapshot.Alerts)

	return snapshot, nil
}

// Gauge runs a pass and projects the selected metric from its output.
func (e *Engine) Gauge(ctx context.Context, key telemetry.MetricKey, tf telemetry.Timeframe) (aggregation.Gauge, error) {
	snapshot, err := e.Run(ctx, tf)
	if err != nil {
		return aggregation.Gauge{}, err
	}
	return aggregation.ProjectGauge(snapshot.ChartData, snapshot.Summary, key), nil
}

// fetchAll fans out one fetch per device and waits for all of them to
// settle. Each goroutine owns exactly one result slot, so no locking is
// needed. A failed fetch logs, leaves an empty list and never cancels
// the other fetches.
func (e *Engine) fetchAll(ctx context.Context, devices []telemetry.Device) [][]telemetry.Reading {
	results := make([][]telemetry.Reading, len(devices))

	var wg sync.WaitGroup
	for i, device := range devices {
		wg.Add(1)
		go func(slot int, device telemetry.Device) {
			defer wg.Done()
			readings, err := e.source.Readings(ctx, device.Identifier(), e.limit)
			if err != nil {
				log.Printf("Failed to fetch readings for device %s: %v", device.ID, err)
				results[slot] = []telemetry.Reading{}
				return
			}
			results[slot] = readings
		}(i, device)
	}
	wg.Wait()

	return results
}
