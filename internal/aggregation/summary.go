package aggregation

import (
	"github.com/ISWebster1401/PlantCare--sub000/internal/telemetry"
)

// ComputeSummary folds every parsed sample across all devices into
// whole-window averages, independent of the chart timeframe. The fold
// state is local to the call, so repeated passes over the same input
// cannot contaminate each other. A metric with zero samples averages to
// 0 by definition.
func ComputeSummary(registry telemetry.DeviceList, series []DeviceSeries) telemetry.Summary {
	metrics := telemetry.Metrics()
	accums := make([]metricAccum, len(metrics))
	totalReadings := 0

	for _, ds := range series {
		totalReadings += len(ds.Samples)
		for _, s := range ds.Samples {
			for i, m := range metrics {
				accums[i].add(s.Reading.Metric(m.Key))
			}
		}
	}

	registry = registry.Normalize()
	summary := telemetry.Summary{
		TotalDevices:     registry.Total,
		ActiveDevices:    registry.Active,
		ConnectedDevices: registry.Connected,
		OfflineDevices:   registry.Offline,
		TotalReadings:    totalReadings,
		Averages:         make(map[telemetry.MetricKey]float64, len(metrics)),
		SampleCounts:     make(map[telemetry.MetricKey]int, len(metrics)),
	}

	for i, m := range metrics {
		summary.SampleCounts[m.Key] = accums[i].count
		if avg, ok := accums[i].average(); ok {
			summary.Averages[m.Key] = m.Round(avg)
		} else {
			summary.Averages[m.Key] = 0
		}
	}
	return summary
}
