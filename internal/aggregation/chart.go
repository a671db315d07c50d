package aggregation

import (
	"sort"
	"time"

	"github.com/ISWebster1401/PlantCare--sub000/internal/telemetry"
)

// BuildChartData turns each device's samples into per-bucket chart
// entries and returns the combined list sorted ascending by bucket. The
// sort is stable, so entries sharing a bucket keep device order. A
// device with no samples contributes nothing.
func BuildChartData(series []DeviceSeries, tf telemetry.Timeframe) []telemetry.ChartEntry {
	metrics := telemetry.Metrics()

	entries := make([]telemetry.ChartEntry, 0)
	for _, ds := range series {
		entries = append(entries, deviceEntries(ds, tf, metrics)...)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Bucket.Before(entries[j].Bucket)
	})
	return entries
}

// deviceEntries groups one device's samples by bucket key and emits one
// entry per bucket with all four metric slots populated (value or nil).
// A metric slot is set only when at least one sample in the bucket
// carried that metric; the value is the mean of the non-null samples
// rounded to the metric's decimal count.
func deviceEntries(ds DeviceSeries, tf telemetry.Timeframe, metrics []telemetry.MetricInfo) []telemetry.ChartEntry {
	if len(ds.Samples) == 0 {
		return nil
	}

	buckets := make(map[int64][]metricAccum)
	for _, s := range ds.Samples {
		key := telemetry.TruncateTime(s.At, tf).UnixMilli()
		accums, ok := buckets[key]
		if !ok {
			accums = make([]metricAccum, len(metrics))
			buckets[key] = accums
		}
		for i, m := range metrics {
			accums[i].add(s.Reading.Metric(m.Key))
		}
	}

	keys := make([]int64, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	entries := make([]telemetry.ChartEntry, 0, len(keys))
	for _, key := range keys {
		entry := telemetry.ChartEntry{
			Bucket:   time.UnixMilli(key).UTC(),
			DeviceID: ds.Device.ID,
		}
		for i, m := range metrics {
			if avg, ok := buckets[key][i].average(); ok {
				rounded := m.Round(avg)
				entry.SetMetric(m.Key, &rounded)
			}
		}
		entries = append(entries, entry)
	}
	return entries
}
