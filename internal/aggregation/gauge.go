package aggregation

import (
	"math"

	"github.com/ISWebster1401/PlantCare--sub000/internal/telemetry"
)

// Gauge is a normalized single-value projection of one metric.
type Gauge struct {
	Metric  telemetry.MetricKey `json:"metric"`
	Value   float64             `json:"value"`
	Ratio   float64             `json:"ratio"`
	Percent float64             `json:"percent"`
}

// ProjectGauge averages the selected metric across the most recent
// bucket in the chart and maps the result into [0,1] against the
// metric's display range. When the chart is empty, or the latest bucket
// carries no sample for the metric, it falls back to the summary
// average; when that too has zero samples the gauge reads 0.
func ProjectGauge(entries []telemetry.ChartEntry, summary telemetry.Summary, key telemetry.MetricKey) Gauge {
	info, ok := telemetry.MetricInfoFor(key)
	if !ok {
		return Gauge{Metric: key}
	}

	if value, ok := latestBucketAverage(entries, key); ok {
		return newGauge(info, value)
	}
	if summary.SampleCounts[key] > 0 {
		return newGauge(info, summary.Averages[key])
	}
	return Gauge{Metric: key}
}

// latestBucketAverage finds the maximum bucket timestamp across the
// entries and averages the metric over the entries in that bucket, one
// per device that reported there.
func latestBucketAverage(entries []telemetry.ChartEntry, key telemetry.MetricKey) (float64, bool) {
	if len(entries) == 0 {
		return 0, false
	}

	latest := entries[0].Bucket
	for _, e := range entries[1:] {
		if e.Bucket.After(latest) {
			latest = e.Bucket
		}
	}

	var acc metricAccum
	for _, e := range entries {
		if e.Bucket.Equal(latest) {
			acc.add(e.Metric(key))
		}
	}
	return acc.average()
}

func newGauge(info telemetry.MetricInfo, value float64) Gauge {
	ratio := info.Ratio(value)
	return Gauge{
		Metric:  info.Key,
		Value:   value,
		Ratio:   ratio,
		Percent: math.Round(ratio*1000) / 10,
	}
}
