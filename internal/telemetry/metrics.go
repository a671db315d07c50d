package telemetry

import (
	"fmt"
	"math"
	"time"
)

// MetricKey identifies one of the metrics a sensor can report.
type MetricKey string

const (
	MetricHumidity    MetricKey = "humidity"
	MetricTemperature MetricKey = "temperature"
	MetricPressure    MetricKey = "pressure"
	MetricAltitude    MetricKey = "altitude"
)

// MetricInfo describes how a metric is labelled, bounded and rounded.
// The table is a display contract shared with the dashboard frontend,
// configuration constants rather than derived data.
type MetricInfo struct {
	Key      MetricKey `json:"key"`
	Label    string    `json:"label"`
	Unit     string    `json:"unit"`
	Min      float64   `json:"min"`
	Max      float64   `json:"max"`
	Decimals int       `json:"decimals"`
}

var metricTable = []MetricInfo{
	{Key: MetricHumidity, Label: "Soil Moisture", Unit: "%", Min: 0, Max: 100, Decimals: 2},
	{Key: MetricTemperature, Label: "Temperature", Unit: "°C", Min: -10, Max: 50, Decimals: 1},
	{Key: MetricPressure, Label: "Pressure", Unit: "hPa", Min: 900, Max: 1100, Decimals: 1},
	{Key: MetricAltitude, Label: "Altitude", Unit: "m", Min: 0, Max: 3000, Decimals: 0},
}

// Metrics returns the descriptor table in display order.
func Metrics() []MetricInfo {
	out := make([]MetricInfo, len(metricTable))
	copy(out, metricTable)
	return out
}

// MetricInfoFor looks up the descriptor for a metric key.
func MetricInfoFor(key MetricKey) (MetricInfo, bool) {
	for _, m := range metricTable {
		if m.Key == key {
			return m, true
		}
	}
	return MetricInfo{}, false
}

// ParseMetricKey validates a metric key received from a caller.
func ParseMetricKey(s string) (MetricKey, error) {
	key := MetricKey(s)
	if _, ok := MetricInfoFor(key); !ok {
		return "", fmt.Errorf("unknown metric %q", s)
	}
	return key, nil
}

// Round rounds v to the metric's configured decimal count.
func (m MetricInfo) Round(v float64) float64 {
	pow := math.Pow(10, float64(m.Decimals))
	return math.Round(v*pow) / pow
}

// Ratio maps v into [0,1] against the metric's display range. Values
// outside the range saturate at the boundary.
func (m MetricInfo) Ratio(v float64) float64 {
	span := m.Max - m.Min
	if span == 0 {
		return 0
	}
	ratio := (v - m.Min) / span
	if ratio < 0 {
		return 0
	}
	if ratio > 1 {
		return 1
	}
	return ratio
}

// Timeframe selects the bucket width used for chart aggregation.
type Timeframe string

const (
	TimeframeMinute Timeframe = "minute"
	TimeframeHour   Timeframe = "hour"
	TimeframeDay    Timeframe = "day"
)

// Timeframes returns the supported timeframes in display order.
func Timeframes() []Timeframe {
	return []Timeframe{TimeframeMinute, TimeframeHour, TimeframeDay}
}

// Step returns the fixed bucket width for the timeframe.
func (tf Timeframe) Step() time.Duration {
	switch tf {
	case TimeframeMinute:
		return time.Minute
	case TimeframeHour:
		return time.Hour
	case TimeframeDay:
		return 24 * time.Hour
	default:
		return 0
	}
}

// ParseTimeframe validates a timeframe received from a caller.
func ParseTimeframe(s string) (Timeframe, error) {
	switch tf := Timeframe(s); tf {
	case TimeframeMinute, TimeframeHour, TimeframeDay:
		return tf, nil
	default:
		return "", fmt.Errorf("unknown timeframe %q", s)
	}
}

// Truncate parses a wire timestamp and floors it to the start of its
// step-aligned window. Two calls with the same inputs always produce the
// same bucket.
func Truncate(timestamp string, tf Timeframe) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, timestamp)
	}
	return TruncateTime(t, tf), nil
}

// TruncateTime floors t to the start of its step-aligned window,
// floor(unixMilli / step) * step, in UTC.
func TruncateTime(t time.Time, tf Timeframe) time.Time {
	step := tf.Step().Milliseconds()
	if step <= 0 {
		return t.UTC()
	}
	ms := t.UnixMilli()
	q := ms / step
	if ms%step != 0 && ms < 0 {
		q--
	}
	return time.UnixMilli(q * step).UTC()
}
