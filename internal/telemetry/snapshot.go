package telemetry

import "time"

// ChartEntry is one device's aggregated contribution to a single time
// bucket. Each metric slot carries the rounded average of the non-null
// samples in that bucket, or nil when the bucket had none.
type ChartEntry struct {
	Bucket      time.Time `json:"bucket"`
	DeviceID    string    `json:"deviceId"`
	Humidity    *float64  `json:"humidity"`
	Temperature *float64  `json:"temperature"`
	Pressure    *float64  `json:"pressure"`
	Altitude    *float64  `json:"altitude"`
}

// Metric returns the entry's slot for the given metric key.
func (e ChartEntry) Metric(key MetricKey) *float64 {
	switch key {
	case MetricHumidity:
		return e.Humidity
	case MetricTemperature:
		return e.Temperature
	case MetricPressure:
		return e.Pressure
	case MetricAltitude:
		return e.Altitude
	default:
		return nil
	}
}

// SetMetric stores a value in the entry's slot for the given metric key.
func (e *ChartEntry) SetMetric(key MetricKey, v *float64) {
	switch key {
	case MetricHumidity:
		e.Humidity = v
	case MetricTemperature:
		e.Temperature = v
	case MetricPressure:
		e.Pressure = v
	case MetricAltitude:
		e.Altitude = v
	}
}

// Summary holds the fleet counters and the whole-window metric averages.
// Averages cover the full fetched window regardless of the chart
// timeframe; a metric with no samples averages to 0 by definition.
type Summary struct {
	TotalDevices     int                   `json:"totalDevices"`
	ActiveDevices    int                   `json:"activeDevices"`
	ConnectedDevices int                   `json:"connectedDevices"`
	OfflineDevices   int                   `json:"offlineDevices"`
	TotalReadings    int                   `json:"totalReadings"`
	Averages         map[MetricKey]float64 `json:"averages"`
	SampleCounts     map[MetricKey]int     `json:"sampleCounts"`
}

// Severity grades how urgently an alert needs attention.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Alert flags a device whose latest reading breached a moisture
// threshold. Alerts are recomputed from scratch on every pass and never
// persisted; the ID ties the alert to the exact reading that raised it.
type Alert struct {
	ID         string   `json:"id"`
	DeviceID   string   `json:"deviceId"`
	DeviceName string   `json:"deviceName"`
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
	Action     string   `json:"action,omitempty"`
}

// Snapshot is the full output of one aggregation pass.
type Snapshot struct {
	PassID       string       `json:"passId"`
	Timeframe    Timeframe    `json:"timeframe"`
	Devices      []Device     `json:"devices"`
	Summary      Summary      `json:"summary"`
	ChartData    []ChartEntry `json:"chartData"`
	Alerts       []Alert      `json:"alerts"`
	InsightsText string       `json:"insightsText"`
	GeneratedAt  time.Time    `json:"generatedAt"`
}
