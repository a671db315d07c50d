package telemetry

import (
	"errors"
	"testing"
	"time"
)

func float64Ptr(v float64) *float64 {
	return &v
}

func TestReadingTime(t *testing.T) {
	r := Reading{ID: "r1", Value: 42, Timestamp: "2024-03-15T10:47:23+02:00"}
	got, err := r.Time()
	if err != nil {
		t.Fatalf("Time() failed: %v", err)
	}
	want, _ := time.Parse(time.RFC3339, "2024-03-15T08:47:23Z")
	if !got.Equal(want) {
		t.Errorf("Time() = %v, expected %v", got, want)
	}
	if got.Location() != time.UTC {
		t.Errorf("Time() location = %v, expected UTC", got.Location())
	}

	bad := Reading{ID: "r2", Value: 42, Timestamp: "yesterday"}
	if _, err := bad.Time(); !errors.Is(err, ErrInvalidTimestamp) {
		t.Errorf("Expected ErrInvalidTimestamp, got %v", err)
	}
}

func TestReadingMetric(t *testing.T) {
	r := Reading{
		ID:          "r1",
		Value:       55.5,
		Timestamp:   "2024-03-15T10:00:00Z",
		Temperature: float64Ptr(21.3),
		DeviceID:    "dev-1",
	}

	if got := r.Metric(MetricHumidity); got == nil || *got != 55.5 {
		t.Errorf("Metric(humidity) = %v, expected 55.5", got)
	}
	if got := r.Metric(MetricTemperature); got == nil || *got != 21.3 {
		t.Errorf("Metric(temperature) = %v, expected 21.3", got)
	}
	if got := r.Metric(MetricPressure); got != nil {
		t.Errorf("Metric(pressure) = %v, expected nil", *got)
	}
	if got := r.Metric(MetricAltitude); got != nil {
		t.Errorf("Metric(altitude) = %v, expected nil", *got)
	}

	// Mutating the returned pointer must not reach back into the reading
	v := r.Metric(MetricTemperature)
	*v = -100
	if *r.Temperature != 21.3 {
		t.Errorf("Metric() leaked a pointer into the reading: %v", *r.Temperature)
	}
}

func TestDeviceIdentifier(t *testing.T) {
	d := Device{ID: "uuid-1", Code: "PC-001"}
	if got := d.Identifier(); got != "PC-001" {
		t.Errorf("Identifier() = %q, expected code", got)
	}

	d = Device{ID: "uuid-2"}
	if got := d.Identifier(); got != "uuid-2" {
		t.Errorf("Identifier() = %q, expected ID fallback", got)
	}
}

func TestDeviceListNormalize(t *testing.T) {
	// Counters missing: derive from the connected flags
	dl := DeviceList{
		Devices: []Device{
			{ID: "a", Connected: true},
			{ID: "b", Connected: false},
			{ID: "c", Connected: true},
		},
	}
	got := dl.Normalize()
	if got.Total != 3 || got.Connected != 2 || got.Active != 2 || got.Offline != 1 {
		t.Errorf("Derived counters = total %d connected %d active %d offline %d",
			got.Total, got.Connected, got.Active, got.Offline)
	}

	// Counters present: keep the registry's numbers untouched
	dl = DeviceList{
		Devices:   []Device{{ID: "a", Connected: false}},
		Total:     5,
		Active:    4,
		Connected: 3,
		Offline:   2,
	}
	got = dl.Normalize()
	if got.Total != 5 || got.Active != 4 || got.Connected != 3 || got.Offline != 2 {
		t.Errorf("Registry counters were overwritten: %+v", got)
	}

	// Empty registry stays all-zero
	got = DeviceList{}.Normalize()
	if got.Total != 0 || got.Connected != 0 {
		t.Errorf("Empty list produced counters: %+v", got)
	}
}
