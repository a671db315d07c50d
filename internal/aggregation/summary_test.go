package aggregation

import (
	"testing"

	"github.com/ISWebster1401/PlantCare--sub000/internal/telemetry"
)

func TestComputeSummaryAverages(t *testing.T) {
	devA := telemetry.Device{ID: "dev-a", Connected: true}
	devB := telemetry.Device{ID: "dev-b", Connected: true}

	r1 := reading("r1", 20, "2024-03-15T10:05:00Z")
	r1.Temperature = fptr(21.5)
	r2 := reading("r2", 25, "2024-03-15T11:05:00Z")
	r3 := reading("r3", 30, "2024-03-14T10:05:00Z")
	r3.Pressure = fptr(1000.4)

	registry := telemetry.DeviceList{Devices: []telemetry.Device{devA, devB}}
	series := []DeviceSeries{
		{Device: devA, Samples: mustSamples(t, r1, r2)},
		{Device: devB, Samples: mustSamples(t, r3)},
	}

	s := ComputeSummary(registry, series)

	if s.TotalReadings != 3 {
		t.Errorf("TotalReadings = %d, expected 3", s.TotalReadings)
	}
	if got := s.Averages[telemetry.MetricHumidity]; got != 25 {
		t.Errorf("Humidity average = %v, expected 25", got)
	}
	if got := s.Averages[telemetry.MetricTemperature]; got != 21.5 {
		t.Errorf("Temperature average = %v, expected 21.5", got)
	}
	if got := s.Averages[telemetry.MetricPressure]; got != 1000.4 {
		t.Errorf("Pressure average = %v, expected 1000.4", got)
	}
	if got := s.Averages[telemetry.MetricAltitude]; got != 0 {
		t.Errorf("Altitude average = %v, expected 0 with no samples", got)
	}

	if s.SampleCounts[telemetry.MetricHumidity] != 3 {
		t.Errorf("Humidity count = %d, expected 3", s.SampleCounts[telemetry.MetricHumidity])
	}
	if s.SampleCounts[telemetry.MetricTemperature] != 1 {
		t.Errorf("Temperature count = %d, expected 1", s.SampleCounts[telemetry.MetricTemperature])
	}
	if s.SampleCounts[telemetry.MetricAltitude] != 0 {
		t.Errorf("Altitude count = %d, expected 0", s.SampleCounts[telemetry.MetricAltitude])
	}
}

func TestComputeSummaryRounding(t *testing.T) {
	dev := telemetry.Device{ID: "dev-a", Connected: true}
	series := []DeviceSeries{{Device: dev, Samples: mustSamples(t,
		reading("r1", 10, "2024-03-15T10:00:00Z"),
		reading("r2", 10, "2024-03-15T11:00:00Z"),
		reading("r3", 11, "2024-03-15T12:00:00Z"),
	)}}

	s := ComputeSummary(telemetry.DeviceList{Devices: []telemetry.Device{dev}}, series)
	if got := s.Averages[telemetry.MetricHumidity]; got != 10.33 {
		t.Errorf("Humidity average = %v, expected 10.33", got)
	}
}

func TestComputeSummaryCounters(t *testing.T) {
	// Registry-provided counters pass through untouched
	registry := telemetry.DeviceList{
		Devices:   []telemetry.Device{{ID: "a", Connected: true}},
		Total:     10,
		Active:    7,
		Connected: 6,
		Offline:   4,
	}
	s := ComputeSummary(registry, nil)
	if s.TotalDevices != 10 || s.ActiveDevices != 7 || s.ConnectedDevices != 6 || s.OfflineDevices != 4 {
		t.Errorf("Counters = total %d active %d connected %d offline %d",
			s.TotalDevices, s.ActiveDevices, s.ConnectedDevices, s.OfflineDevices)
	}

	// Absent counters are derived from the connected flags
	registry = telemetry.DeviceList{Devices: []telemetry.Device{
		{ID: "a", Connected: true},
		{ID: "b"},
	}}
	s = ComputeSummary(registry, nil)
	if s.TotalDevices != 2 || s.ConnectedDevices != 1 || s.ActiveDevices != 1 || s.OfflineDevices != 1 {
		t.Errorf("Derived counters = total %d active %d connected %d offline %d",
			s.TotalDevices, s.ActiveDevices, s.ConnectedDevices, s.OfflineDevices)
	}
}

func TestComputeSummaryEmpty(t *testing.T) {
	s := ComputeSummary(telemetry.DeviceList{}, nil)
	if s.TotalDevices != 0 || s.TotalReadings != 0 {
		t.Errorf("Empty summary has counters: %+v", s)
	}
	for _, m := range telemetry.Metrics() {
		if s.Averages[m.Key] != 0 {
			t.Errorf("Average[%s] = %v, expected 0", m.Key, s.Averages[m.Key])
		}
	}
}
