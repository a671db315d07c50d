package alerting

import (
	"fmt"

	"github.com/ISWebster1401/PlantCare--sub000/internal/telemetry"
)

// Moisture thresholds in percent, inclusive on both sides. The same
// constants apply to every device; per-plant calibration is not
// supported.
const (
	LowMoistureThreshold  = 30.0
	HighMoistureThreshold = 75.0
)

// Detect classifies one device's latest reading into at most one alert.
// Only the reading at index 0 is inspected; bucketed averages never
// trigger alerts. A device with no readings produces none.
func Detect(device telemetry.Device, readings []telemetry.Reading) (telemetry.Alert, bool) {
	if len(readings) == 0 {
		return telemetry.Alert{}, false
	}

	latest := readings[0]
	switch {
	case latest.Value <= LowMoistureThreshold:
		return telemetry.Alert{
			ID:         alertID(device.ID, latest.ID),
			DeviceID:   device.ID,
			DeviceName: device.Name,
			Severity:   telemetry.SeverityLow,
			Message:    fmt.Sprintf("low humidity detected (%.1f%%)", latest.Value),
			Action:     "consider increasing irrigation or checking the irrigation system.",
		}, true
	case latest.Value >= HighMoistureThreshold:
		return telemetry.Alert{
			ID:         alertID(device.ID, latest.ID),
			DeviceID:   device.ID,
			DeviceName: device.Name,
			Severity:   telemetry.SeverityMedium,
			Message:    fmt.Sprintf("high humidity detected (%.1f%%)", latest.Value),
			Action:     "check irrigation and drainage to avoid excess moisture.",
		}, true
	default:
		return telemetry.Alert{}, false
	}
}

// DetectAll runs Detect over every device; readingsByDevice[i] is the
// reading list fetched for devices[i]. Alerts come out in device order.
func DetectAll(devices []telemetry.Device, readingsByDevice [][]telemetry.Reading) []telemetry.Alert {
	alerts := make([]telemetry.Alert, 0)
	for i, d := range devices {
		if i >= len(readingsByDevice) {
			break
		}
		if alert, ok := Detect(d, readingsByDevice[i]); ok {
			alerts = append(alerts, alert)
		}
	}
	return alerts
}

// alertID ties an alert to the exact reading that raised it, so the same
// condition is not re-identified across passes until the reading changes.
func alertID(deviceID, readingID string) string {
	return deviceID + "-" + readingID
}
