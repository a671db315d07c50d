package dashboard

import (
	"fmt"

	"github.com/ISWebster1401/PlantCare--sub000/internal/telemetry"
)

const emptyFleetInsights = "No devices are registered yet. Add a plant sensor to start collecting soil telemetry."

// insightsText builds the one-paragraph dashboard summary. It is a pure
// function of the summary and alerts, so identical passes produce
// identical text.
func insightsText(summary telemetry.Summary, alerts []telemetry.Alert) string {
	if summary.TotalReadings == 0 {
		return fmt.Sprintf("Monitoring %d devices (%d connected). No readings have arrived in the current window.",
			summary.TotalDevices, summary.ConnectedDevices)
	}

	text := fmt.Sprintf("Monitoring %d devices (%d connected). Average soil moisture %.2f%% across %d readings.",
		summary.TotalDevices, summary.ConnectedDevices,
		summary.Averages[telemetry.MetricHumidity], summary.TotalReadings)

	switch n := len(alerts); {
	case n == 1:
		text += " 1 device needs attention."
	case n > 1:
		text += fmt.Sprintf(" %d devices need attention.", n)
	default:
		text += " All readings are within configured thresholds."
	}
	return text
}
