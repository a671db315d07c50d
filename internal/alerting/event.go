package alerting

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ISWebster1401/PlantCare--sub000/internal/telemetry"
)

// Event is an alert as published to the notification topic. The
// triggering value is already embedded in the alert message, so the
// event only adds the emission time.
type Event struct {
	telemetry.Alert
	EmittedAt time.Time `json:"emittedAt"`
}

// NewEvent stamps an alert for publication
func NewEvent(alert telemetry.Alert) Event {
	return Event{Alert: alert, EmittedAt: time.Now().UTC()}
}

// EncodeEvent serializes an alert event for Kafka
func EncodeEvent(event Event) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to encode alert event: %w", err)
	}
	return data, nil
}

// DecodeEvent deserializes an alert event consumed from Kafka
func DecodeEvent(data []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("failed to decode alert event: %w", err)
	}
	return &event, nil
}
