package telemetry

import (
	"fmt"
	"time"
)

// Device represents a registered soil sensor as reported by the device registry
type Device struct {
	ID        string     `json:"id"`
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	Connected bool       `json:"connected"`
	LastSeen  *time.Time `json:"lastSeen,omitempty"`
}

// Identifier returns the value used to address the device on the readings API.
// Devices registered before a code was assigned fall back to their raw ID.
func (d Device) Identifier() string {
	if d.Code != "" {
		return d.Code
	}
	return d.ID
}

// DeviceList is the registry response: the devices plus fleet counters.
// Older registry builds omit the counters and leave them to be derived.
type DeviceList struct {
	Devices   []Device `json:"devices"`
	Total     int      `json:"total"`
	Active    int      `json:"active"`
	Connected int      `json:"connected"`
	Offline   int      `json:"offline"`
}

// Normalize derives the fleet counters from the device slice when the
// registry did not provide them (Total == 0 with a non-empty list).
// Active devices are those currently connected.
func (dl DeviceList) Normalize() DeviceList {
	if dl.Total != 0 || len(dl.Devices) == 0 {
		return dl
	}

	connected := 0
	for _, d := range dl.Devices {
		if d.Connected {
			connected++
		}
	}

	dl.Total = len(dl.Devices)
	dl.Connected = connected
	dl.Active = connected
	dl.Offline = dl.Total - connected
	return dl
}

// Reading is a single sensor sample as it arrives off the wire. Value is
// the soil moisture percentage and is always present; the remaining
// metrics are nil when the sensor did not report them. Reading lists are
// ordered newest-first by the source.
type Reading struct {
	ID          string   `json:"id"`
	Value       float64  `json:"value"`
	Timestamp   string   `json:"timestamp"`
	Temperature *float64 `json:"temperature"`
	Pressure    *float64 `json:"pressure"`
	Altitude    *float64 `json:"altitude"`
	DeviceID    string   `json:"deviceId"`
}

// Time parses the reading timestamp (RFC3339). Malformed timestamps are
// reported with ErrInvalidTimestamp so callers can drop the reading
// instead of failing the pass.
func (r Reading) Time() (time.Time, error) {
	t, err := time.Parse(time.RFC3339, r.Timestamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, r.Timestamp)
	}
	return t.UTC(), nil
}

// Metric extracts the named metric from the reading, or nil when the
// sensor did not report it. The returned pointer is a copy.
func (r Reading) Metric(key MetricKey) *float64 {
	switch key {
	case MetricHumidity:
		v := r.Value
		return &v
	case MetricTemperature:
		return copyValue(r.Temperature)
	case MetricPressure:
		return copyValue(r.Pressure)
	case MetricAltitude:
		return copyValue(r.Altitude)
	default:
		return nil
	}
}

func copyValue(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

var (
	ErrInvalidTimestamp = &ReadingError{"invalid reading timestamp"}
)

// ReadingError represents a malformed reading field
type ReadingError struct {
	msg string
}

func (e *ReadingError) Error() string {
	return e.msg
}
