package aggregation

import (
	"time"

	"github.com/ISWebster1401/PlantCare--sub000/internal/telemetry"
)

// Sample is a reading whose timestamp has been parsed. Readings with
// malformed timestamps never become samples; they are dropped before
// bucketing and summary accumulation.
type Sample struct {
	Reading telemetry.Reading
	At      time.Time
}

// DeviceSeries pairs a device with the samples parsed from its fetched
// reading list.
type DeviceSeries struct {
	Device  telemetry.Device
	Samples []Sample
}

// ParseSamples parses the timestamps of one device's readings, dropping
// the malformed ones. The second return value is the dropped count.
func ParseSamples(readings []telemetry.Reading) ([]Sample, int) {
	samples := make([]Sample, 0, len(readings))
	dropped := 0
	for _, r := range readings {
		at, err := r.Time()
		if err != nil {
			dropped++
			continue
		}
		samples = append(samples, Sample{Reading: r, At: at})
	}
	return samples, dropped
}

// metricAccum folds one metric's non-null samples into an explicit
// {sum, count} pair.
type metricAccum struct {
	sum   float64
	count int
}

func (a *metricAccum) add(v *float64) {
	if v == nil {
		return
	}
	a.sum += *v
	a.count++
}

func (a metricAccum) average() (float64, bool) {
	if a.count == 0 {
		return 0, false
	}
	return a.sum / float64(a.count), true
}
