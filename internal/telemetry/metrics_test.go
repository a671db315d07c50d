package telemetry

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestTruncateDeterminism(t *testing.T) {
	// Two timestamps inside the same hour must land in the same bucket
	a, err := Truncate("2024-03-15T10:02:11Z", TimeframeHour)
	if err != nil {
		t.Fatalf("Truncate failed: %v", err)
	}
	b, err := Truncate("2024-03-15T10:58:59Z", TimeframeHour)
	if err != nil {
		t.Fatalf("Truncate failed: %v", err)
	}
	if !a.Equal(b) {
		t.Errorf("Expected same bucket, got %v and %v", a, b)
	}

	// A timestamp in the next hour must not
	c, err := Truncate("2024-03-15T11:00:00Z", TimeframeHour)
	if err != nil {
		t.Fatalf("Truncate failed: %v", err)
	}
	if a.Equal(c) {
		t.Errorf("Expected different buckets, both were %v", a)
	}

	// Repeated calls with identical input yield identical output
	a2, _ := Truncate("2024-03-15T10:02:11Z", TimeframeHour)
	if !a.Equal(a2) {
		t.Errorf("Truncate is not deterministic: %v vs %v", a, a2)
	}
}

func TestTruncateSteps(t *testing.T) {
	tests := []struct {
		timeframe Timeframe
		input     string
		expected  string
	}{
		{TimeframeMinute, "2024-03-15T10:47:23Z", "2024-03-15T10:47:00Z"},
		{TimeframeHour, "2024-03-15T10:47:23Z", "2024-03-15T10:00:00Z"},
		{TimeframeDay, "2024-03-15T10:47:23Z", "2024-03-15T00:00:00Z"},
		{TimeframeMinute, "2024-03-15T10:47:00Z", "2024-03-15T10:47:00Z"},
	}

	for _, tt := range tests {
		got, err := Truncate(tt.input, tt.timeframe)
		if err != nil {
			t.Fatalf("Truncate(%q, %s) failed: %v", tt.input, tt.timeframe, err)
		}
		want, _ := time.Parse(time.RFC3339, tt.expected)
		if !got.Equal(want) {
			t.Errorf("Truncate(%q, %s) = %v, expected %v", tt.input, tt.timeframe, got, want)
		}
		if got.UnixMilli()%tt.timeframe.Step().Milliseconds() != 0 {
			t.Errorf("Bucket %v is not aligned to the %s step", got, tt.timeframe)
		}
	}
}

func TestTruncateFractionalSeconds(t *testing.T) {
	a, err := Truncate("2024-03-15T10:47:23.512Z", TimeframeMinute)
	if err != nil {
		t.Fatalf("Truncate failed on fractional seconds: %v", err)
	}
	b, _ := Truncate("2024-03-15T10:47:23Z", TimeframeMinute)
	if !a.Equal(b) {
		t.Errorf("Fractional seconds changed the bucket: %v vs %v", a, b)
	}
}

func TestTruncateInvalidTimestamp(t *testing.T) {
	for _, input := range []string{"", "not-a-time", "2024-13-45T99:00:00Z", "1710498443"} {
		_, err := Truncate(input, TimeframeHour)
		if err == nil {
			t.Errorf("Expected error for timestamp %q", input)
			continue
		}
		if !errors.Is(err, ErrInvalidTimestamp) {
			t.Errorf("Expected ErrInvalidTimestamp for %q, got %v", input, err)
		}
	}
}

func TestTruncateTimeBeforeEpoch(t *testing.T) {
	// Flooring must round toward the past, not toward zero
	in, _ := time.Parse(time.RFC3339, "1969-12-31T23:59:30Z")
	got := TruncateTime(in, TimeframeDay)
	want, _ := time.Parse(time.RFC3339, "1969-12-31T00:00:00Z")
	if !got.Equal(want) {
		t.Errorf("TruncateTime before epoch = %v, expected %v", got, want)
	}
}

func TestTimeframeStep(t *testing.T) {
	tests := []struct {
		timeframe Timeframe
		stepMs    int64
	}{
		{TimeframeMinute, 60_000},
		{TimeframeHour, 3_600_000},
		{TimeframeDay, 86_400_000},
	}
	for _, tt := range tests {
		if got := tt.timeframe.Step().Milliseconds(); got != tt.stepMs {
			t.Errorf("Step(%s) = %d ms, expected %d ms", tt.timeframe, got, tt.stepMs)
		}
	}
	if Timeframe("week").Step() != 0 {
		t.Error("Expected zero step for unknown timeframe")
	}
}

func TestParseTimeframe(t *testing.T) {
	for _, valid := range []string{"minute", "hour", "day"} {
		tf, err := ParseTimeframe(valid)
		if err != nil {
			t.Errorf("ParseTimeframe(%q) failed: %v", valid, err)
		}
		if string(tf) != valid {
			t.Errorf("ParseTimeframe(%q) = %q", valid, tf)
		}
	}
	if _, err := ParseTimeframe("fortnight"); err == nil {
		t.Error("Expected error for unknown timeframe")
	}
}

func TestMetricTable(t *testing.T) {
	metrics := Metrics()
	if len(metrics) != 4 {
		t.Fatalf("Expected 4 metrics, got %d", len(metrics))
	}

	expected := map[MetricKey]MetricInfo{
		MetricHumidity:    {Min: 0, Max: 100, Decimals: 2},
		MetricTemperature: {Min: -10, Max: 50, Decimals: 1},
		MetricPressure:    {Min: 900, Max: 1100, Decimals: 1},
		MetricAltitude:    {Min: 0, Max: 3000, Decimals: 0},
	}

	for key, want := range expected {
		info, ok := MetricInfoFor(key)
		if !ok {
			t.Errorf("Missing descriptor for %s", key)
			continue
		}
		if info.Min != want.Min || info.Max != want.Max || info.Decimals != want.Decimals {
			t.Errorf("Descriptor for %s = {min %v max %v dec %d}, expected {min %v max %v dec %d}",
				key, info.Min, info.Max, info.Decimals, want.Min, want.Max, want.Decimals)
		}
		if info.Label == "" || info.Unit == "" {
			t.Errorf("Descriptor for %s is missing label or unit", key)
		}
	}

	if _, ok := MetricInfoFor("ph"); ok {
		t.Error("Expected no descriptor for unknown metric")
	}
	if _, err := ParseMetricKey("ph"); err == nil {
		t.Error("Expected error for unknown metric key")
	}
}

func TestMetricRound(t *testing.T) {
	humidity, _ := MetricInfoFor(MetricHumidity)
	temperature, _ := MetricInfoFor(MetricTemperature)
	altitude, _ := MetricInfoFor(MetricAltitude)

	tests := []struct {
		metric   MetricInfo
		input    float64
		expected float64
	}{
		{humidity, 22.5, 22.5},
		{humidity, 33.333333, 33.33},
		{humidity, 66.666666, 66.67},
		{temperature, 15.25, 15.3},
		{altitude, 1234.6, 1235},
	}

	for _, tt := range tests {
		if got := tt.metric.Round(tt.input); got != tt.expected {
			t.Errorf("Round(%s, %v) = %v, expected %v", tt.metric.Key, tt.input, got, tt.expected)
		}
	}
}

func TestMetricRatio(t *testing.T) {
	temperature, _ := MetricInfoFor(MetricTemperature)

	// (15 - (-10)) / 60
	got := temperature.Ratio(15)
	if math.Abs(got-25.0/60.0) > 1e-9 {
		t.Errorf("Ratio(15) = %v, expected %v", got, 25.0/60.0)
	}

	// Out-of-range values saturate instead of overflowing the gauge
	if got := temperature.Ratio(80); got != 1 {
		t.Errorf("Ratio above range = %v, expected 1", got)
	}
	if got := temperature.Ratio(-40); got != 0 {
		t.Errorf("Ratio below range = %v, expected 0", got)
	}
	if got := temperature.Ratio(50); got != 1 {
		t.Errorf("Ratio at max = %v, expected 1", got)
	}
}
