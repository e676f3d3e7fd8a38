package engine

import "time"

// TelemetryWindow is the number of frame durations kept.
const TelemetryWindow = 60

// Telemetry is a rolling window of frame compute durations. It is
// diagnostic only and never affects the simulation.
type Telemetry struct {
	samples []time.Duration
}

// Record returns a copy with d appended, dropping the oldest sample once the
// window is full.
func (t Telemetry) Record(d time.Duration) Telemetry {
	start := 0
	if len(t.samples) >= TelemetryWindow {
		start = len(t.samples) - TelemetryWindow + 1
	}
	samples := make([]time.Duration, 0, TelemetryWindow)
	samples = append(samples, t.samples[start:]...)
	return Telemetry{samples: append(samples, d)}
}

// Len returns the number of samples held.
func (t Telemetry) Len() int {
	return len(t.samples)
}

// Average returns the mean frame duration, or 0 with no samples.
func (t Telemetry) Average() time.Duration {
	if len(t.samples) == 0 {
		return 0
	}
	var total time.Duration
	for _, s := range t.samples {
		total += s
	}
	return total / time.Duration(len(t.samples))
}

// Max returns the longest frame duration in the window.
func (t Telemetry) Max() time.Duration {
	var longest time.Duration
	for _, s := range t.samples {
		longest = max(longest, s)
	}
	return longest
}

// Samples returns a copy of the window, oldest first.
func (t Telemetry) Samples() []time.Duration {
	return append([]time.Duration(nil), t.samples...)
}
