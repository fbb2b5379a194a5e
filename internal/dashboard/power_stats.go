package dashboard

import "time"

// historyRetention bounds how far back bus power readings are kept
const historyRetention = 15 * time.Minute

// Reading represents a timestamped sensor reading
type Reading struct {
	Value     float64
	Timestamp time.Time
}

// Readings is a collection of timestamped readings
type Readings []Reading

// TimeWindows holds values across 1, 5, and 15 minute windows
type TimeWindows struct {
	_1  float64
	_5  float64
	_15 float64
}

// PowerStats holds the current bus power and its time-weighted statistics
type PowerStats struct {
	Current float64
	Average TimeWindows
	Min     TimeWindows
	Max     TimeWindows
	Samples int
}

// calculateTimeWeightedStats computes time-weighted statistics for a time window.
// Each reading is weighted by the duration it was active (time until next reading).
func calculateTimeWeightedStats(readings Readings, windowDuration time.Duration, now time.Time) (avg, lo, hi float64) {
	if len(readings) == 0 {
		return 0, 0, 0
	}

	lastReading := readings[len(readings)-1]
	cutoff := now.Add(-windowDuration)

	// Filter readings within the window
	var windowReadings Readings
	for _, r := range readings {
		if r.Timestamp.After(cutoff) {
			windowReadings = append(windowReadings, r)
		}
	}

	// If no readings in window, use the most recent reading (last known value)
	if len(windowReadings) == 0 {
		return lastReading.Value, lastReading.Value, lastReading.Value
	}

	lo = windowReadings[0].Value
	hi = windowReadings[0].Value

	var weightedSum float64
	var totalDuration float64

	for i, r := range windowReadings {
		lo = min(lo, r.Value)
		hi = max(hi, r.Value)

		// Duration this reading was active
		var duration float64
		if i < len(windowReadings)-1 {
			duration = windowReadings[i+1].Timestamp.Sub(r.Timestamp).Seconds()
		} else {
			duration = now.Sub(r.Timestamp).Seconds()
		}

		weightedSum += r.Value * duration
		totalDuration += duration
	}

	if totalDuration <= 0 {
		// Zero duration (e.g. a single reading stamped now) still has a value
		return lastReading.Value, lo, hi
	}

	return weightedSum / totalDuration, lo, hi
}

// powerHistory keeps recent bus power readings
type powerHistory struct {
	readings Readings
}

// add records a reading and drops anything older than the retention period,
// always keeping the most recent reading
func (h *powerHistory) add(value float64, now time.Time) {
	h.readings = append(h.readings, Reading{Value: value, Timestamp: now})

	cutoff := now.Add(-historyRetention)
	i := 0
	for i < len(h.readings)-1 && !h.readings[i].Timestamp.After(cutoff) {
		i++
	}
	if i > 0 {
		h.readings = append(Readings(nil), h.readings[i:]...)
	}
}

// reset drops all readings
func (h *powerHistory) reset() {
	h.readings = nil
}

// stats computes statistics for every window
func (h *powerHistory) stats(now time.Time) PowerStats {
	if len(h.readings) == 0 {
		return PowerStats{}
	}

	avg1, min1, max1 := calculateTimeWeightedStats(h.readings, 1*time.Minute, now)
	avg5, min5, max5 := calculateTimeWeightedStats(h.readings, 5*time.Minute, now)
	avg15, min15, max15 := calculateTimeWeightedStats(h.readings, 15*time.Minute, now)

	return PowerStats{
		Current: h.readings[len(h.readings)-1].Value,
		Average: TimeWindows{_1: avg1, _5: avg5, _15: avg15},
		Min:     TimeWindows{_1: min1, _5: min5, _15: min15},
		Max:     TimeWindows{_1: max1, _5: max5, _15: max15},
		Samples: len(h.readings),
	}
}
