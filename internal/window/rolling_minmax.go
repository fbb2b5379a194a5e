package window

import (
	"math"
	"time"
)

// minMaxBucket holds min/max values for a single minute
type minMaxBucket struct {
	min, max float64
}

func emptyBucket() minMaxBucket {
	return minMaxBucket{min: math.MaxFloat64, max: -math.MaxFloat64}
}

// RollingMinMax tracks min/max values over a rolling 1-hour window using 60 1-minute buckets
type RollingMinMax struct {
	buckets       [60]minMaxBucket
	currentMinute int // -1 = uninitialized
	lastUpdate    time.Time
}

// NewRollingMinMax creates a new RollingMinMax with all buckets cleared
func NewRollingMinMax() RollingMinMax {
	r := RollingMinMax{}
	r.clear()
	return r
}

// clear drops every bucket
func (r *RollingMinMax) clear() {
	for i := range r.buckets {
		r.buckets[i] = emptyBucket()
	}
	r.currentMinute = -1
}

// Reset discards all recorded values
func (r *RollingMinMax) Reset() {
	r.clear()
	r.lastUpdate = time.Time{}
}

// Update records a value observed at the given time.
// A gap of an hour or more since the previous update discards all buckets.
func (r *RollingMinMax) Update(value float64, now time.Time) {
	if !r.lastUpdate.IsZero() && now.Sub(r.lastUpdate) >= time.Hour {
		r.clear()
	}
	r.lastUpdate = now
	r.updateAt(value, now.Minute())
}

// updateAt records a value at the specified minute of the hour
func (r *RollingMinMax) updateAt(value float64, minute int) {
	if r.currentMinute >= 0 && minute != r.currentMinute {
		// Clear missed buckets (wrap around)
		for i := (r.currentMinute + 1) % 60; i != minute; i = (i + 1) % 60 {
			r.buckets[i] = emptyBucket()
		}
	}

	if minute != r.currentMinute {
		r.buckets[minute] = minMaxBucket{min: value, max: value}
		r.currentMinute = minute
		return
	}

	b := &r.buckets[minute]
	b.min = min(b.min, value)
	b.max = max(b.max, value)
}

// Min returns the minimum value across all buckets, or 0 if no data
func (r *RollingMinMax) Min() float64 {
	result := math.MaxFloat64
	for _, b := range r.buckets {
		result = min(result, b.min)
	}
	if result == math.MaxFloat64 {
		return 0
	}
	return result
}

// Max returns the maximum value across all buckets, or 0 if no data
func (r *RollingMinMax) Max() float64 {
	result := -math.MaxFloat64
	for _, b := range r.buckets {
		result = max(result, b.max)
	}
	if result == -math.MaxFloat64 {
		return 0
	}
	return result
}
