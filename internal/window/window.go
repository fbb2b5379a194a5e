// Package window holds the bounded buffers that feed the dashboard chart.
package window

// DefaultCapacity is the number of samples kept for charting
const DefaultCapacity = 100

// Point is one charted (x, y) pair
type Point struct {
	X float64
	Y float64
}

// SlidingWindow keeps the most recent points in insertion order.
// Eviction is count based: the oldest point is dropped once capacity is exceeded.
type SlidingWindow struct {
	points   []Point
	capacity int
}

// NewSlidingWindow creates a window holding at most capacity points
func NewSlidingWindow(capacity int) *SlidingWindow {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &SlidingWindow{
		points:   make([]Point, 0, capacity+1),
		capacity: capacity,
	}
}

// Push appends a point, evicting the oldest if the window is full
func (w *SlidingWindow) Push(p Point) {
	w.points = append(w.points, p)
	if len(w.points) > w.capacity {
		// Shift in place so the backing array does not grow
		copy(w.points, w.points[1:])
		w.points = w.points[:w.capacity]
	}
}

// Len returns the number of stored points
func (w *SlidingWindow) Len() int {
	return len(w.points)
}

// Capacity returns the maximum number of stored points
func (w *SlidingWindow) Capacity() int {
	return w.capacity
}

// Average returns the arithmetic mean of the stored Y values.
// ok is false on an empty window.
func (w *SlidingWindow) Average() (avg float64, ok bool) {
	if len(w.points) == 0 {
		return 0, false
	}
	var sum float64
	for _, p := range w.points {
		sum += p.Y
	}
	return sum / float64(len(w.points)), true
}

// Points returns a copy of the stored points, oldest first
func (w *SlidingWindow) Points() []Point {
	out := make([]Point, len(w.points))
	copy(out, w.points)
	return out
}

// XRange returns the chart x axis span: from the oldest x to the newest x,
// but never narrower than minSpan
func (w *SlidingWindow) XRange(minSpan float64) (lo, hi float64) {
	if len(w.points) == 0 {
		return 0, minSpan
	}
	lo = w.points[0].X
	hi = max(minSpan, w.points[len(w.points)-1].X)
	return lo, hi
}

// Reset drops all points
func (w *SlidingWindow) Reset() {
	w.points = w.points[:0]
}
