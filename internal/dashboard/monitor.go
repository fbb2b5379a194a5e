// Package dashboard charts pack current and shows voltage gauges in a terminal.
package dashboard

import (
	"time"

	"github.com/juju/loggo"

	"github.com/willcbaker/nasabot-power-monitor/internal/window"
)

var log = loggo.GetLogger("powermon.dashboard")

const (
	// MaxRateHz is the fastest selectable update speed
	MaxRateHz = 20.0
	// minTimerHz keeps a running timer finite when the speed is turned to zero
	minTimerHz = 0.01
	// minChartSpan is the narrowest x axis shown on the chart
	minChartSpan = 20.0
)

// Frame is everything drawn on one redraw
type Frame struct {
	Points     []window.Point
	XMin, XMax float64
	Current    Gauge
	Pack       Gauge
	Cells      []Gauge
	Power      PowerStats
	PeakMin    float64
	PeakMax    float64
	RateHz     float64
	Drawn      time.Time
}

// Monitor holds the dashboard state. It is owned by a single goroutine.
type Monitor struct {
	numCells int
	active   bool
	rateHz   float64
	counter  int

	feed    window.LiveFeed[window.Point]
	samples *window.SlidingWindow
	peaks   window.RollingMinMax
	power   powerHistory

	current Gauge
	pack    Gauge
	cells   []Gauge

	// gaugesChanged is set by the voltage and power handlers until the next frame
	gaugesChanged bool
}

// NewMonitor creates an idle monitor for a pack of numCells cells
func NewMonitor(numCells int, rateHz float64) *Monitor {
	cells := make([]Gauge, numCells)
	for i := range cells {
		cells[i] = CellGauge(i)
	}

	m := &Monitor{
		numCells: numCells,
		samples:  window.NewSlidingWindow(window.DefaultCapacity),
		peaks:    window.NewRollingMinMax(),
		current:  CurrentGauge(),
		pack:     PackGauge(numCells),
		cells:    cells,
	}
	m.SetRate(rateHz)
	return m
}

// Start clears the chart and begins accepting data
func (m *Monitor) Start() {
	m.samples.Reset()
	m.peaks.Reset()
	m.power.reset()
	m.feed.Read() // discard anything left from a previous run
	m.counter = 0
	m.gaugesChanged = false
	m.active = true
	log.Infof("Monitor running")
}

// Stop ignores further data until the next Start
func (m *Monitor) Stop() {
	m.active = false
	log.Infof("Monitor idle")
}

// Active reports whether the monitor is running
func (m *Monitor) Active() bool {
	return m.active
}

// SetRate sets the update speed, clamped to 0..MaxRateHz
func (m *Monitor) SetRate(hz float64) {
	m.rateHz = max(0, min(MaxRateHz, hz))
}

// Rate returns the update speed in Hz
func (m *Monitor) Rate() float64 {
	return m.rateHz
}

// Samples returns how many readings the chart holds
func (m *Monitor) Samples() int {
	return m.samples.Len()
}

// Interval returns the redraw period for the current speed
func (m *Monitor) Interval() time.Duration {
	hz := max(minTimerHz, m.rateHz)
	return time.Duration(float64(time.Second) / hz)
}

// OnShuntCurrent records a current reading in A; the chart is in mA
func (m *Monitor) OnShuntCurrent(amps float64) {
	if !m.active {
		return
	}
	m.feed.Add(window.Point{X: float64(m.counter), Y: amps * 1000})
	m.counter++
}

// OnBusVoltage updates the pack voltage gauge
func (m *Monitor) OnBusVoltage(volts float64) {
	if !m.active {
		return
	}
	m.pack.Value = volts
	m.gaugesChanged = true
}

// OnCellVoltages updates the cell gauges from readings in mV.
// Extra readings beyond the configured cell count are ignored.
func (m *Monitor) OnCellVoltages(milliVolts []float64) {
	if !m.active {
		return
	}
	for i := 0; i < m.numCells && i < len(milliVolts); i++ {
		m.cells[i].Value = milliVolts[i] / 1000
	}
	m.gaugesChanged = true
}

// OnBusPower records a bus power reading in W
func (m *Monitor) OnBusPower(watts float64, now time.Time) {
	if !m.active {
		return
	}
	m.power.add(watts, now)
	m.gaugesChanged = true
}

// Tick folds the latest current reading into the chart and returns a frame.
// Gauge and power updates alone also produce a frame but leave the chart as is.
// It returns false when nothing changed since the last tick.
func (m *Monitor) Tick(now time.Time) (Frame, bool) {
	p, fresh := m.feed.Read()
	if !fresh && !m.gaugesChanged {
		return Frame{}, false
	}
	m.gaugesChanged = false

	if fresh {
		m.samples.Push(p)
		m.peaks.Update(p.Y, now)

		if avg, ok := m.samples.Average(); ok {
			m.current.Value = avg
		}
	}

	return m.frame(now), true
}

// frame snapshots the current state for rendering
func (m *Monitor) frame(now time.Time) Frame {
	xMin, xMax := m.samples.XRange(minChartSpan)
	return Frame{
		Points:  m.samples.Points(),
		XMin:    xMin,
		XMax:    xMax,
		Current: m.current,
		Pack:    m.pack,
		Cells:   append([]Gauge(nil), m.cells...),
		Power:   m.power.stats(now),
		PeakMin: m.peaks.Min(),
		PeakMax: m.peaks.Max(),
		RateHz:  m.rateHz,
		Drawn:   now,
	}
}
