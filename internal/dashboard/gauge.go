package dashboard

import "fmt"

const (
	cellMinVolts   = 3.7
	cellMaxVolts   = 4.2
	cellLevelVolts = 3.8

	currentMaxMilliAmps   = 200.0
	currentAlarmMilliAmps = 180.0
)

// Gauge is a bounded bar with an optional alarm level
type Gauge struct {
	Label        string
	Min          float64
	Max          float64
	Alarm        float64
	AlarmEnabled bool
	Value        float64
}

// Fraction returns how full the bar is, clamped to [0, 1]
func (g Gauge) Fraction() float64 {
	if g.Max <= g.Min {
		return 0
	}
	f := (g.Value - g.Min) / (g.Max - g.Min)
	return max(0, min(1, f))
}

// Alarmed reports whether the value has reached the alarm level
func (g Gauge) Alarmed() bool {
	return g.AlarmEnabled && g.Value >= g.Alarm
}

// CurrentGauge shows the window average current in mA
func CurrentGauge() Gauge {
	return Gauge{
		Label:        "Average",
		Min:          0,
		Max:          currentMaxMilliAmps,
		Alarm:        currentAlarmMilliAmps,
		AlarmEnabled: true,
	}
}

// PackGauge shows the bus voltage of a pack with the given number of cells
func PackGauge(cells int) Gauge {
	n := float64(cells)
	return Gauge{
		Label: "Pack Voltage",
		Min:   n * cellMinVolts,
		Max:   n * cellMaxVolts,
		Alarm: n * cellLevelVolts,
	}
}

// CellGauge shows one cell voltage; index is zero based
func CellGauge(index int) Gauge {
	return Gauge{
		Label: fmt.Sprintf("Cell_%d", index+1),
		Min:   cellMinVolts,
		Max:   cellMaxVolts,
		Alarm: cellLevelVolts,
	}
}
