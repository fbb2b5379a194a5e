package dashboard

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/willcbaker/nasabot-power-monitor/internal/window"
)

// ANSI sequences used by the text renderer
const (
	ansiClear  = "\033[H\033[2J"
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
)

const (
	barWidth   = 30
	chartWidth = 50
)

// sparkBlocks are the chart levels from lowest to highest
var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Renderer draws a frame
type Renderer interface {
	Render(f Frame) error
}

// TextRenderer draws frames as plain text
type TextRenderer struct {
	w     io.Writer
	clear bool
}

// NewTextRenderer creates a renderer writing to w.
// When clear is set the screen is wiped before each frame.
func NewTextRenderer(w io.Writer, clear bool) *TextRenderer {
	return &TextRenderer{w: w, clear: clear}
}

// Render writes the chart and every gauge
func (r *TextRenderer) Render(f Frame) error {
	var b strings.Builder

	if r.clear {
		b.WriteString(ansiClear)
	}

	fmt.Fprintf(&b, "Power Monitor  %.1f Hz  %s\n\n", f.RateHz, f.Drawn.Format("15:04:05"))
	fmt.Fprintf(&b, "Current (mA)  samples %.0f..%.0f\n", f.XMin, f.XMax)
	fmt.Fprintf(&b, "  %s\n", sparkline(f.Points, chartWidth))
	fmt.Fprintf(&b, "  1h min %.1f  max %.1f\n\n", f.PeakMin, f.PeakMax)

	b.WriteString(gaugeLine(f.Current, "mA"))
	b.WriteString(gaugeLine(f.Pack, "V"))
	for _, c := range f.Cells {
		b.WriteString(gaugeLine(c, "V"))
	}

	if f.Power.Samples > 0 {
		p := f.Power
		fmt.Fprintf(&b, "\nBus Power %.2f W\n", p.Current)
		fmt.Fprintf(&b, "  %-4s %8s %8s %8s\n", "", "avg", "min", "max")
		fmt.Fprintf(&b, "  %-4s %8.2f %8.2f %8.2f\n", "1m", p.Average._1, p.Min._1, p.Max._1)
		fmt.Fprintf(&b, "  %-4s %8.2f %8.2f %8.2f\n", "5m", p.Average._5, p.Min._5, p.Max._5)
		fmt.Fprintf(&b, "  %-4s %8.2f %8.2f %8.2f\n", "15m", p.Average._15, p.Min._15, p.Max._15)
	}

	if _, err := io.WriteString(r.w, b.String()); err != nil {
		return errors.Wrap(err, "writing frame")
	}
	return nil
}

// gaugeLine formats one gauge as a labelled bar
func gaugeLine(g Gauge, unit string) string {
	filled := int(math.Round(g.Fraction() * barWidth))
	bar := strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled)

	color := ""
	switch {
	case g.Alarmed():
		color = ansiRed
	case !g.AlarmEnabled && g.Value > 0 && g.Value < g.Alarm:
		color = ansiYellow
	}

	line := fmt.Sprintf("%-13s [%s] %7.2f %s", g.Label, bar, g.Value, unit)
	if color != "" {
		line = color + line + ansiReset
	}
	return line + "\n"
}

// sparkline scales the most recent points into at most width block characters
func sparkline(points []window.Point, width int) string {
	if len(points) == 0 {
		return ""
	}
	if len(points) > width {
		points = points[len(points)-width:]
	}

	lo, hi := points[0].Y, points[0].Y
	for _, p := range points {
		lo = min(lo, p.Y)
		hi = max(hi, p.Y)
	}

	out := make([]rune, len(points))
	for i, p := range points {
		level := 0
		if hi > lo {
			level = int((p.Y - lo) / (hi - lo) * float64(len(sparkBlocks)-1))
		}
		out[i] = sparkBlocks[level]
	}
	return string(out)
}
