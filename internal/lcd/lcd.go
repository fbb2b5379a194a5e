// Package lcd drives the serial character display of the power meter.
package lcd

import (
	"fmt"
	"io"
	"strings"

	"github.com/juju/loggo"
	"github.com/pkg/errors"
	"go.bug.st/serial"

	"github.com/willcbaker/nasabot-power-monitor/internal/energy"
)

var log = loggo.GetLogger("powermon.lcd")

const (
	// lineStart marks the beginning of every line sent to the display
	lineStart = '#'
	// defaultFill is the display width of one row
	defaultFill = 16
	// energyFill spans both rows
	energyFill = 32
)

// Display writes framed text lines to the LCD
type Display struct {
	w io.Writer
}

// New creates a Display writing to w
func New(w io.Writer) *Display {
	return &Display{w: w}
}

// Open opens the serial device backing the display
func Open(portName string, baud int) (*Display, io.Closer, error) {
	port, err := serial.Open(portName, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, nil, errors.Wrapf(err, "opening serial port %s", portName)
	}
	log.Infof("Opened serial port %s at %d baud", portName, baud)
	return New(port), port, nil
}

// frame pads text to fill columns and wraps it in the line markers
func frame(text string, fill int) string {
	var b strings.Builder
	b.WriteByte(lineStart)
	b.WriteString(text)
	if pad := fill - len(text); pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	b.WriteByte('\n')
	return b.String()
}

// Print writes one framed line, left-justified to fill columns
func (d *Display) Print(text string, fill int) error {
	if _, err := io.WriteString(d.w, frame(text, fill)); err != nil {
		return errors.Wrap(err, "writing to display")
	}
	return nil
}

// Splash shows the startup banner
func (d *Display) Splash() error {
	return d.Print("Initializing... Power Meter    ", defaultFill)
}

// PrintEnergy shows the consumed energy total
func (d *Display) PrintEnergy(wattHours float64) error {
	return d.Print(fmt.Sprintf("Total Power:     %4.3f Wh   ", wattHours), energyFill)
}

// ShowEnergy implements energy.Sink
func (d *Display) ShowEnergy(r energy.Report) error {
	return d.PrintEnergy(r.WattHours)
}
