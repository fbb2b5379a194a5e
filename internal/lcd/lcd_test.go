package lcd

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willcbaker/nasabot-power-monitor/internal/energy"
)

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("device disconnected")
}

func TestPrint_PadsToFill(t *testing.T) {
	var buf bytes.Buffer
	d := New(&buf)

	require.NoError(t, d.Print("hi", 16))
	assert.Equal(t, "#hi              \n", buf.String())
	assert.Len(t, buf.String(), 1+16+1)
}

func TestPrint_LongTextIsNotTruncated(t *testing.T) {
	var buf bytes.Buffer
	d := New(&buf)

	require.NoError(t, d.Print("0123456789", 4))
	assert.Equal(t, "#0123456789\n", buf.String())
}

func TestSplash(t *testing.T) {
	var buf bytes.Buffer
	d := New(&buf)

	require.NoError(t, d.Splash())
	assert.Equal(t, "#Initializing... Power Meter    \n", buf.String())
}

func TestPrintEnergy_Format(t *testing.T) {
	var buf bytes.Buffer
	d := New(&buf)

	require.NoError(t, d.PrintEnergy(0.0027777))
	assert.Equal(t, "#Total Power:     0.003 Wh       \n", buf.String())
}

func TestShowEnergy_WritesReport(t *testing.T) {
	var buf bytes.Buffer
	d := New(&buf)

	var sink energy.Sink = d
	require.NoError(t, sink.ShowEnergy(energy.Report{WattHours: 12.5, Total: time.Minute}))
	assert.Contains(t, buf.String(), "12.500 Wh")
}

func TestPrint_WriteFailure(t *testing.T) {
	d := New(failingWriter{})

	err := d.PrintEnergy(1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "device disconnected")
}
