package main

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willcbaker/nasabot-power-monitor/internal/bus"
	"github.com/willcbaker/nasabot-power-monitor/internal/config"
	"github.com/willcbaker/nasabot-power-monitor/internal/energy"
	"github.com/willcbaker/nasabot-power-monitor/internal/lcd"
)

func TestEnergySinks_DisplayOnly(t *testing.T) {
	var buf bytes.Buffer
	sinks := energySinks(lcd.New(&buf), nil)
	require.Len(t, sinks, 1)

	require.NoError(t, sinks[0].ShowEnergy(energy.Report{WattHours: 1.5}))
	assert.Contains(t, buf.String(), "Total Power:     1.500 Wh")
}

func TestEnergySinks_Publishes(t *testing.T) {
	var buf bytes.Buffer
	outgoing := make(chan bus.MQTTMessage, 1)
	sinks := energySinks(lcd.New(&buf), bus.NewSender(outgoing))
	require.Len(t, sinks, 2)

	report := energy.Report{WattHours: 0.25, Total: 90 * time.Second}
	for _, s := range sinks {
		require.NoError(t, s.ShowEnergy(report))
	}

	msg := <-outgoing
	assert.Equal(t, bus.StateTopic(config.DeviceName), msg.Topic)

	var state map[string]float64
	require.NoError(t, json.Unmarshal(msg.Payload, &state))
	assert.Equal(t, 0.25, state["energy_wh"])
	assert.Equal(t, 90.0, state["elapsed_seconds"])
}

func TestLoadConfig_FlagsOverride(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := loadConfig(func(cfg *config.Config) {
		cfg.LCD.Port = "/dev/ttyACM1"
		cfg.Dashboard.NumCells = 6
	})
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyACM1", cfg.LCD.Port)
	assert.Equal(t, 6, cfg.Dashboard.NumCells)
}

func TestLoadConfig_InvalidFlag(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := loadConfig(func(cfg *config.Config) {
		cfg.Dashboard.UpdateHz = 50
	})
	assert.ErrorContains(t, err, "validating flags")
}

// chdir changes the working directory for the duration of the test
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
