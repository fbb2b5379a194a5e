package dashboard

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/willcbaker/nasabot-power-monitor/internal/bus"
)

// Topics names the bus topics the dashboard listens to
type Topics struct {
	BusVoltage   string
	BusPower     string
	ShuntCurrent string
	CellVoltages string
}

// redrawTimer is a ticker that may be absent
type redrawTimer struct {
	ticker *time.Ticker
}

// C returns the tick channel, or nil when the timer is not running
func (t *redrawTimer) C() <-chan time.Time {
	if t.ticker == nil {
		return nil
	}
	return t.ticker.C
}

func (t *redrawTimer) start(interval time.Duration) {
	t.stop()
	t.ticker = time.NewTicker(interval)
}

func (t *redrawTimer) stop() {
	if t.ticker != nil {
		t.ticker.Stop()
		t.ticker = nil
	}
}

// retune changes the interval of a running timer only
func (t *redrawTimer) retune(interval time.Duration) {
	if t.ticker != nil {
		t.ticker.Reset(interval)
	}
}

// applyMessage routes one bus message to the monitor
func applyMessage(m *Monitor, topics Topics, msg bus.SensorMessage) error {
	switch msg.Topic {
	case topics.ShuntCurrent:
		v, err := bus.ParseScalar(msg.Value)
		if err != nil {
			return err
		}
		m.OnShuntCurrent(v)
	case topics.BusVoltage:
		v, err := bus.ParseScalar(msg.Value)
		if err != nil {
			return err
		}
		m.OnBusVoltage(v)
	case topics.BusPower:
		v, err := bus.ParseScalar(msg.Value)
		if err != nil {
			return err
		}
		m.OnBusPower(v, msg.Received)
	case topics.CellVoltages:
		v, err := bus.ParseArray(msg.Value)
		if err != nil {
			return err
		}
		m.OnCellVoltages(v)
	default:
		log.Debugf("Ignoring message on unexpected topic %s", msg.Topic)
	}
	return nil
}

// Run owns the monitor: it applies bus messages and console commands and redraws
// on every timer tick that has new data. It returns nil on quit or cancellation.
func Run(
	ctx context.Context,
	msgChan <-chan bus.SensorMessage,
	commandChan <-chan string,
	m *Monitor,
	r Renderer,
	topics Topics,
	out io.Writer,
) error {
	var timer redrawTimer
	defer timer.stop()

	// A monitor that is already running needs its timer too
	if m.Active() && m.Rate() > 0 {
		timer.start(m.Interval())
	}

	for {
		select {
		case msg := <-msgChan:
			if err := applyMessage(m, topics, msg); err != nil {
				log.Warningf("Dropping %s sample %q: %v", msg.Topic, msg.Value, err)
			}

		case cmd := <-commandChan:
			switch handleCommand(cmd, m, out) {
			case effectStarted:
				if m.Rate() > 0 {
					timer.start(m.Interval())
				}
			case effectStopped:
				timer.stop()
			case effectRate:
				timer.retune(m.Interval())
			case effectQuit:
				log.Infof("Quit requested")
				return nil
			}

		case now := <-timer.C():
			frame, ok := m.Tick(now)
			if !ok {
				continue
			}
			if err := r.Render(frame); err != nil {
				return errors.Wrap(err, "rendering dashboard")
			}

		case <-ctx.Done():
			return nil
		}
	}
}
