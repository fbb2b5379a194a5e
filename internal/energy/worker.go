package energy

import (
	"context"

	"github.com/juju/loggo"
	"github.com/pkg/errors"

	"github.com/willcbaker/nasabot-power-monitor/internal/bus"
)

var log = loggo.GetLogger("powermon.energy")

// Sink receives every energy report
type Sink interface {
	ShowEnergy(r Report) error
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(r Report) error

// ShowEnergy calls f(r)
func (f SinkFunc) ShowEnergy(r Report) error {
	return f(r)
}

// decodeSample turns a temperature-encoded power message into a Sample
func decodeSample(msg bus.SensorMessage) (Sample, error) {
	stamp, watts, err := bus.ParseTemperature(msg.Value, msg.Received)
	if err != nil {
		return Sample{}, errors.Wrapf(err, "decoding %s", msg.Topic)
	}
	return Sample{Stamp: stamp, Watts: watts}, nil
}

// ingest decodes and integrates one message
func ingest(acc *Accumulator, msg bus.SensorMessage) (Report, bool, error) {
	sample, err := decodeSample(msg)
	if err != nil {
		return Report{}, false, err
	}

	report, ok, err := acc.Integrate(sample)
	if err != nil {
		return Report{}, false, err
	}
	if ok {
		log.Debugf("deltaT: %d ns", report.Interval.Nanoseconds())
		log.Debugf("TotalT: %.3f s", report.Total.Seconds())
		log.Debugf("Consumed %f Wh", report.WattHours)
	}
	return report, ok, nil
}

// Worker integrates power messages and forwards each report to the sinks.
// Bad samples are logged and skipped; a sink failure stops the worker.
func Worker(ctx context.Context, msgChan <-chan bus.SensorMessage, acc *Accumulator, sinks ...Sink) error {
	log.Infof("Energy worker started")

	for {
		select {
		case msg := <-msgChan:
			report, ok, err := ingest(acc, msg)
			if err != nil {
				log.Warningf("Dropping sample: %v", err)
				continue
			}
			if !ok {
				continue
			}

			for _, sink := range sinks {
				if err := sink.ShowEnergy(report); err != nil {
					return errors.Wrap(err, "showing energy report")
				}
			}

		case <-ctx.Done():
			log.Infof("Energy worker stopped")
			return nil
		}
	}
}
