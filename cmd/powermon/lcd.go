package main

import (
	"context"
	"os"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/willcbaker/nasabot-power-monitor/internal/bus"
	"github.com/willcbaker/nasabot-power-monitor/internal/config"
	"github.com/willcbaker/nasabot-power-monitor/internal/energy"
	"github.com/willcbaker/nasabot-power-monitor/internal/lcd"
)

const manufacturer = "NASAbot"

type lcdFlags struct {
	port    string
	baud    int
	publish bool
}

func newLCDCommand() *cobra.Command {
	var f lcdFlags

	cmd := &cobra.Command{
		Use:   "lcd",
		Short: "Integrate consumed energy and show it on a serial LCD",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(func(cfg *config.Config) {
				if cmd.Flags().Changed("port") {
					cfg.LCD.Port = f.port
				}
				if cmd.Flags().Changed("baud") {
					cfg.LCD.Baud = f.baud
				}
				if cmd.Flags().Changed("publish") {
					cfg.LCD.PublishEnergy = f.publish
				}
			})
			if err != nil {
				return err
			}
			return runLCD(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&f.port, "port", "p", "/dev/ttyUSB0", "serial device of the display")
	cmd.Flags().IntVarP(&f.baud, "baud", "b", 57600, "serial baud rate")
	cmd.Flags().BoolVar(&f.publish, "publish", false, "also publish the energy total to Home Assistant")
	return cmd
}

// energySinks builds the consumers of every energy report
func energySinks(display *lcd.Display, sender *bus.Sender) []energy.Sink {
	sinks := []energy.Sink{display}
	if sender != nil {
		sinks = append(sinks, energy.SinkFunc(func(r energy.Report) error {
			return sender.PublishEnergy(config.DeviceName, r.WattHours, r.Total.Seconds())
		}))
	}
	return sinks
}

func runLCD(parent context.Context, cfg *config.Config) error {
	if err := config.SetupLogging(cfg, os.Stderr); err != nil {
		return errors.Wrap(err, "setting up logging")
	}
	log.Infof("Starting LCD power meter on %s at %d baud...", cfg.LCD.Port, cfg.LCD.Baud)

	opts, err := cfg.MQTT.ClientOptions("lcd")
	if err != nil {
		return errors.Wrap(err, "building MQTT options")
	}

	display, port, err := lcd.Open(cfg.LCD.Port, cfg.LCD.Baud)
	if err != nil {
		return err
	}
	defer port.Close()

	if err := display.Splash(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancelCause(parent)
	defer cancel(nil)

	msgChan := make(chan bus.SensorMessage, 10)

	var sender *bus.Sender
	var clientChan chan mqtt.Client
	if cfg.LCD.PublishEnergy {
		mqttOutgoingChan := make(chan bus.MQTTMessage, 100) // Larger buffer for queuing
		clientChan = make(chan mqtt.Client, 1)              // Buffered to prevent blocking onConnect

		SafeGo(ctx, cancel, "mqtt-sender-worker", func(ctx context.Context) error {
			bus.SenderWorker(ctx, mqttOutgoingChan, clientChan)
			return nil
		})
		log.Infof("MQTT sender worker started")

		sender = bus.NewSender(mqttOutgoingChan)
		if err := sender.CreateEnergyEntity(config.DeviceName, manufacturer); err != nil {
			return errors.Wrap(err, "creating energy entity")
		}
		log.Infof("Home Assistant entity created")
	}

	acc := &energy.Accumulator{}
	sinks := energySinks(display, sender)
	SafeGo(ctx, cancel, "energy-worker", func(ctx context.Context) error {
		return energy.Worker(ctx, msgChan, acc, sinks...)
	})

	SafeGo(ctx, cancel, "mqtt-worker", func(ctx context.Context) error {
		return bus.SubscribeWorker(ctx, opts, []string{cfg.Topics.Power}, msgChan, clientChan)
	})
	log.Infof("MQTT worker started")

	return waitForShutdown(ctx, cancel)
}
