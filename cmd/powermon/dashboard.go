package main

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/willcbaker/nasabot-power-monitor/internal/bus"
	"github.com/willcbaker/nasabot-power-monitor/internal/config"
	"github.com/willcbaker/nasabot-power-monitor/internal/dashboard"
)

type dashboardFlags struct {
	cells     int
	rate      float64
	autostart bool
}

func newDashboardCommand() *cobra.Command {
	var f dashboardFlags

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Chart pack current and show voltage gauges",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(func(cfg *config.Config) {
				if cmd.Flags().Changed("cells") {
					cfg.Dashboard.NumCells = f.cells
				}
				if cmd.Flags().Changed("rate") {
					cfg.Dashboard.UpdateHz = f.rate
				}
			})
			if err != nil {
				return err
			}
			return runDashboard(cmd.Context(), cfg, f.autostart)
		},
	}

	cmd.Flags().IntVar(&f.cells, "cells", 8, "number of cells in the battery pack")
	cmd.Flags().Float64Var(&f.rate, "rate", 10, "initial update speed in Hz (0-20)")
	cmd.Flags().BoolVar(&f.autostart, "start", false, "start the monitor without waiting for the start command")
	return cmd
}

func runDashboard(parent context.Context, cfg *config.Config, autostart bool) error {
	console := dashboard.NewReadlineWriter(os.Stderr)
	if err := config.SetupLogging(cfg, console); err != nil {
		return errors.Wrap(err, "setting up logging")
	}
	log.Infof("Starting dashboard for a %d cell pack...", cfg.Dashboard.NumCells)

	opts, err := cfg.MQTT.ClientOptions("dashboard")
	if err != nil {
		return errors.Wrap(err, "building MQTT options")
	}

	ctx, cancel := context.WithCancelCause(parent)
	defer cancel(nil)

	msgChan := make(chan bus.SensorMessage, 10)
	commandChan := make(chan string, 10)

	monitor := dashboard.NewMonitor(cfg.Dashboard.NumCells, cfg.Dashboard.UpdateHz)
	renderer := dashboard.NewTextRenderer(console, true)
	topics := dashboard.Topics{
		BusVoltage:   cfg.Topics.BusVoltage,
		BusPower:     cfg.Topics.BusPower,
		ShuntCurrent: cfg.Topics.ShuntCurrent,
		CellVoltages: cfg.Topics.CellVoltages,
	}

	if autostart {
		commandChan <- "start"
	}

	SafeGo(ctx, cancel, "dashboard", func(ctx context.Context) error {
		err := dashboard.Run(ctx, msgChan, commandChan, monitor, renderer, topics, console)
		if err == nil {
			cancel(nil) // quit from the console
		}
		return err
	})
	log.Infof("Dashboard worker started")

	SafeGo(ctx, cancel, "console", func(ctx context.Context) error {
		dashboard.ConsoleWorker(ctx, func() { cancel(nil) }, console, commandChan)
		return nil
	})

	SafeGo(ctx, cancel, "mqtt-worker", func(ctx context.Context) error {
		return bus.SubscribeWorker(ctx, opts, cfg.Topics.Dashboard(), msgChan, nil)
	})
	log.Infof("MQTT worker started")

	return waitForShutdown(ctx, cancel)
}
