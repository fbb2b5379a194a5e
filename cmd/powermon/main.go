package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/juju/loggo"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/willcbaker/nasabot-power-monitor/internal/config"
)

var log = loggo.GetLogger("powermon.main")

var cfgFile string

func main() {
	root := &cobra.Command{
		Use:   "powermon",
		Short: "Battery telemetry nodes for the NASAbot",
		Long: `powermon runs one of two telemetry nodes on the robot's message bus.

  dashboard  charts pack current and shows pack and cell voltage gauges
  lcd        integrates consumed energy and writes it to a serial LCD`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to a TOML config file")

	root.AddCommand(newDashboardCommand(), newLCDCommand())

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and lets apply override it with flags
func loadConfig(apply func(cfg *config.Config)) (*config.Config, error) {
	cfg, err := config.NewConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating flags")
	}
	return cfg, nil
}

// waitForShutdown blocks until an interrupt or until a worker cancels ctx.
// It returns the worker failure, if any.
func waitForShutdown(ctx context.Context, cancel context.CancelCauseFunc) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-sigChan:
		log.Infof("Shutting down...")
		cancel(nil)
		return nil
	case <-ctx.Done():
	}

	cause := context.Cause(ctx)
	if errors.Is(cause, context.Canceled) {
		log.Infof("Shutting down...")
		return nil
	}
	log.Errorf("Shutting down due to error: %v", cause)
	return cause
}
