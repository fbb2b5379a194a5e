package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/chzyer/readline"
)

const aboutText = `NASAbot Power Monitor
Charts pack current from the shunt sensor and shows pack and cell voltages.
While the monitor is running, 'speed' sets how often the screen is redrawn.`

// commandEffect tells the run loop what a console command changed
type commandEffect int

const (
	effectNone commandEffect = iota
	effectStarted
	effectStopped
	effectRate
	effectQuit
)

// ReadlineWriter keeps output from clobbering the console prompt
type ReadlineWriter struct {
	mu  sync.Mutex
	out io.Writer
	rl  *readline.Instance
}

// NewReadlineWriter wraps out; it passes writes straight through until a console attaches
func NewReadlineWriter(out io.Writer) *ReadlineWriter {
	return &ReadlineWriter{out: out}
}

func (w *ReadlineWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.rl != nil {
		w.rl.Clean()
	}
	n, err = w.out.Write(p)
	if w.rl != nil {
		w.rl.Refresh()
	}
	return n, err
}

func (w *ReadlineWriter) attach(rl *readline.Instance) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rl = rl
}

// parseSpeed reads a speed argument in Hz
func parseSpeed(args []string) (float64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("usage: speed <0-%g>", MaxRateHz)
	}
	hz, err := strconv.ParseFloat(args[0], 64)
	if err != nil || hz < 0 || hz > MaxRateHz {
		return 0, fmt.Errorf("speed must be a number between 0 and %g", MaxRateHz)
	}
	return hz, nil
}

// handleCommand applies one console line to the monitor
func handleCommand(cmd string, m *Monitor, out io.Writer) commandEffect {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return effectNone
	}

	switch parts[0] {
	case "start":
		if m.Active() {
			log.Infof("Monitor already running")
			return effectNone
		}
		m.Start()
		return effectStarted

	case "stop":
		if !m.Active() {
			log.Infof("Monitor is not running")
			return effectNone
		}
		m.Stop()
		return effectStopped

	case "speed":
		hz, err := parseSpeed(parts[1:])
		if err != nil {
			log.Errorf("Error: %v", err)
			return effectNone
		}
		m.SetRate(hz)
		log.Infof("Update speed = %g (Hz)", m.Rate())
		return effectRate

	case "status":
		state := "idle"
		if m.Active() {
			state = "running"
		}
		fmt.Fprintf(out, "Monitor %s, update speed %g Hz, %d samples in window\n", state, m.Rate(), m.Samples())

	case "about":
		fmt.Fprintln(out, aboutText)

	case "help":
		fmt.Fprintln(out, "Commands:")
		fmt.Fprintln(out, "  start          - Start the monitor")
		fmt.Fprintln(out, "  stop           - Stop the monitor")
		fmt.Fprintf(out, "  speed <0-%g>   - Set the update speed in Hz\n", MaxRateHz)
		fmt.Fprintln(out, "  status         - Show monitor state")
		fmt.Fprintln(out, "  about          - About the monitor")
		fmt.Fprintln(out, "  help           - Show this help")
		fmt.Fprintln(out, "  quit           - Exit")

	case "quit", "exit":
		return effectQuit

	default:
		log.Warningf("Unknown command: %s (try 'help')", parts[0])
	}
	return effectNone
}

// readlineLoop runs the readline loop, sending commands to the channel
func readlineLoop(
	ctx context.Context,
	cancel context.CancelFunc,
	rl *readline.Instance,
	commandChan chan<- string,
) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			cancel() // Ctrl+C pressed, shutdown the app
			return
		}
		if err != nil {
			return // EOF or other error
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		select {
		case commandChan <- line:
		case <-ctx.Done():
			return
		}
	}
}

// historyFilePath returns the path for the console history file
func historyFilePath() string {
	cacheDir := os.Getenv("XDG_CACHE_HOME")
	if cacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "" // No history if we can't find home
		}
		cacheDir = filepath.Join(home, ".cache")
	}
	powermonCache := filepath.Join(cacheDir, "powermon")
	_ = os.MkdirAll(powermonCache, 0750)
	return filepath.Join(powermonCache, "console_history")
}

// ConsoleWorker reads operator commands and forwards them to commandChan
func ConsoleWorker(ctx context.Context, cancel context.CancelFunc, w *ReadlineWriter, commandChan chan<- string) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      "powermon> ",
		HistoryFile: historyFilePath(),
	})
	if err != nil {
		log.Errorf("Console: readline init failed: %v", err)
		return
	}
	defer func() {
		_ = rl.Close()
		w.attach(nil)
	}()

	w.attach(rl)
	log.Infof("Console started (type 'help' for commands)")

	done := make(chan struct{})
	go func() {
		defer close(done)
		readlineLoop(ctx, cancel, rl, commandChan)
	}()

	select {
	case <-ctx.Done():
	case <-done:
	}
}
