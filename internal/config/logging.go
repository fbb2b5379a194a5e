package config

import (
	"fmt"
	"io"
	"os"
	"path"

	"github.com/juju/loggo"
	"github.com/pkg/errors"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// GetLoggingWriter returns a new io.Writer suitable for logging.
// fallback is used when no log file is configured.
func GetLoggingWriter(cfg *Config, fallback io.Writer) (io.Writer, error) {
	writer := fallback
	if writer == nil {
		writer = os.Stderr
	}
	if cfg.LogFile != "" {
		dirname := path.Dir(cfg.LogFile)
		if _, err := os.Stat(dirname); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to create log folder")
			}
			if err := os.MkdirAll(dirname, 0o711); err != nil {
				return nil, fmt.Errorf("failed to create log folder")
			}
		}
		writer = &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    5, // megabytes
			MaxBackups: 2,
			MaxAge:     28, //days
		}
	}
	return writer, nil
}

// SetupLogging points every loggo logger at the configured writer and level
func SetupLogging(cfg *Config, fallback io.Writer) error {
	writer, err := GetLoggingWriter(cfg, fallback)
	if err != nil {
		return errors.Wrap(err, "getting log writer")
	}

	if _, err := loggo.ReplaceDefaultWriter(loggo.NewSimpleWriter(writer, loggo.DefaultFormatter)); err != nil {
		return errors.Wrap(err, "replacing default log writer")
	}

	spec := fmt.Sprintf("<root>=%s", cfg.LogLevel)
	if err := loggo.ConfigureLoggers(spec); err != nil {
		return errors.Wrap(err, "configuring loggers")
	}
	return nil
}
