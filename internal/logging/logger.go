// Package logging configures the process-wide zerolog logger for
// fotocop-setup commands.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Elmeric/fotocop/internal/config"
)

var stderr = struct{ io.Writer }{os.Stderr}

// Configure installs the global logger according to the configuration.
// The console stream goes to stderr so stdout stays machine-readable;
// a file sink, when configured, receives the raw JSON events.
func Configure(cfg *config.Config, verbose bool) error {
	zerolog.TimeFieldFormat = time.RFC3339

	zerolog.SetGlobalLevel(resolveLevel(cfg.Logging.Level, verbose))

	var writers []io.Writer

	if cfg.Logging.Console {
		writers = append(writers, consoleWriter())
	}

	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", cfg.Logging.File, err)
		}
		writers = append(writers, f)
	}

	var out io.Writer
	switch len(writers) {
	case 0:
		out = io.Discard
	case 1:
		out = writers[0]
	default:
		out = zerolog.MultiLevelWriter(writers...)
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &log.Logger

	return nil
}

type tTesting interface {
	Log(args ...interface{})
	Logf(format string, args ...interface{})
	Helper()
	Cleanup(f func())
}

// ConfigureTestLogging associates log output with the test that produced it.
func ConfigureTestLogging(t tTesting) {
	oldLogger := log.Logger
	oldContextLogger := zerolog.DefaultContextLogger

	log.Logger = zerolog.New(zerolog.NewConsoleWriter(zerolog.ConsoleTestWriter(t))).
		With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &log.Logger

	t.Cleanup(func() {
		log.Logger = oldLogger
		zerolog.DefaultContextLogger = oldContextLogger
	})
}

// resolveLevel picks the effective level: --verbose beats the LOG_LEVEL
// environment override, which beats the configured level.
func resolveLevel(configured string, verbose bool) zerolog.Level {
	if verbose {
		return zerolog.DebugLevel
	}
	if env := strings.ToLower(os.Getenv("LOG_LEVEL")); env != "" {
		if level, err := zerolog.ParseLevel(env); err == nil {
			return level
		}
	}
	switch strings.ToLower(configured) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func consoleWriter() io.Writer {
	isTerminal := isatty.IsTerminal(os.Stderr.Fd())

	return zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = stderr
		w.NoColor = !isTerminal
		w.TimeFormat = "15:04:05"
	})
}
