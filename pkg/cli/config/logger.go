package config

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/utils/logging"
	"github.com/m-mizutani/shopdesk/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

// Logger holds the configuration for logging. Logs go to stderr by default
// because stdout carries command output.
type Logger struct {
	level      string
	format     string
	output     string
	quiet      bool
	stacktrace bool
}

// Flags returns CLI flags for logger configuration
func (x *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Category:    "logging",
			Aliases:     []string{"l"},
			Sources:     cli.EnvVars("SHOPDESK_LOG_LEVEL"),
			Usage:       "Log level [debug|info|warn|error]",
			Value:       "info",
			Destination: &x.level,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Category:    "logging",
			Aliases:     []string{"f"},
			Sources:     cli.EnvVars("SHOPDESK_LOG_FORMAT"),
			Usage:       "Log format [console|json] (default: console on a color terminal, json otherwise)",
			Destination: &x.format,
		},
		&cli.StringFlag{
			Name:        "log-output",
			Category:    "logging",
			Aliases:     []string{"o"},
			Sources:     cli.EnvVars("SHOPDESK_LOG_OUTPUT"),
			Usage:       "Log destination: stderr, stdout, '-' or a file path",
			Value:       "stderr",
			Destination: &x.output,
		},
		&cli.BoolFlag{
			Name:        "log-quiet",
			Category:    "logging",
			Aliases:     []string{"q"},
			Usage:       "Discard all logs",
			Sources:     cli.EnvVars("SHOPDESK_LOG_QUIET"),
			Destination: &x.quiet,
		},
		&cli.BoolFlag{
			Name:        "log-stacktrace",
			Category:    "logging",
			Aliases:     []string{"s"},
			Usage:       "Print error stacks in console format",
			Sources:     cli.EnvVars("SHOPDESK_LOG_STACKTRACE"),
			Destination: &x.stacktrace,
		},
	}
}

// LogValue returns the logger configuration as a slog.Value for logging
func (x Logger) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("level", x.level),
		slog.String("format", x.format),
		slog.String("output", x.output),
		slog.Bool("quiet", x.quiet),
		slog.Bool("stacktrace", x.stacktrace),
	)
}

// Configure builds the logger and installs it as slog default. The returned
// function closes the log file, if any.
func (x *Logger) Configure() (*slog.Logger, func(), error) {
	if x.quiet {
		logger := logging.Discard()
		slog.SetDefault(logger)
		return logger, func() {}, nil
	}

	level, err := logging.ParseLevel(x.level)
	if err != nil {
		return nil, nil, err
	}

	format := logging.FormatJSON
	if x.format == "" {
		if term := os.Getenv("TERM"); strings.Contains(term, "color") || strings.Contains(term, "xterm") {
			format = logging.FormatConsole
		}
	} else if format, err = logging.ParseFormat(x.format); err != nil {
		return nil, nil, err
	}

	w, closer, err := openLogOutput(x.output)
	if err != nil {
		return nil, nil, err
	}

	logger := logging.New(w, logging.Options{
		Level:      level,
		Format:     format,
		Stacktrace: x.stacktrace,
	})
	slog.SetDefault(logger)

	return logger, closer, nil
}

func openLogOutput(output string) (io.Writer, func(), error) {
	switch strings.ToLower(output) {
	case "stdout", "-":
		return os.Stdout, func() {}, nil
	case "", "stderr":
		return os.Stderr, func() {}, nil
	}

	f, err := os.OpenFile(filepath.Clean(output), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to open log file", goerr.V("path", output))
	}
	return f, func() { safe.Close(context.Background(), f) }, nil
}
