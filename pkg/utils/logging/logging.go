package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/masq"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
)

// Format is the log output format
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ParseLevel converts a level name to slog.Level
func ParseLevel(s string) (slog.Level, error) {
	level, ok := levels[strings.ToLower(s)]
	if !ok {
		return slog.LevelInfo, goerr.New("invalid log level",
			goerr.T(apperr.ErrTagInvalidInput),
			goerr.V("level", s),
			goerr.V("valid_levels", []string{"debug", "info", "warn", "error"}))
	}
	return level, nil
}

// ParseFormat converts a format name to Format
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatConsole, FormatJSON:
		return f, nil
	default:
		return FormatConsole, goerr.New("invalid log format",
			goerr.T(apperr.ErrTagInvalidInput),
			goerr.V("format", s),
			goerr.V("valid_formats", []Format{FormatConsole, FormatJSON}))
	}
}

// Options configures New
type Options struct {
	Level      slog.Level
	Format     Format
	Stacktrace bool
}

// Field names whose values never reach the log. Tokens and passwords travel
// in request bodies, credentials and headers under these names.
var sensitiveFields = []string{
	"Authorization",
	"AccessToken",
	"RefreshToken",
	"Token",
	"Password",
	"OldPassword",
	"NewPassword",
}

var sensitivePrefixes = []string{
	"secret_",
	"password_",
	"access_token",
	"refresh_token",
}

// New creates a logger writing to w. Secrets are redacted in both formats.
func New(w io.Writer, opts Options) *slog.Logger {
	redact := redactor()

	if opts.Format == FormatJSON {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			AddSource:   true,
			Level:       opts.Level,
			ReplaceAttr: redact,
		}))
	}

	hook := clog.GoerrHook
	if !opts.Stacktrace {
		hook = flattenGoerr
	}
	return slog.New(clog.New(
		clog.WithWriter(w),
		clog.WithLevel(opts.Level),
		clog.WithReplaceAttr(redact),
		clog.WithAttrHook(hook),
		clog.WithColorMap(colors()),
	))
}

// Discard returns a logger that drops everything
func Discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func redactor() func([]string, slog.Attr) slog.Attr {
	opts := []masq.Option{masq.WithTag("secret")}
	for _, name := range sensitiveFields {
		opts = append(opts, masq.WithFieldName(name))
	}
	for _, prefix := range sensitivePrefixes {
		opts = append(opts, masq.WithFieldPrefix(prefix))
	}
	return masq.New(opts...)
}

func colors() *clog.ColorMap {
	return &clog.ColorMap{
		Level: map[slog.Level]*color.Color{
			slog.LevelDebug: color.New(color.FgGreen, color.Bold),
			slog.LevelInfo:  color.New(color.FgCyan, color.Bold),
			slog.LevelWarn:  color.New(color.FgYellow, color.Bold),
			slog.LevelError: color.New(color.FgRed, color.Bold),
		},
		LevelDefault: color.New(color.FgBlue, color.Bold),
		Time:         color.New(color.FgWhite),
		Message:      color.New(color.FgHiWhite),
		AttrKey:      color.New(color.FgHiCyan),
		AttrValue:    color.New(color.FgHiWhite),
	}
}

// flattenGoerr prints a goerr error as a group of its values, message and
// cause, without the stack
func flattenGoerr(_ []string, attr slog.Attr) *clog.HandleAttr {
	goErr, ok := attr.Value.Any().(*goerr.Error)
	if !ok {
		return nil
	}

	var attrs []any
	for k, v := range goErr.Values() {
		attrs = append(attrs, slog.Any(k, v))
	}
	attrs = append(attrs, slog.String("message", goErr.Error()))
	if cause := goErr.Unwrap(); cause != nil {
		attrs = append(attrs, slog.Any("cause", cause))
	}

	group := slog.Group(attr.Key, attrs...)
	return &clog.HandleAttr{NewAttr: &group}
}
