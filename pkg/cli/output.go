package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/domain/model/auth"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
	"github.com/m-mizutani/shopdesk/pkg/service/api"
)

const (
	formatText = "text"
	formatJSON = "json"
)

var (
	labelColor   = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
)

type printer struct {
	w      io.Writer
	format string
}

func newPrinter(w io.Writer, format string) (*printer, error) {
	switch format {
	case "", formatText:
		return &printer{w: w, format: formatText}, nil
	case formatJSON:
		return &printer{w: w, format: formatJSON}, nil
	default:
		return nil, goerr.New("unknown output format",
			goerr.T(apperr.ErrTagInvalidInput),
			goerr.V("format", format),
			goerr.V("valid_formats", []string{formatText, formatJSON}))
	}
}

// print writes v as JSON, or calls text for the human readable form
func (p *printer) print(v any, text func(w io.Writer)) error {
	if p.format == formatJSON {
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return goerr.Wrap(err, "failed to encode output")
		}
		return nil
	}
	text(p.w)
	return nil
}

// done reports a successful action without a payload
func (p *printer) done(msg string, kv ...any) error {
	if p.format == formatJSON {
		out := map[string]any{"ok": true, "message": msg}
		for i := 0; i+1 < len(kv); i += 2 {
			out[fmt.Sprint(kv[i])] = kv[i+1]
		}
		return p.print(out, nil)
	}
	_, _ = successColor.Fprintln(p.w, msg)
	return nil
}

func field(w io.Writer, label string, value any) {
	_, _ = labelColor.Fprintf(w, "%-16s", label+":")
	_, _ = fmt.Fprintln(w, value)
}

func table(w io.Writer, header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	line := func(cells []string, c *color.Color) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
		}
		text := strings.TrimRight(strings.Join(parts, "  "), " ")
		if c != nil {
			_, _ = c.Fprintln(w, text)
			return
		}
		_, _ = fmt.Fprintln(w, text)
	}

	line(header, labelColor)
	for _, row := range rows {
		line(row, nil)
	}
}

// reportError prints the message a user should see for err
func reportError(w io.Writer, err error) {
	var failure *auth.Failure
	switch {
	case errors.As(err, &failure):
		_, _ = errorColor.Fprintln(w, failure.Message)
	case errors.Is(err, apperr.ErrOperationInProgress):
		_, _ = warnColor.Fprintln(w, "Another request is already in progress.")
	default:
		if apiErr, ok := api.AsError(err); ok {
			_, _ = errorColor.Fprintln(w, apiErr.Message)
			return
		}
		_, _ = errorColor.Fprintln(w, err.Error())
	}
}
