package logging_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/shopdesk/pkg/domain/model/auth"
	"github.com/m-mizutani/shopdesk/pkg/utils/logging"
)

func TestNew_MasksTokens(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, logging.Options{Level: slog.LevelDebug, Format: logging.FormatJSON})

	type loginRequest struct {
		Email    string
		Password string
	}

	logger.Info("login",
		slog.Any("request", loginRequest{Email: "a@example.com", Password: "hunter2"}),
		slog.String("Authorization", "Bearer tok-123"),
		slog.String("access_token", "tok-123"),
		slog.Any("credential", auth.Credential{AccessToken: "tok-123", RefreshToken: "ref-456"}),
	)

	out := buf.String()
	gt.S(t, out).Contains("a@example.com")
	gt.S(t, out).NotContains("hunter2")
	gt.S(t, out).NotContains("tok-123")
	gt.S(t, out).NotContains("ref-456")
}

func TestParse(t *testing.T) {
	level, err := logging.ParseLevel("WARN")
	gt.NoError(t, err)
	gt.Equal(t, level, slog.LevelWarn)

	_, err = logging.ParseLevel("verbose")
	gt.Error(t, err)

	format, err := logging.ParseFormat("json")
	gt.NoError(t, err)
	gt.Equal(t, format, logging.FormatJSON)

	_, err = logging.ParseFormat("xml")
	gt.Error(t, err)
}

func TestNew_ConsoleWithoutStack(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, logging.Options{Level: slog.LevelInfo, Format: logging.FormatConsole})
	logger.Debug("hidden")
	logger.Info("visible", slog.String("Authorization", "Bearer tok-123"))

	out := buf.String()
	gt.S(t, out).Contains("visible")
	gt.S(t, out).NotContains("hidden")
	gt.S(t, out).NotContains("tok-123")
}
