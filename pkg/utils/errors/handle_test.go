package errors_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
	"github.com/m-mizutani/shopdesk/pkg/utils/errors"
)

func TestHandle(t *testing.T) {
	testCases := []struct {
		name  string
		err   error
		level string
	}{
		{"validation is a warning", goerr.New("bad email", goerr.T(apperr.ErrTagValidation)), `"level":"WARN"`},
		{"busy is a warning", goerr.Wrap(apperr.ErrOperationInProgress, "login", goerr.T(apperr.ErrTagBusy)), `"level":"WARN"`},
		{"unauthorized is a warning", goerr.New("rejected", goerr.T(apperr.ErrTagUnauthorized)), `"level":"WARN"`},
		{"server failure is an error", goerr.New("upstream down", goerr.T(apperr.ErrTagServer)), `"level":"ERROR"`},
		{"untagged is an error", goerr.New("unexpected"), `"level":"ERROR"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))
			ctx := ctxlog.With(context.Background(), logger)

			errors.Handle(ctx, tc.err)
			gt.S(t, buf.String()).Contains(tc.level)
		})
	}

	t.Run("nil is ignored", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := ctxlog.With(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))
		errors.Handle(ctx, nil)
		gt.Equal(t, buf.Len(), 0)
	})
}
