package errors

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
)

// Handle logs errors with context. Failures caused by the caller (bad
// input, missing session, a request already in flight) are logged at warn.
func Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}

	logger := ctxlog.From(ctx)
	if isClientSide(err) {
		logger.Warn("request rejected", "error", err)
		return
	}
	logger.Error("error occurred", "error", err)
}

func isClientSide(err error) bool {
	return goerr.HasTag(err, apperr.ErrTagValidation) ||
		goerr.HasTag(err, apperr.ErrTagInvalidInput) ||
		goerr.HasTag(err, apperr.ErrTagRequiredField) ||
		goerr.HasTag(err, apperr.ErrTagUnauthorized) ||
		goerr.HasTag(err, apperr.ErrTagBusy)
}
