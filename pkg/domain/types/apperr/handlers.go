package apperr

import (
	"net/http"

	"github.com/m-mizutani/goerr/v2"
)

// HTTPStatusFromError returns the appropriate HTTP status code based on error tags
func HTTPStatusFromError(err error) int {
	switch {
	// 404 Not Found
	case goerr.HasTag(err, ErrTagNotFound),
		goerr.HasTag(err, ErrTagCredentialNotFound):
		return http.StatusNotFound

	// 409 Conflict
	case goerr.HasTag(err, ErrTagConflict),
		goerr.HasTag(err, ErrTagBusy):
		return http.StatusConflict

	// 400 Bad Request
	case goerr.HasTag(err, ErrTagValidation),
		goerr.HasTag(err, ErrTagInvalidInput),
		goerr.HasTag(err, ErrTagRequiredField):
		return http.StatusBadRequest

	// 401 Unauthorized
	case goerr.HasTag(err, ErrTagUnauthorized),
		goerr.HasTag(err, ErrTagExpiredToken):
		return http.StatusUnauthorized

	// 403 Forbidden
	case goerr.HasTag(err, ErrTagForbidden):
		return http.StatusForbidden

	// 429 Too Many Requests
	case goerr.HasTag(err, ErrTagRateLimit):
		return http.StatusTooManyRequests

	// 504 Gateway Timeout
	case goerr.HasTag(err, ErrTagTimeout):
		return http.StatusGatewayTimeout

	// 502 Bad Gateway
	case goerr.HasTag(err, ErrTagNetwork),
		goerr.HasTag(err, ErrTagServer),
		goerr.HasTag(err, ErrTagStorage),
		goerr.HasTag(err, ErrTagFirestore):
		return http.StatusBadGateway

	// 500 Internal Server Error (default)
	default:
		return http.StatusInternalServerError
	}
}
