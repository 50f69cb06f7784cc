package apperr

import "github.com/m-mizutani/goerr/v2"

// Session related errors
var (
	ErrNotAuthenticated = goerr.New("not authenticated",
		goerr.T(ErrTagUnauthorized)).ID("ERR_NOT_AUTHENTICATED")

	ErrNoRefreshToken = goerr.New("no refresh token stored",
		goerr.T(ErrTagUnauthorized)).ID("ERR_NO_REFRESH_TOKEN")

	ErrOperationInProgress = goerr.New("operation already in progress",
		goerr.T(ErrTagBusy)).ID("ERR_OPERATION_IN_PROGRESS")
)

// Input related errors
var (
	ErrMissingTracking = goerr.New("tracking number and carrier are required",
		goerr.T(ErrTagRequiredField)).ID("ERR_MISSING_TRACKING")

	ErrEmptyID = goerr.New("resource ID is required",
		goerr.T(ErrTagRequiredField)).ID("ERR_EMPTY_ID")
)

// Storage related errors
var (
	ErrStorageNotConfigured = goerr.New("no storage backend configured",
		goerr.T(ErrTagInternal)).ID("ERR_STORAGE_NOT_CONFIGURED")

	ErrInvalidStorageKey = goerr.New("invalid storage key",
		goerr.T(ErrTagInvalidInput)).ID("ERR_INVALID_STORAGE_KEY")
)
