package apperr

import "github.com/m-mizutani/goerr/v2"

// NotFound errors (HTTP 404)
var (
	ErrTagNotFound           = goerr.NewTag("not_found")
	ErrTagCredentialNotFound = goerr.NewTag("credential_not_found")
)

// Validation errors (HTTP 400/409)
var (
	ErrTagValidation    = goerr.NewTag("validation")
	ErrTagInvalidInput  = goerr.NewTag("invalid_input")
	ErrTagRequiredField = goerr.NewTag("required_field")
	ErrTagConflict      = goerr.NewTag("conflict")
)

// Permission errors (HTTP 401/403)
var (
	ErrTagUnauthorized = goerr.NewTag("unauthorized")
	ErrTagForbidden    = goerr.NewTag("forbidden")
	ErrTagExpiredToken = goerr.NewTag("expired_token")
)

// Transport and upstream errors (HTTP 502/503/504)
var (
	ErrTagNetwork   = goerr.NewTag("network")
	ErrTagServer    = goerr.NewTag("server")
	ErrTagStorage   = goerr.NewTag("storage")
	ErrTagFirestore = goerr.NewTag("firestore")
)

// System errors
var (
	ErrTagInternal  = goerr.NewTag("internal")
	ErrTagTimeout   = goerr.NewTag("timeout")
	ErrTagBusy      = goerr.NewTag("busy")
	ErrTagRateLimit = goerr.NewTag("rate_limit")
)
