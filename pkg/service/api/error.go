package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
)

// FallbackMessage is used when the server does not explain a failure
const FallbackMessage = "An error occurred, please try again later"

// Error is the single shape every failed call is reported in. StatusCode is
// 0 when no response was received.
type Error struct {
	StatusCode int
	Message    string
	Code       string
	Details    any
	Cause      error

	fromServer bool
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return http.StatusText(e.StatusCode) + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ServerMessage returns the message and whether the server provided it
func (e *Error) ServerMessage() (string, bool) {
	return e.Message, e.fromServer
}

// IsNetwork reports whether the call failed before any response arrived
func (e *Error) IsNetwork() bool {
	return e.StatusCode == 0
}

// AsError extracts *Error from err
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// StatusCode returns the HTTP status of a failed call, or 0
func StatusCode(err error) int {
	if apiErr, ok := AsError(err); ok {
		return apiErr.StatusCode
	}
	return 0
}

type serverError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details"`
}

type errorEnvelope struct {
	Error  json.RawMessage `json:"error"`
	Detail json.RawMessage `json:"detail"`
}

// parseServerError reads {"error":{"message","code","details"}} first, then
// the legacy {"detail": ...}
func parseServerError(body []byte) (msg, code string, details any, ok bool) {
	var env errorEnvelope
	if len(body) == 0 || json.Unmarshal(body, &env) != nil {
		return "", "", nil, false
	}

	if len(env.Error) > 0 {
		var se serverError
		if json.Unmarshal(env.Error, &se) == nil && se.Message != "" {
			return se.Message, se.Code, se.Details, true
		}
		var s string
		if json.Unmarshal(env.Error, &s) == nil && s != "" {
			return s, "", nil, true
		}
	}

	if len(env.Detail) > 0 {
		var s string
		if json.Unmarshal(env.Detail, &s) == nil {
			if s != "" {
				return s, "", nil, true
			}
			return "", "", nil, false
		}
		// FastAPI style validation lists and other structured details
		var v any
		if json.Unmarshal(env.Detail, &v) == nil && v != nil {
			return "", "", v, false
		}
	}

	return "", "", nil, false
}

func statusTag(status int) goerr.Option {
	switch {
	case status == http.StatusUnauthorized:
		return goerr.T(apperr.ErrTagUnauthorized)
	case status == http.StatusForbidden:
		return goerr.T(apperr.ErrTagForbidden)
	case status == http.StatusNotFound:
		return goerr.T(apperr.ErrTagNotFound)
	case status == http.StatusConflict:
		return goerr.T(apperr.ErrTagConflict)
	case status == http.StatusTooManyRequests:
		return goerr.T(apperr.ErrTagRateLimit)
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return goerr.T(apperr.ErrTagValidation)
	case status == http.StatusGatewayTimeout, status == http.StatusRequestTimeout:
		return goerr.T(apperr.ErrTagTimeout)
	case status >= 500:
		return goerr.T(apperr.ErrTagServer)
	default:
		return goerr.T(apperr.ErrTagInvalidInput)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// normalize converts any failure into *Error. It is idempotent.
func normalize(ctx context.Context, resp *Response, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsError(err); ok {
		return err
	}

	var method, path string
	if req := RequestFrom(ctx); req != nil {
		method, path = req.Method, req.Path
	}

	if resp == nil {
		opts := []goerr.Option{
			goerr.T(apperr.ErrTagNetwork),
			goerr.TV(apperr.MethodKey, method),
			goerr.TV(apperr.PathKey, path),
		}
		if isTimeout(err) {
			opts = append(opts, goerr.T(apperr.ErrTagTimeout))
		}
		return &Error{
			Message: FallbackMessage,
			Cause:   goerr.Wrap(err, "request failed without response", opts...),
		}
	}

	apiErr := &Error{
		StatusCode: resp.StatusCode,
		Message:    FallbackMessage,
	}
	if msg, code, details, ok := parseServerError(resp.Body); ok {
		apiErr.Message = strings.TrimSpace(msg)
		apiErr.Code = code
		apiErr.Details = details
		apiErr.fromServer = true
	} else {
		apiErr.Details = details
	}

	opts := []goerr.Option{
		statusTag(resp.StatusCode),
		goerr.TV(apperr.StatusKey, resp.StatusCode),
		goerr.TV(apperr.MethodKey, method),
		goerr.TV(apperr.PathKey, path),
	}
	if apiErr.Code != "" {
		opts = append(opts, goerr.TV(apperr.ErrorCodeKey, apiErr.Code))
	}
	if rid := resp.Header.Get(headerRequestID); rid != "" {
		opts = append(opts, goerr.TV(apperr.RequestIDKey, rid))
	}
	apiErr.Cause = goerr.Wrap(err, apiErr.Message, opts...)

	return apiErr
}
