package usecase

import (
	"net/http"
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/domain/model/auth"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
	"github.com/m-mizutani/shopdesk/pkg/service/api"
)

// User facing messages
const (
	MsgSessionExpired       = "Session expired. Please log in again."
	MsgInvalidCredentials   = "Invalid credentials. Check your email and password."
	MsgLoginFailed          = "Login failed. Please try again later."
	MsgNetwork              = "Unable to reach the server. Check your connection."
	MsgInvalidRegistration  = "Invalid registration data."
	MsgEmailInUse           = "Email already in use. Try another email."
	MsgRegistrationFailed   = "Registration failed. Please try again later."
	MsgInvalidToken         = "Invalid or expired token."
	MsgWrongPassword        = "Current password is incorrect."
	MsgPasswordRecovery     = "Password recovery failed."
	MsgPasswordReset        = "Password reset failed."
	MsgProfileUpdate        = "Profile update failed."
	MsgPasswordChange       = "Password change failed."
	MsgRefreshFailed        = "Session refresh failed. Please try again later."
	MsgFetchUserFailed      = "Unable to load your account."
	MsgInvalidProfileUpdate = "Nothing to update."
)

// failureRule maps response statuses to a failure. When useServer is set the
// server's own message replaces message if it sent one.
type failureRule struct {
	statuses  []int
	kind      auth.FailureKind
	message   string
	useServer bool
}

func onStatus(kind auth.FailureKind, message string, statuses ...int) failureRule {
	return failureRule{statuses: statuses, kind: kind, message: message}
}

func onStatusServerFirst(kind auth.FailureKind, message string, statuses ...int) failureRule {
	return failureRule{statuses: statuses, kind: kind, message: message, useServer: true}
}

// classifyFailure turns an operation error into the single value the UI
// shows. Statuses without a rule get the server's message or fallback;
// failures without a response are network failures.
func classifyFailure(err error, fallback string, rules ...failureRule) *auth.Failure {
	apiErr, ok := api.AsError(err)
	if !ok {
		return &auth.Failure{Kind: auth.FailureUnknown, Message: fallback, Err: err}
	}

	if apiErr.IsNetwork() {
		return &auth.Failure{Kind: auth.FailureNetwork, Message: MsgNetwork, Err: err}
	}

	f := &auth.Failure{
		Kind:       auth.FailureServer,
		Message:    fallback,
		StatusCode: apiErr.StatusCode,
		Err:        err,
	}
	useServer := true

	for _, rule := range rules {
		if slices.Contains(rule.statuses, apiErr.StatusCode) {
			f.Kind = rule.kind
			f.Message = rule.message
			useServer = rule.useServer
			break
		}
	}

	if msg, fromServer := apiErr.ServerMessage(); useServer && fromServer && msg != "" {
		f.Message = msg
	}

	return f
}

func failureTag(kind auth.FailureKind) goerr.Option {
	switch kind {
	case auth.FailureSessionExpired, auth.FailureInvalidCredentials:
		return goerr.T(apperr.ErrTagUnauthorized)
	case auth.FailureValidation, auth.FailureInvalidToken, auth.FailureWrongPassword:
		return goerr.T(apperr.ErrTagValidation)
	case auth.FailureConflict:
		return goerr.T(apperr.ErrTagConflict)
	case auth.FailureNetwork:
		return goerr.T(apperr.ErrTagNetwork)
	case auth.FailureServer:
		return goerr.T(apperr.ErrTagServer)
	case auth.FailureBusy:
		return goerr.T(apperr.ErrTagBusy)
	default:
		return goerr.T(apperr.ErrTagInternal)
	}
}

// client side validation failure, no request was sent
func validationFailure(err error, message string) *auth.Failure {
	return &auth.Failure{
		Kind:       auth.FailureValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Err:        err,
	}
}
