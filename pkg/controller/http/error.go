package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/shopdesk/pkg/domain/model/auth"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
	"github.com/m-mizutani/shopdesk/pkg/service/api"
	errutil "github.com/m-mizutani/shopdesk/pkg/utils/errors"
)

// errorBody mirrors the API's canonical error payload
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		ctxlog.From(r.Context()).Warn("failed to write response", "error", err)
	}
}

// handleError logs err and writes it in the API error format. A session
// failure keeps its user facing message and kind.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	errutil.Handle(r.Context(), err)

	status := apperr.HTTPStatusFromError(err)
	detail := errorDetail{Message: http.StatusText(status)}

	var failure *auth.Failure
	if errors.As(err, &failure) {
		detail.Message = failure.Message
		detail.Code = string(failure.Kind)
		if failure.StatusCode > 0 {
			status = failure.StatusCode
		}
	} else if apiErr, ok := api.AsError(err); ok {
		detail.Message = apiErr.Message
		detail.Code = apiErr.Code
		detail.Details = apiErr.Details
		if apiErr.IsNetwork() {
			status = http.StatusBadGateway
		}
	}

	if errors.Is(err, apperr.ErrOperationInProgress) {
		status = http.StatusConflict
		detail.Code = string(auth.FailureBusy)
		detail.Message = "Another request is already in progress."
	}

	writeJSON(w, r, status, errorBody{Error: detail})
}
