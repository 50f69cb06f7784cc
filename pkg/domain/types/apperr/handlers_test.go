package apperr_test

import (
	"net/http"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
)

func TestHTTPStatusFromError(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		expect int
	}{
		{"not found", goerr.New("x", goerr.T(apperr.ErrTagNotFound)), http.StatusNotFound},
		{"conflict", goerr.New("x", goerr.T(apperr.ErrTagConflict)), http.StatusConflict},
		{"busy", apperr.ErrOperationInProgress, http.StatusConflict},
		{"validation", goerr.New("x", goerr.T(apperr.ErrTagValidation)), http.StatusBadRequest},
		{"required field", apperr.ErrMissingTracking, http.StatusBadRequest},
		{"unauthorized", apperr.ErrNotAuthenticated, http.StatusUnauthorized},
		{"network", goerr.New("x", goerr.T(apperr.ErrTagNetwork)), http.StatusBadGateway},
		{"timeout", goerr.New("x", goerr.T(apperr.ErrTagTimeout)), http.StatusGatewayTimeout},
		{"wrapped", goerr.Wrap(goerr.New("x", goerr.T(apperr.ErrTagForbidden)), "outer"), http.StatusForbidden},
		{"untagged", goerr.New("x"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Equal(t, apperr.HTTPStatusFromError(tc.err), tc.expect)
		})
	}
}
