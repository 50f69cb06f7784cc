package api_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
	"github.com/m-mizutani/shopdesk/pkg/service/api"
)

var (
	isValidation = func(err error) bool { return goerr.HasTag(err, apperr.ErrTagValidation) }
	isConflict   = func(err error) bool { return goerr.HasTag(err, apperr.ErrTagConflict) }
	isServer     = func(err error) bool { return goerr.HasTag(err, apperr.ErrTagServer) }
	isNotFound   = func(err error) bool { return goerr.HasTag(err, apperr.ErrTagNotFound) }
)

func TestNormalizeError(t *testing.T) {
	testCases := []struct {
		name       string
		status     int
		body       string
		message    string
		fromServer bool
		code       string
		hasTag     func(error) bool
	}{
		{
			name:       "canonical envelope",
			status:     http.StatusBadRequest,
			body:       `{"error":{"message":"SKU already exists","code":"DUPLICATE_SKU","details":{"field":"sku"}}}`,
			message:    "SKU already exists",
			fromServer: true,
			code:       "DUPLICATE_SKU",
			hasTag:     isValidation,
		},
		{
			name:       "legacy detail string",
			status:     http.StatusConflict,
			body:       `{"detail":"Email already registered"}`,
			message:    "Email already registered",
			fromServer: true,
			hasTag:     isConflict,
		},
		{
			name:       "canonical wins over detail",
			status:     http.StatusBadRequest,
			body:       `{"error":{"message":"canonical"},"detail":"legacy"}`,
			message:    "canonical",
			fromServer: true,
			hasTag:     isValidation,
		},
		{
			name:    "structured detail falls back to generic text",
			status:  http.StatusUnprocessableEntity,
			body:    `{"detail":[{"loc":["body","email"],"msg":"field required"}]}`,
			message: api.FallbackMessage,
			hasTag:  isValidation,
		},
		{
			name:    "empty body",
			status:  http.StatusInternalServerError,
			body:    ``,
			message: api.FallbackMessage,
			hasTag:  isServer,
		},
		{
			name:    "non JSON body",
			status:  http.StatusBadGateway,
			body:    `<html>bad gateway</html>`,
			message: api.FallbackMessage,
			hasTag:  isServer,
		},
		{
			name:       "plain string error",
			status:     http.StatusNotFound,
			body:       `{"error":"Product not found"}`,
			message:    "Product not found",
			fromServer: true,
			hasTag:     isNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			client := newClient(t, srv, api.WithResponseInterceptor(api.NormalizeError()))

			_, err := client.Do(context.Background(), &api.Request{Method: http.MethodPost, Path: "/products"}, nil)
			gt.Error(t, err)

			apiErr, ok := api.AsError(err)
			gt.True(t, ok)
			gt.Equal(t, apiErr.StatusCode, tc.status)
			gt.Equal(t, apiErr.Message, tc.message)
			gt.Equal(t, apiErr.Code, tc.code)
			gt.False(t, apiErr.IsNetwork())

			msg, fromServer := apiErr.ServerMessage()
			gt.Equal(t, msg, tc.message)
			gt.Equal(t, fromServer, tc.fromServer)
			gt.True(t, tc.hasTag(err))
			gt.NotNil(t, apiErr.Unwrap())
		})
	}
}

func TestNormalizeError_StructuredDetailKept(t *testing.T) {
	srv := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":[{"msg":"field required"}]}`))
	})
	client := newClient(t, srv)

	_, err := client.Do(context.Background(), &api.Request{Path: "/auth/register"}, nil)
	apiErr, ok := api.AsError(err)
	gt.True(t, ok)

	details, ok := apiErr.Details.([]any)
	gt.True(t, ok)
	gt.A(t, details).Length(1)
}

func TestNormalizeError_NetworkFailure(t *testing.T) {
	srv := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {})
	url := srv.URL
	srv.Close()

	client, err := api.New(url)
	gt.NoError(t, err).Required()

	_, err = client.Do(context.Background(), &api.Request{Path: "/users/me"}, nil)
	gt.Error(t, err)

	apiErr, ok := api.AsError(err)
	gt.True(t, ok)
	gt.True(t, apiErr.IsNetwork())
	gt.Equal(t, apiErr.StatusCode, 0)
	gt.Equal(t, apiErr.Message, api.FallbackMessage)
	gt.True(t, goerr.HasTag(err, apperr.ErrTagNetwork))
	gt.Equal(t, api.StatusCode(err), 0)
}

func TestNormalizeError_DecodeFailure(t *testing.T) {
	srv := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})
	client := newClient(t, srv)

	var out map[string]any
	_, err := client.Do(context.Background(), &api.Request{Path: "/users/me"}, &out)
	gt.Error(t, err)
	_, ok := api.AsError(err)
	gt.True(t, ok)
}
