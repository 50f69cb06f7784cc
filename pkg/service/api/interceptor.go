package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/domain/interfaces"
	"github.com/m-mizutani/shopdesk/pkg/domain/model/auth"
	"github.com/m-mizutani/shopdesk/pkg/domain/types"
	errutil "github.com/m-mizutani/shopdesk/pkg/utils/errors"
)

const (
	headerAuthorization = "Authorization"
	headerRequestID     = "X-Request-ID"
	headerUserAgent     = "User-Agent"
)

// RequestInterceptor decorates an outgoing request. It never fails; a
// problem is logged and the request proceeds.
type RequestInterceptor func(ctx context.Context, req *http.Request) *http.Request

// ResponseInterceptor observes or rewrites the outcome of a call. err is
// non-nil for transport failures and non-2xx statuses; resp is nil when no
// response was received.
type ResponseInterceptor func(ctx context.Context, resp *Response, err error) (*Response, error)

// BearerAuth attaches the stored access token. A request that already
// carries an explicit Authorization header keeps it.
func BearerAuth(store interfaces.CredentialStore) RequestInterceptor {
	return func(ctx context.Context, req *http.Request) *http.Request {
		if r := RequestFrom(ctx); r != nil && r.Header.Get(headerAuthorization) != "" {
			return req
		}

		cred, err := store.Load(ctx)
		switch {
		case err == nil && cred.IsValid():
			req.Header.Set(headerAuthorization, cred.BearerValue())
		case err == nil, errors.Is(err, auth.ErrCredentialNotFound):
		default:
			errutil.Handle(ctx, goerr.Wrap(err, "failed to load credential, sending request without it"))
			req.Header.Del(headerAuthorization)
		}
		return req
	}
}

// RequestID sets a fresh X-Request-ID on every request
func RequestID() RequestInterceptor {
	return func(ctx context.Context, req *http.Request) *http.Request {
		req.Header.Set(headerRequestID, types.NewRequestID(ctx).String())
		return req
	}
}

// UserAgent identifies the client to the API
func UserAgent(version string) RequestInterceptor {
	ua := "shopdesk/" + version
	return func(ctx context.Context, req *http.Request) *http.Request {
		req.Header.Set(headerUserAgent, ua)
		return req
	}
}

// HandleUnauthorized reacts to a 401: the credential and the cached
// Authorization header are cleared, OnUnauthorized hooks run, and the
// navigator is sent to loginPath unless it is already there or the call set
// SkipAuthRedirect. A call that carried its own Authorization header was not
// made with the stored credential, so its 401 leaves the session alone. The
// error is passed on to the caller.
func HandleUnauthorized(store interfaces.CredentialStore, nav interfaces.Navigator, loginPath string) ResponseInterceptor {
	return func(ctx context.Context, resp *Response, err error) (*Response, error) {
		if err == nil || resp == nil || resp.StatusCode != http.StatusUnauthorized {
			return resp, err
		}
		if req := RequestFrom(ctx); req != nil && req.Header.Get(headerAuthorization) != "" {
			ctxlog.From(ctx).Debug("explicit token rejected, stored credential kept",
				"path", req.Path)
			return resp, err
		}

		c := callFrom(ctx)
		if c != nil {
			if clearErr := c.client.ClearAuthorization(ctx, store); clearErr != nil {
				errutil.Handle(ctx, clearErr)
			}
			c.client.notifyUnauthorized(ctx)
		} else if clearErr := store.Clear(ctx); clearErr != nil {
			errutil.Handle(ctx, goerr.Wrap(clearErr, "failed to clear credential"))
		}

		if req := RequestFrom(ctx); req != nil && req.SkipAuthRedirect {
			return resp, err
		}
		if nav != nil && nav.CurrentPath(ctx) != loginPath {
			nav.GoToLogin(ctx)
		}

		return resp, err
	}
}

// NormalizeError converts any failure into *Error. Client.Do also applies
// it after all interceptors, so placing it explicitly only matters for
// interceptors that want to read *Error.
func NormalizeError() ResponseInterceptor {
	return func(ctx context.Context, resp *Response, err error) (*Response, error) {
		return resp, normalize(ctx, resp, err)
	}
}

// LogResponse debug-logs every call and warns on failures
func LogResponse() ResponseInterceptor {
	return func(ctx context.Context, resp *Response, err error) (*Response, error) {
		logger := ctxlog.From(ctx)

		attrs := []any{}
		if c := callFrom(ctx); c != nil {
			attrs = append(attrs,
				slog.String("method", c.request.Method),
				slog.String("path", c.request.Path),
				slog.Duration("duration", time.Since(c.startedAt)),
			)
		}
		if resp != nil {
			attrs = append(attrs, slog.Int("status", resp.StatusCode))
		}

		if err != nil {
			logger.Debug("API call failed", append(attrs, slog.Any("error", err))...)
		} else {
			logger.Debug("API call", attrs...)
		}
		return resp, err
	}
}
