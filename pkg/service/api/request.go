package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Request describes one API call. Path is relative to the client's base URL.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	// Header overrides default headers. An explicit Authorization header
	// replaces the stored credential for this call, and a 401 on it does not
	// clear the stored one.
	Header http.Header

	// SkipAuthRedirect keeps a 401 on this call from navigating to login.
	// The credential is still cleared.
	SkipAuthRedirect bool
}

// Response is a fully read HTTP response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Request    *Request
	Duration   time.Duration
}

// Decode unmarshals the JSON body into v
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return goerr.Wrap(err, "failed to decode response body")
	}
	return nil
}

type call struct {
	client    *Client
	request   *Request
	startedAt time.Time
}

type callKey struct{}

func withCall(ctx context.Context, c *call) context.Context {
	return context.WithValue(ctx, callKey{}, c)
}

func callFrom(ctx context.Context) *call {
	if c, ok := ctx.Value(callKey{}).(*call); ok {
		return c
	}
	return nil
}

// RequestFrom returns the Request being processed. Interceptors use it to
// read per-call settings.
func RequestFrom(ctx context.Context) *Request {
	if c := callFrom(ctx); c != nil {
		return c.request
	}
	return nil
}
