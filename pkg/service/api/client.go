package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/domain/interfaces"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
	"github.com/m-mizutani/shopdesk/pkg/utils/safe"
)

const (
	// DefaultBaseURL is the API root of a locally running backend
	DefaultBaseURL = "http://localhost:8000/api/v1"

	// DefaultTimeout bounds every call
	DefaultTimeout = 10 * time.Second

	// maxBodySize caps how much of a response body is read
	maxBodySize = 32 << 20
)

// Client issues every call to the remote API. Requests pass through the
// request interceptors in order, responses and transport failures through
// the response interceptors in order.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration

	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor

	headerMu sync.RWMutex
	headers  http.Header

	hookMu    sync.Mutex
	hookSeq   int
	authHooks map[int]func(ctx context.Context)
}

// Option is a functional option for Client
type Option func(*Client)

// WithTimeout overrides DefaultTimeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client. A copy is used so
// the timeout can be applied without touching the caller's client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRequestInterceptor appends request interceptors
func WithRequestInterceptor(interceptors ...RequestInterceptor) Option {
	return func(c *Client) {
		c.requestInterceptors = append(c.requestInterceptors, interceptors...)
	}
}

// WithResponseInterceptor appends response interceptors
func WithResponseInterceptor(interceptors ...ResponseInterceptor) Option {
	return func(c *Client) {
		c.responseInterceptors = append(c.responseInterceptors, interceptors...)
	}
}

// WithDefaultHeader sets a header sent with every request
func WithDefaultHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

// New creates a client for the API rooted at baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, goerr.New("base URL must be http or https",
			goerr.T(apperr.ErrTagInvalidInput),
			goerr.TV(apperr.BaseURLKey, baseURL))
	}

	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		timeout:   DefaultTimeout,
		headers:   http.Header{},
		authHooks: map[int]func(ctx context.Context){},
	}
	c.headers.Set("Content-Type", "application/json")
	c.headers.Set("Accept", "application/json")

	for _, opt := range opts {
		opt(c)
	}

	var hc http.Client
	if c.httpClient != nil {
		hc = *c.httpClient
	}
	if c.timeout > 0 {
		hc.Timeout = c.timeout
	}
	c.httpClient = &hc

	return c, nil
}

// BaseURL returns the API root without trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetDefaultHeader sets a header for all subsequent requests
func (c *Client) SetDefaultHeader(key, value string) {
	c.headerMu.Lock()
	defer c.headerMu.Unlock()
	c.headers.Set(key, value)
}

// DeleteDefaultHeader removes a header set with SetDefaultHeader
func (c *Client) DeleteDefaultHeader(key string) {
	c.headerMu.Lock()
	defer c.headerMu.Unlock()
	c.headers.Del(key)
}

// DefaultHeader returns the current value of a default header
func (c *Client) DefaultHeader(key string) string {
	c.headerMu.RLock()
	defer c.headerMu.RUnlock()
	return c.headers.Get(key)
}

// SetAuthorization caches the bearer token as a default header
func (c *Client) SetAuthorization(accessToken string) {
	c.SetDefaultHeader("Authorization", "Bearer "+accessToken)
}

// ClearAuthorization drops the cached Authorization header and, when store is
// not nil, the stored credential
func (c *Client) ClearAuthorization(ctx context.Context, store interfaces.CredentialStore) error {
	c.DeleteDefaultHeader("Authorization")
	if store == nil {
		return nil
	}
	if err := store.Clear(ctx); err != nil {
		return goerr.Wrap(err, "failed to clear credential")
	}
	return nil
}

// OnUnauthorized registers fn to be called whenever a call is rejected with
// 401 and HandleUnauthorized is installed. The returned function unregisters it.
func (c *Client) OnUnauthorized(fn func(ctx context.Context)) (remove func()) {
	c.hookMu.Lock()
	defer c.hookMu.Unlock()

	c.hookSeq++
	id := c.hookSeq
	c.authHooks[id] = fn

	return func() {
		c.hookMu.Lock()
		defer c.hookMu.Unlock()
		delete(c.authHooks, id)
	}
}

func (c *Client) notifyUnauthorized(ctx context.Context) {
	c.hookMu.Lock()
	hooks := make([]func(ctx context.Context), 0, len(c.authHooks))
	for id := 1; id <= c.hookSeq; id++ {
		if fn, ok := c.authHooks[id]; ok {
			hooks = append(hooks, fn)
		}
	}
	c.hookMu.Unlock()

	for _, fn := range hooks {
		fn(ctx)
	}
}

// Do sends req and decodes a successful JSON body into out when out is not
// nil. Failures are always returned as *Error.
func (c *Client) Do(ctx context.Context, req *Request, out any) (*Response, error) {
	resp, err := c.roundTrip(ctx, req)
	if err != nil {
		return resp, err
	}

	if out != nil && len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, out); err != nil {
			return resp, &Error{
				StatusCode: resp.StatusCode,
				Message:    FallbackMessage,
				Cause: goerr.Wrap(err, "failed to decode response body",
					goerr.T(apperr.ErrTagServer),
					goerr.TV(apperr.MethodKey, req.Method),
					goerr.TV(apperr.PathKey, req.Path),
					goerr.TV(apperr.StatusKey, resp.StatusCode)),
			}
		}
	}

	return resp, nil
}

// Raw sends req and returns the undecoded response body
func (c *Client) Raw(ctx context.Context, req *Request) ([]byte, error) {
	resp, err := c.roundTrip(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) roundTrip(ctx context.Context, req *Request) (*Response, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}

	ctx = withCall(ctx, &call{client: c, request: req, startedAt: time.Now()})

	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		return nil, normalize(ctx, nil, err)
	}

	for _, interceptor := range c.requestInterceptors {
		httpReq = interceptor(ctx, httpReq)
	}

	resp, err := c.send(httpReq, req)

	for _, interceptor := range c.responseInterceptors {
		resp, err = interceptor(ctx, resp, err)
	}

	if err != nil {
		return resp, normalize(ctx, resp, err)
	}
	return resp, nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req *Request) (*http.Request, error) {
	body, err := encodeBody(req.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode request body",
			goerr.T(apperr.ErrTagInvalidInput),
			goerr.TV(apperr.MethodKey, req.Method),
			goerr.TV(apperr.PathKey, req.Path))
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.url(req), body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request",
			goerr.T(apperr.ErrTagInvalidInput),
			goerr.TV(apperr.MethodKey, req.Method),
			goerr.TV(apperr.PathKey, req.Path))
	}

	c.headerMu.RLock()
	httpReq.Header = c.headers.Clone()
	c.headerMu.RUnlock()

	for key, values := range req.Header {
		httpReq.Header[http.CanonicalHeaderKey(key)] = append([]string(nil), values...)
	}

	return httpReq, nil
}

func (c *Client) send(httpReq *http.Request, req *Request) (*Response, error) {
	started := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer safe.Close(httpReq.Context(), httpResp.Body)

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodySize))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read response body")
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header.Clone(),
		Body:       body,
		Request:    req,
		Duration:   time.Since(started),
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, goerr.New("unexpected status code",
			goerr.TV(apperr.StatusKey, resp.StatusCode),
			goerr.TV(apperr.MethodKey, req.Method),
			goerr.TV(apperr.PathKey, req.Path))
	}

	return resp, nil
}

func (c *Client) url(req *Request) string {
	u := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		sep := "?"
		if strings.Contains(u, "?") {
			sep = "&"
		}
		u += sep + req.Query.Encode()
	}
	return u
}

func encodeBody(body any) (io.Reader, error) {
	switch v := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return bytes.NewReader(v), nil
	case io.Reader:
		return v, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(data), nil
	}
}
