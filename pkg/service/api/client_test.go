package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/shopdesk/pkg/adapters/memory"
	"github.com/m-mizutani/shopdesk/pkg/domain/model/auth"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
	"github.com/m-mizutani/shopdesk/pkg/repository/credential"
	"github.com/m-mizutani/shopdesk/pkg/service/api"
	"github.com/m-mizutani/shopdesk/pkg/service/navigation"
)

type capturedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

type fakeServer struct {
	*httptest.Server
	mu       sync.Mutex
	requests []capturedRequest
}

func newFakeServer(t *testing.T, handler http.HandlerFunc) *fakeServer {
	t.Helper()
	fs := &fakeServer{}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		fs.mu.Lock()
		fs.requests = append(fs.requests, capturedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   body,
		})
		fs.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fakeServer) last() capturedRequest {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.requests[len(fs.requests)-1]
}

func (fs *fakeServer) count() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return len(fs.requests)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newClient(t *testing.T, srv *fakeServer, opts ...api.Option) *api.Client {
	t.Helper()
	client, err := api.New(srv.URL+"/api/v1", opts...)
	gt.NoError(t, err).Required()
	return client
}

func TestNew(t *testing.T) {
	t.Run("default base URL", func(t *testing.T) {
		client, err := api.New("")
		gt.NoError(t, err).Required()
		gt.Equal(t, client.BaseURL(), api.DefaultBaseURL)
	})

	t.Run("rejects non http URL", func(t *testing.T) {
		_, err := api.New("ftp://example.com")
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, apperr.ErrTagInvalidInput))
	})

	t.Run("json default headers", func(t *testing.T) {
		client, err := api.New("http://localhost:8000/api/v1/")
		gt.NoError(t, err).Required()
		gt.Equal(t, client.BaseURL(), "http://localhost:8000/api/v1")
		gt.Equal(t, client.DefaultHeader("Content-Type"), "application/json")
		gt.Equal(t, client.DefaultHeader("Accept"), "application/json")
	})
}

func TestClient_Do(t *testing.T) {
	srv := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": 1, "email": "a@example.com"})
	})
	client := newClient(t, srv, api.WithDefaultHeader("X-Tenant", "acme"))

	var out struct {
		ID    int    `json:"id"`
		Email string `json:"email"`
	}
	resp, err := client.Do(context.Background(), &api.Request{
		Method: http.MethodPost,
		Path:   "/products",
		Query:  map[string][]string{"page": {"2"}},
		Body:   map[string]string{"title": "Lamp"},
		Header: http.Header{"X-Extra": {"1"}},
	}, &out)
	gt.NoError(t, err).Required()
	gt.Equal(t, resp.StatusCode, http.StatusOK)
	gt.Equal(t, out.Email, "a@example.com")

	req := srv.last()
	gt.Equal(t, req.Method, http.MethodPost)
	gt.Equal(t, req.Path, "/api/v1/products")
	gt.Equal(t, req.Query, "page=2")
	gt.Equal(t, req.Header.Get("X-Tenant"), "acme")
	gt.Equal(t, req.Header.Get("X-Extra"), "1")
	gt.Equal(t, req.Header.Get("Content-Type"), "application/json")
	gt.Equal(t, string(req.Body), `{"title":"Lamp"}`)
}

func TestClient_DefaultHeaders(t *testing.T) {
	srv := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	client := newClient(t, srv)
	ctx := context.Background()

	client.SetAuthorization("tok-1")
	_, err := client.Do(ctx, &api.Request{Path: "/users/me"}, nil)
	gt.NoError(t, err)
	gt.Equal(t, srv.last().Header.Get("Authorization"), "Bearer tok-1")

	gt.NoError(t, client.ClearAuthorization(ctx, nil))
	_, err = client.Do(ctx, &api.Request{Path: "/users/me"}, nil)
	gt.NoError(t, err)
	gt.Equal(t, srv.last().Header.Get("Authorization"), "")
}

func TestClient_DefaultHeadersConcurrent(t *testing.T) {
	client, err := api.New("")
	gt.NoError(t, err).Required()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			client.SetDefaultHeader("X-Test", "v")
		}()
		go func() {
			defer wg.Done()
			client.DeleteDefaultHeader("X-Test")
			_ = client.DefaultHeader("X-Test")
		}()
	}
	wg.Wait()
}

func TestBearerAuth(t *testing.T) {
	srv := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	store := credential.New(memory.New())
	client := newClient(t, srv, api.WithRequestInterceptor(api.BearerAuth(store)))
	ctx := context.Background()

	t.Run("no credential sends no header", func(t *testing.T) {
		_, err := client.Do(ctx, &api.Request{Path: "/products"}, nil)
		gt.NoError(t, err)
		gt.Equal(t, srv.last().Header.Get("Authorization"), "")
	})

	t.Run("stored token is attached", func(t *testing.T) {
		gt.NoError(t, store.Save(ctx, &auth.Credential{AccessToken: "stored"}))
		_, err := client.Do(ctx, &api.Request{Path: "/products"}, nil)
		gt.NoError(t, err)
		gt.Equal(t, srv.last().Header.Get("Authorization"), "Bearer stored")
	})

	t.Run("explicit header wins", func(t *testing.T) {
		_, err := client.Do(ctx, &api.Request{
			Path:   "/auth/logout",
			Header: http.Header{"Authorization": {"Bearer old"}},
		}, nil)
		gt.NoError(t, err)
		gt.Equal(t, srv.last().Header.Get("Authorization"), "Bearer old")
	})

	t.Run("cleared store sends no header", func(t *testing.T) {
		gt.NoError(t, store.Clear(ctx))
		_, err := client.Do(ctx, &api.Request{Path: "/products"}, nil)
		gt.NoError(t, err)
		gt.Equal(t, srv.last().Header.Get("Authorization"), "")
	})
}

type brokenStore struct{}

func (brokenStore) Save(ctx context.Context, cred *auth.Credential) error { return nil }
func (brokenStore) Load(ctx context.Context) (*auth.Credential, error) {
	return nil, errors.New("disk on fire")
}
func (brokenStore) Clear(ctx context.Context) error { return nil }

func TestBearerAuth_StoreFailureDoesNotBlockRequest(t *testing.T) {
	srv := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	client := newClient(t, srv, api.WithRequestInterceptor(api.BearerAuth(brokenStore{})))

	_, err := client.Do(context.Background(), &api.Request{Path: "/products"}, nil)
	gt.NoError(t, err)
	gt.Equal(t, srv.count(), 1)
	gt.Equal(t, srv.last().Header.Get("Authorization"), "")
}

func TestRequestIDAndUserAgent(t *testing.T) {
	srv := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	client := newClient(t, srv, api.WithRequestInterceptor(api.RequestID(), api.UserAgent("1.2.3")))
	ctx := context.Background()

	_, err := client.Do(ctx, &api.Request{Path: "/a"}, nil)
	gt.NoError(t, err)
	first := srv.last().Header.Get("X-Request-ID")
	gt.NotEqual(t, first, "")
	gt.Equal(t, srv.last().Header.Get("User-Agent"), "shopdesk/1.2.3")

	_, err = client.Do(ctx, &api.Request{Path: "/a"}, nil)
	gt.NoError(t, err)
	gt.NotEqual(t, srv.last().Header.Get("X-Request-ID"), first)
}

func TestInterceptorOrder(t *testing.T) {
	srv := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	var order []string
	mark := func(name string) api.RequestInterceptor {
		return func(ctx context.Context, req *http.Request) *http.Request {
			order = append(order, name)
			req.Header.Set("X-Last", name)
			return req
		}
	}
	markResp := func(name string) api.ResponseInterceptor {
		return func(ctx context.Context, resp *api.Response, err error) (*api.Response, error) {
			order = append(order, name)
			return resp, err
		}
	}

	client := newClient(t, srv,
		api.WithRequestInterceptor(mark("req1"), mark("req2")),
		api.WithResponseInterceptor(markResp("resp1"), markResp("resp2")),
	)
	_, err := client.Do(context.Background(), &api.Request{Path: "/a"}, nil)
	gt.NoError(t, err)
	gt.Equal(t, order, []string{"req1", "req2", "resp1", "resp2"})
	gt.Equal(t, srv.last().Header.Get("X-Last"), "req2")
}

func TestHandleUnauthorized(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusUnauthorized)
	srv := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		code := int(status.Load())
		if code == http.StatusOK {
			writeJSON(w, code, map[string]string{})
			return
		}
		writeJSON(w, code, map[string]any{"detail": "Could not validate credentials"})
	})

	setup := func(t *testing.T, current string) (*api.Client, *credential.Store, *navigation.Recorder) {
		store := credential.New(memory.New())
		nav := navigation.NewRecorder("/login", current)
		client := newClient(t, srv,
			api.WithRequestInterceptor(api.BearerAuth(store)),
			api.WithResponseInterceptor(api.HandleUnauthorized(store, nav, "/login")),
		)
		ctx := context.Background()
		gt.NoError(t, store.Save(ctx, &auth.Credential{AccessToken: "a", RefreshToken: "r"}))
		client.SetAuthorization("a")
		return client, store, nav
	}

	t.Run("clears credential, notifies hooks and redirects once", func(t *testing.T) {
		client, store, nav := setup(t, "/orders")
		ctx := context.Background()

		var hooks atomic.Int32
		remove := client.OnUnauthorized(func(ctx context.Context) { hooks.Add(1) })
		defer remove()

		_, err := client.Do(ctx, &api.Request{Path: "/orders"}, nil)
		gt.Error(t, err)
		gt.Equal(t, api.StatusCode(err), http.StatusUnauthorized)
		gt.True(t, goerr.HasTag(err, apperr.ErrTagUnauthorized))

		_, loadErr := store.Load(ctx)
		gt.True(t, errors.Is(loadErr, auth.ErrCredentialNotFound))
		gt.Equal(t, client.DefaultHeader("Authorization"), "")
		gt.Equal(t, hooks.Load(), int32(1))
		gt.Equal(t, nav.Redirects(), 1)
	})

	t.Run("repeated 401 repeats the clear idempotently", func(t *testing.T) {
		client, store, nav := setup(t, "/orders")
		ctx := context.Background()

		_, err := client.Do(ctx, &api.Request{Path: "/orders"}, nil)
		gt.Error(t, err)
		nav.SetPath("/orders")
		_, err = client.Do(ctx, &api.Request{Path: "/orders"}, nil)
		gt.Error(t, err)

		_, loadErr := store.Load(ctx)
		gt.True(t, errors.Is(loadErr, auth.ErrCredentialNotFound))
		gt.Equal(t, nav.Redirects(), 2)
	})

	t.Run("no redirect when already on login", func(t *testing.T) {
		client, store, nav := setup(t, "/login")
		ctx := context.Background()

		_, err := client.Do(ctx, &api.Request{Path: "/users/me"}, nil)
		gt.Error(t, err)
		gt.Equal(t, nav.Redirects(), 0)

		_, loadErr := store.Load(ctx)
		gt.True(t, errors.Is(loadErr, auth.ErrCredentialNotFound))
	})

	t.Run("SkipAuthRedirect clears but does not redirect", func(t *testing.T) {
		client, store, nav := setup(t, "/orders")
		ctx := context.Background()

		_, err := client.Do(ctx, &api.Request{Path: "/auth/login", SkipAuthRedirect: true}, nil)
		gt.Error(t, err)
		gt.Equal(t, nav.Redirects(), 0)

		_, loadErr := store.Load(ctx)
		gt.True(t, errors.Is(loadErr, auth.ErrCredentialNotFound))
	})

	t.Run("explicit token rejection keeps the stored credential", func(t *testing.T) {
		client, store, nav := setup(t, "/orders")
		ctx := context.Background()

		var hooks atomic.Int32
		remove := client.OnUnauthorized(func(ctx context.Context) { hooks.Add(1) })
		defer remove()

		err := client.Auth().Logout(ctx, "abandoned")
		gt.Error(t, err)
		gt.Equal(t, api.StatusCode(err), http.StatusUnauthorized)
		gt.Equal(t, srv.last().Header.Get("Authorization"), "Bearer abandoned")

		cred, loadErr := store.Load(ctx)
		gt.NoError(t, loadErr).Required()
		gt.Equal(t, cred.AccessToken, "a")
		gt.Equal(t, client.DefaultHeader("Authorization"), "Bearer a")
		gt.Equal(t, hooks.Load(), int32(0))
		gt.Equal(t, nav.Redirects(), 0)
	})

	t.Run("other statuses are untouched", func(t *testing.T) {
		status.Store(http.StatusForbidden)
		defer status.Store(http.StatusUnauthorized)

		client, store, nav := setup(t, "/orders")
		ctx := context.Background()

		_, err := client.Do(ctx, &api.Request{Path: "/orders"}, nil)
		gt.Error(t, err)
		gt.Equal(t, nav.Redirects(), 0)

		cred, loadErr := store.Load(ctx)
		gt.NoError(t, loadErr)
		gt.Equal(t, cred.AccessToken, "a")
		gt.Equal(t, client.DefaultHeader("Authorization"), "Bearer a")
	})
}

func TestOnUnauthorized_Remove(t *testing.T) {
	srv := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	store := credential.New(memory.New())
	client := newClient(t, srv, api.WithResponseInterceptor(api.HandleUnauthorized(store, nil, "/login")))

	var calls atomic.Int32
	remove := client.OnUnauthorized(func(ctx context.Context) { calls.Add(1) })
	remove()

	_, err := client.Do(context.Background(), &api.Request{Path: "/x"}, nil)
	gt.Error(t, err)
	gt.Equal(t, calls.Load(), int32(0))
}

func TestClient_Timeout(t *testing.T) {
	srv := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusNoContent)
	})
	client := newClient(t, srv, api.WithTimeout(20*time.Millisecond))

	_, err := client.Do(context.Background(), &api.Request{Path: "/slow"}, nil)
	gt.Error(t, err)

	apiErr, ok := api.AsError(err)
	gt.True(t, ok)
	gt.True(t, apiErr.IsNetwork())
	gt.True(t, goerr.HasTag(err, apperr.ErrTagTimeout))
	gt.True(t, goerr.HasTag(err, apperr.ErrTagNetwork))
}

func TestClient_Raw(t *testing.T) {
	srv := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("date,revenue\n"))
	})
	client := newClient(t, srv)

	data, err := client.Raw(context.Background(), &api.Request{Path: "/analytics/export"})
	gt.NoError(t, err)
	gt.Equal(t, string(data), "date,revenue\n")
}
