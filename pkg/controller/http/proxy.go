package http

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
	"github.com/m-mizutani/shopdesk/pkg/service/api"
	"github.com/m-mizutani/shopdesk/pkg/utils/safe"
)

// headers copied from the upstream response
var forwardedHeaders = []string{
	"Content-Type",
	"Content-Disposition",
	"X-Request-ID",
}

// proxyHandler sends /api/v1/* to the remote API through the client
// pipeline, so the stored credential is attached and a 401 clears it.
func proxyHandler(client *api.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		body, err := io.ReadAll(r.Body)
		if err != nil {
			handleError(w, r, goerr.Wrap(err, "failed to read request body",
				goerr.T(apperr.ErrTagInvalidInput),
				goerr.TV(apperr.PathKey, r.URL.Path)))
			return
		}

		req := &api.Request{
			Method: r.Method,
			Path:   "/" + strings.TrimLeft(chi.URLParam(r, "*"), "/"),
			Query:  r.URL.Query(),
		}
		if len(body) > 0 {
			req.Body = body
			if ct := r.Header.Get("Content-Type"); ct != "" {
				req.Header = http.Header{"Content-Type": []string{ct}}
			}
		}

		resp, err := client.Do(ctx, req, nil)
		if resp == nil {
			// no upstream response to relay
			handleError(w, r, err)
			return
		}
		if err != nil {
			// the upstream body is relayed as is
			ctxlog.From(ctx).Warn("upstream request failed", "error", err)
		}

		for _, key := range forwardedHeaders {
			if v := resp.Header.Get(key); v != "" {
				w.Header().Set(key, v)
			}
		}
		w.WriteHeader(resp.StatusCode)
		safe.Write(ctx, w, resp.Body)
	}
}
