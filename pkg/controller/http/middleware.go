package http

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/service/navigation"
	"github.com/m-mizutani/shopdesk/pkg/utils/errors"
)

const (
	// HeaderRedirect tells the browser to go to the login page
	HeaderRedirect = "X-Shopdesk-Redirect"
	// HeaderCurrentPath is the page the browser is on when it calls the gateway
	HeaderCurrentPath = "X-Shopdesk-Current-Path"
)

// loggingMiddleware logs HTTP requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		ctxlog.From(r.Context()).Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration", duration,
			"remote_addr", r.RemoteAddr,
		)
	})
}

// panicRecoveryMiddleware recovers from panics
func panicRecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				// Get stack trace for debugging
				buf := make([]byte, 4096)
				n := runtime.Stack(buf, false)
				panicErr := goerr.New(fmt.Sprintf("panic recovered: %v", err), goerr.V("stack", string(buf[:n])))
				errors.Handle(r.Context(), panicErr)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// redirectMiddleware gives each request its own navigation scope. When the
// API rejected the credential during the request, the response carries
// HeaderRedirect with the login path.
func redirectMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current := r.Header.Get(HeaderCurrentPath)
		if current == "" {
			current = r.URL.Path
		}

		ctx, redirect := navigation.WithRequest(r.Context(), current)
		next.ServeHTTP(&redirectWriter{ResponseWriter: w, redirect: redirect}, r.WithContext(ctx))
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (w *responseWriter) WriteHeader(code int) {
	if !w.written {
		w.statusCode = code
		w.written = true
		w.ResponseWriter.WriteHeader(code)
	}
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.written = true
	}
	return w.ResponseWriter.Write(b)
}

// redirectWriter adds HeaderRedirect right before the header is sent
type redirectWriter struct {
	http.ResponseWriter
	redirect    *navigation.Redirect
	wroteHeader bool
}

func (w *redirectWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		if location, ok := w.redirect.Location(); ok {
			w.Header().Set(HeaderRedirect, location)
		}
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *redirectWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}
