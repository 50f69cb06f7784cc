package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/shopdesk/pkg/domain/interfaces"
	"github.com/m-mizutani/shopdesk/pkg/service/api"
	"github.com/m-mizutani/shopdesk/pkg/utils/safe"
)

// DefaultLoginPath is where a browser goes when the credential is rejected
const DefaultLoginPath = "/login"

// Server is the local gateway in front of the remote API
type Server struct {
	router    *chi.Mux
	session   interfaces.SessionUseCases
	client    *api.Client
	loginPath string
}

// Options is a functional option for Server
type Options func(*Server)

// WithSession sets the session manager serving /api/session
func WithSession(session interfaces.SessionUseCases) Options {
	return func(s *Server) {
		s.session = session
	}
}

// WithAPIClient sets the client used for the /api/v1 passthrough
func WithAPIClient(client *api.Client) Options {
	return func(s *Server) {
		s.client = client
	}
}

// WithLoginPath overrides DefaultLoginPath
func WithLoginPath(path string) Options {
	return func(s *Server) {
		s.loginPath = path
	}
}

// New creates a new HTTP server
func New(opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:    r,
		loginPath: DefaultLoginPath,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Apply middleware
	r.Use(loggingMiddleware)
	r.Use(panicRecoveryMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Use(redirectMiddleware)

		if s.session != nil {
			r.Route("/session", func(r chi.Router) {
				r.Get("/", getSessionHandler(s.session))
				r.Post("/login", loginHandler(s.session))
				r.Post("/logout", logoutHandler(s.session))
				r.Post("/refresh", refreshHandler(s.session))
				r.Put("/profile", updateProfileHandler(s.session))
				r.Delete("/error", clearErrorHandler(s.session))
			})
		}

		if s.client != nil {
			r.HandleFunc("/v1/*", proxyHandler(s.client))
		}
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		safe.Write(r.Context(), w, []byte("OK"))
	})

	return s
}

// LoginPath returns the path written to the redirect header
func (s *Server) LoginPath() string {
	return s.loginPath
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
