package usecase

import (
	"github.com/m-mizutani/shopdesk/pkg/domain/interfaces"
	"github.com/m-mizutani/shopdesk/pkg/service/api"
)

// UseCases holds all use cases sharing one API client
type UseCases struct {
	Session   *Session
	Analytics *Analytics
}

type config struct {
	sessionOpts   []SessionOption
	analyticsOpts []AnalyticsOption
}

// Option is a functional option for UseCases
type Option func(*config)

// WithSessionOptions passes options to the session manager
func WithSessionOptions(opts ...SessionOption) Option {
	return func(c *config) {
		c.sessionOpts = append(c.sessionOpts, opts...)
	}
}

// WithAnalyticsOptions passes options to the analytics use case
func WithAnalyticsOptions(opts ...AnalyticsOption) Option {
	return func(c *config) {
		c.analyticsOpts = append(c.analyticsOpts, opts...)
	}
}

// New creates all use cases on top of client. The session manager owns the
// credential in store.
func New(client *api.Client, store interfaces.CredentialStore, opts ...Option) *UseCases {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	return &UseCases{
		Session:   NewSession(client, store, cfg.sessionOpts...),
		Analytics: NewAnalytics(client, cfg.analyticsOpts...),
	}
}

// Close releases hooks registered on the API client
func (uc *UseCases) Close() {
	uc.Session.Close()
}
