package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/domain/interfaces"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
	"github.com/m-mizutani/shopdesk/pkg/service/api"
	"github.com/m-mizutani/shopdesk/pkg/service/navigation"
	"github.com/urfave/cli/v3"
)

// API holds the remote API configuration
type API struct {
	BaseURL    string
	Timeout    time.Duration
	LoginPath  string
	ConfigFile string
}

// Flags returns CLI flags for API configuration
func (x *API) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "api-url",
			Category:    "api",
			Usage:       "Base URL of the admin API (default: " + api.DefaultBaseURL + ")",
			Sources:     cli.EnvVars("SHOPDESK_API_URL"),
			Destination: &x.BaseURL,
		},
		&cli.DurationFlag{
			Name:        "api-timeout",
			Category:    "api",
			Usage:       "Timeout of a single API call (default: 10s)",
			Sources:     cli.EnvVars("SHOPDESK_API_TIMEOUT"),
			Destination: &x.Timeout,
		},
		&cli.StringFlag{
			Name:        "login-path",
			Category:    "api",
			Usage:       "Path of the login page (default: " + navigation.DefaultLoginPath + ")",
			Sources:     cli.EnvVars("SHOPDESK_LOGIN_PATH"),
			Destination: &x.LoginPath,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "YAML configuration file",
			Sources:     cli.EnvVars("SHOPDESK_CONFIG"),
			Destination: &x.ConfigFile,
		},
	}
}

// LogValue returns the API configuration as a slog.Value for logging
func (x API) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("base_url", x.BaseURL),
		slog.Duration("timeout", x.Timeout),
		slog.String("login_path", x.LoginPath),
		slog.String("config_file", x.ConfigFile),
	)
}

// LoadFile reads the file given by --config. Without one an empty File is
// returned.
func (x *API) LoadFile() (*File, error) {
	if x.ConfigFile == "" {
		return &File{}, nil
	}
	return LoadFile(x.ConfigFile)
}

// ApplyFile fills values not given by flags from the file
func (x *API) ApplyFile(f *File) error {
	x.BaseURL = firstNonEmpty(x.BaseURL, f.API.BaseURL)
	x.LoginPath = firstNonEmpty(x.LoginPath, f.API.LoginPath)

	if x.Timeout == 0 && f.API.Timeout != "" {
		d, err := time.ParseDuration(f.API.Timeout)
		if err != nil {
			return goerr.Wrap(err, "invalid api.timeout in config file",
				goerr.T(apperr.ErrTagInvalidInput),
				goerr.V("timeout", f.API.Timeout))
		}
		x.Timeout = d
	}
	return nil
}

// SetDefaults sets default values for API configuration
func (x *API) SetDefaults() {
	x.BaseURL = firstNonEmpty(x.BaseURL, api.DefaultBaseURL)
	x.LoginPath = firstNonEmpty(x.LoginPath, navigation.DefaultLoginPath)
	if x.Timeout == 0 {
		x.Timeout = api.DefaultTimeout
	}
}

// Validate validates the API configuration
func (x *API) Validate() error {
	if x.Timeout < 0 {
		return goerr.New("api timeout must be positive",
			goerr.T(apperr.ErrTagInvalidInput),
			goerr.V("timeout", x.Timeout))
	}
	return nil
}

// Configure builds the API client with the standard interceptor chain. The
// bearer token is read from store and a 401 sends nav to the login path.
func (x *API) Configure(store interfaces.CredentialStore, nav interfaces.Navigator, version string, opts ...api.Option) (*api.Client, error) {
	x.SetDefaults()
	if err := x.Validate(); err != nil {
		return nil, err
	}

	base := []api.Option{
		api.WithTimeout(x.Timeout),
		api.WithRequestInterceptor(
			api.BearerAuth(store),
			api.RequestID(),
			api.UserAgent(version),
		),
		api.WithResponseInterceptor(
			api.LogResponse(),
			api.HandleUnauthorized(store, nav, x.LoginPath),
		),
	}

	client, err := api.New(x.BaseURL, append(base, opts...)...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create API client", goerr.TV(apperr.BaseURLKey, x.BaseURL))
	}
	return client, nil
}
