package fs

import (
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
)

// Config defines the configuration for the filesystem storage adapter
type Config struct {
	BaseDirectory string      `yaml:"base_directory"`
	Permissions   os.FileMode `yaml:"permissions,omitempty"`
}

// DefaultBaseDirectory returns ~/.config/shopdesk, or ./.shopdesk when the
// user config directory cannot be determined
func DefaultBaseDirectory() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".shopdesk"
	}
	return filepath.Join(dir, "shopdesk")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.BaseDirectory == "" {
		return goerr.New("base_directory is required", goerr.T(apperr.ErrTagRequiredField))
	}

	absPath, err := filepath.Abs(c.BaseDirectory)
	if err != nil {
		return goerr.Wrap(err, "invalid base_directory",
			goerr.T(apperr.ErrTagInvalidInput),
			goerr.V("base_directory", c.BaseDirectory))
	}
	c.BaseDirectory = absPath

	// Directories hold tokens, keep them private by default
	if c.Permissions == 0 {
		c.Permissions = 0700
	}

	return nil
}

// EnsureDirectory creates the base directory if it doesn't exist
func (c *Config) EnsureDirectory() error {
	if err := os.MkdirAll(c.BaseDirectory, c.Permissions); err != nil {
		return goerr.Wrap(err, "failed to create base directory",
			goerr.T(apperr.ErrTagStorage),
			goerr.V("base_directory", c.BaseDirectory))
	}
	return nil
}
