package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/domain/interfaces"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
)

// Client stores each key as a file under a base directory. Files are
// written with mode 0600.
type Client struct {
	baseDir     string
	permissions os.FileMode
	mu          sync.RWMutex
}

// New creates a new filesystem storage client
func New(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid config")
	}

	if err := config.EnsureDirectory(); err != nil {
		return nil, err
	}

	return &Client{
		baseDir:     config.BaseDirectory,
		permissions: config.Permissions,
	}, nil
}

// Put stores data with the given key
func (c *Client) Put(ctx context.Context, key string, data []byte) error {
	if err := c.validateKey(key); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	filePath := c.getFilePath(key)

	if err := os.MkdirAll(filepath.Dir(filePath), c.permissions); err != nil {
		return goerr.Wrap(err, "failed to create directory",
			goerr.T(apperr.ErrTagStorage),
			goerr.TV(apperr.StorageKeyKey, key))
	}

	if err := os.WriteFile(filePath, data, 0600); err != nil {
		return goerr.Wrap(err, "failed to write file",
			goerr.T(apperr.ErrTagStorage),
			goerr.TV(apperr.StorageKeyKey, key))
	}

	return nil
}

// Get retrieves data by the given key
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if err := c.validateKey(key); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	// #nosec G304 - Path is validated by validateKey() function to prevent path traversal
	data, err := os.ReadFile(c.getFilePath(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, interfaces.ErrStorageKeyNotFound
		}
		return nil, goerr.Wrap(err, "failed to read file",
			goerr.T(apperr.ErrTagStorage),
			goerr.TV(apperr.StorageKeyKey, key))
	}

	return data, nil
}

// Delete removes the file for key. A missing file is not an error.
func (c *Client) Delete(ctx context.Context, key string) error {
	if err := c.validateKey(key); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.Remove(c.getFilePath(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return goerr.Wrap(err, "failed to remove file",
			goerr.T(apperr.ErrTagStorage),
			goerr.TV(apperr.StorageKeyKey, key))
	}

	return nil
}

// validateKey validates the storage key to prevent path traversal attacks
func (c *Client) validateKey(key string) error {
	if key == "" {
		return goerr.Wrap(apperr.ErrInvalidStorageKey, "key cannot be empty")
	}

	if strings.Contains(key, "..") || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return goerr.Wrap(apperr.ErrInvalidStorageKey, "path traversal in key",
			goerr.TV(apperr.StorageKeyKey, key))
	}

	for _, char := range key {
		if char < 32 || char == 127 { // Control characters
			return goerr.Wrap(apperr.ErrInvalidStorageKey, "control character in key")
		}
	}

	return nil
}

func (c *Client) getFilePath(key string) string {
	return filepath.Join(c.baseDir, key)
}

var _ interfaces.StorageAdapter = (*Client)(nil)
