package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/m-mizutani/shopdesk/pkg/domain/interfaces"
)

// Client keeps stored data in process memory. Used by tests and by the
// gateway when credentials must not outlive the process.
type Client struct {
	data map[string][]byte
	mu   sync.RWMutex
}

// New creates a new memory storage client
func New() *Client {
	return &Client{
		data: make(map[string][]byte),
	}
}

// Put stores a copy of data with the given key
func (c *Client) Put(ctx context.Context, key string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = append([]byte(nil), data...)
	return nil
}

// Get retrieves a copy of the data stored under key
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, exists := c.data[key]
	if !exists {
		return nil, interfaces.ErrStorageKeyNotFound
	}

	return append([]byte(nil), data...), nil
}

// Delete removes key if present
func (c *Client) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.data, key)
	return nil
}

// Keys returns the stored keys with the given prefix in sorted order
func (c *Client) Keys(prefix string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var keys []string
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

var _ interfaces.StorageAdapter = (*Client)(nil)
