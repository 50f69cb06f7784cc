package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"path"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/domain/interfaces"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
)

const (
	exportDir = "exports"
	reportDir = "reports"
)

// Client archives analytics exports and report snapshots in a StorageAdapter
type Client struct {
	adapter  interfaces.StorageAdapter
	compress bool
}

// Option is a functional option for Client
type Option func(*Client)

// WithCompression gzips stored objects and appends ".gz" to their keys
func WithCompression() Option {
	return func(c *Client) {
		c.compress = true
	}
}

// New creates a new storage client
func New(adapter interfaces.StorageAdapter, opts ...Option) *Client {
	c := &Client{
		adapter: adapter,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SaveExport stores export bytes under exports/<name> and returns the key
func (c *Client) SaveExport(ctx context.Context, name string, data []byte) (string, error) {
	return c.save(ctx, exportDir, name, data)
}

// LoadExport reads back an export saved with SaveExport
func (c *Client) LoadExport(ctx context.Context, name string) ([]byte, error) {
	return c.load(ctx, exportDir, name)
}

// SaveReportJSON stores v as JSON under reports/<name> and returns the key
func (c *Client) SaveReportJSON(ctx context.Context, name string, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", goerr.Wrap(err, "failed to marshal report", goerr.V("name", name))
	}
	return c.save(ctx, reportDir, name, data)
}

// LoadReportJSON decodes a report saved with SaveReportJSON into v
func (c *Client) LoadReportJSON(ctx context.Context, name string, v any) error {
	data, err := c.load(ctx, reportDir, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return goerr.Wrap(err, "failed to unmarshal report", goerr.V("name", name))
	}
	return nil
}

func (c *Client) save(ctx context.Context, dir, name string, data []byte) (string, error) {
	key, err := c.buildKey(dir, name)
	if err != nil {
		return "", err
	}

	if c.compress {
		data, err = compressData(data)
		if err != nil {
			return "", goerr.Wrap(err, "failed to compress data", goerr.TV(apperr.StorageKeyKey, key))
		}
	}

	if err := c.adapter.Put(ctx, key, data); err != nil {
		return "", goerr.Wrap(err, "failed to save to storage",
			goerr.T(apperr.ErrTagStorage),
			goerr.TV(apperr.StorageKeyKey, key))
	}

	return key, nil
}

func (c *Client) load(ctx context.Context, dir, name string) ([]byte, error) {
	key, err := c.buildKey(dir, name)
	if err != nil {
		return nil, err
	}

	data, err := c.adapter.Get(ctx, key)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load from storage",
			goerr.TV(apperr.StorageKeyKey, key))
	}

	if c.compress {
		data, err = decompressData(data)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to decompress data", goerr.TV(apperr.StorageKeyKey, key))
		}
	}

	return data, nil
}

func (c *Client) buildKey(dir, name string) (string, error) {
	if name == "" || strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return "", goerr.Wrap(apperr.ErrInvalidStorageKey, "invalid object name", goerr.V("name", name))
	}

	key := path.Join(dir, name)
	if c.compress {
		key += ".gz"
	}
	return key, nil
}

func compressData(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := gzip.NewWriter(&buf)

	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return nil, goerr.Wrap(err, "failed to write data to gzip writer")
	}

	if err := writer.Close(); err != nil {
		return nil, goerr.Wrap(err, "failed to close gzip writer")
	}

	return buf.Bytes(), nil
}

func decompressData(compressed []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gzip reader")
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read from gzip reader")
	}

	return data, nil
}
