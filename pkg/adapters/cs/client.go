package cs

import (
	"context"
	"errors"
	"io"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/domain/interfaces"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
	"github.com/m-mizutani/shopdesk/pkg/utils/safe"
	"google.golang.org/api/option"
)

// Client stores objects in a Google Cloud Storage bucket
type Client struct {
	client     *storage.Client
	bucket     string
	prefix     string
	clientOpts []option.ClientOption
}

// Option is a functional option for Client
type Option func(*Client)

// WithPrefix sets the prefix for all storage keys
func WithPrefix(prefix string) Option {
	return func(c *Client) {
		c.prefix = prefix
	}
}

// WithClientOptions passes options such as a credentials file to the
// underlying storage client
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(c *Client) {
		c.clientOpts = append(c.clientOpts, opts...)
	}
}

// New creates a new Cloud Storage client
func New(ctx context.Context, bucketName string, opts ...Option) (*Client, error) {
	if bucketName == "" {
		return nil, goerr.New("bucket name is required", goerr.T(apperr.ErrTagRequiredField))
	}

	c := &Client{
		bucket: bucketName,
	}
	for _, opt := range opts {
		opt(c)
	}

	client, err := storage.NewClient(ctx, c.clientOpts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Cloud Storage client",
			goerr.T(apperr.ErrTagStorage),
			goerr.TV(apperr.BucketKey, bucketName))
	}
	c.client = client

	return c, nil
}

// Close closes the Cloud Storage client
func (c *Client) Close() error {
	return c.client.Close()
}

// ObjectPath returns the object name used for key
func (c *Client) ObjectPath(key string) string {
	return c.prefix + key
}

// Put stores data with the given key
func (c *Client) Put(ctx context.Context, key string, data []byte) error {
	fullPath := c.ObjectPath(key)
	w := c.client.Bucket(c.bucket).Object(fullPath).NewWriter(ctx)

	if _, err := w.Write(data); err != nil {
		safe.Close(ctx, w)
		return goerr.Wrap(err, "failed to write data to Cloud Storage",
			goerr.T(apperr.ErrTagStorage),
			goerr.TV(apperr.StorageKeyKey, key),
			goerr.TV(apperr.BucketKey, c.bucket),
			goerr.V("path", fullPath),
		)
	}

	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to close Cloud Storage writer",
			goerr.T(apperr.ErrTagStorage),
			goerr.TV(apperr.StorageKeyKey, key),
			goerr.TV(apperr.BucketKey, c.bucket),
			goerr.V("path", fullPath),
		)
	}

	return nil
}

// Get retrieves data by the given key
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	fullPath := c.ObjectPath(key)

	r, err := c.client.Bucket(c.bucket).Object(fullPath).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, interfaces.ErrStorageKeyNotFound
		}
		return nil, goerr.Wrap(err, "failed to create Cloud Storage reader",
			goerr.T(apperr.ErrTagStorage),
			goerr.TV(apperr.StorageKeyKey, key),
			goerr.TV(apperr.BucketKey, c.bucket),
			goerr.V("path", fullPath),
		)
	}
	defer safe.Close(ctx, r)

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read data from Cloud Storage",
			goerr.T(apperr.ErrTagStorage),
			goerr.TV(apperr.StorageKeyKey, key),
			goerr.TV(apperr.BucketKey, c.bucket),
			goerr.V("path", fullPath),
		)
	}

	return data, nil
}

// Delete removes the object for key. A missing object is not an error.
func (c *Client) Delete(ctx context.Context, key string) error {
	fullPath := c.ObjectPath(key)

	err := c.client.Bucket(c.bucket).Object(fullPath).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return goerr.Wrap(err, "failed to delete Cloud Storage object",
			goerr.T(apperr.ErrTagStorage),
			goerr.TV(apperr.StorageKeyKey, key),
			goerr.TV(apperr.BucketKey, c.bucket),
			goerr.V("path", fullPath),
		)
	}

	return nil
}

var _ interfaces.StorageAdapter = (*Client)(nil)
