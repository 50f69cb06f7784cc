package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
	"google.golang.org/api/option"
)

const (
	// Collection names
	collectionCredentials = "credentials"
)

// Client wraps a Firestore client bound to one project and database
type Client struct {
	client     *firestore.Client
	projectID  string
	databaseID string
}

// New creates a new Firestore client. Without options Application Default
// Credentials are used.
func New(ctx context.Context, projectID, databaseID string, opts ...option.ClientOption) (*Client, error) {
	if projectID == "" {
		return nil, goerr.New("project ID is required", goerr.T(apperr.ErrTagRequiredField))
	}
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.T(apperr.ErrTagFirestore),
			goerr.TV(apperr.ProjectIDKey, projectID),
			goerr.V("database_id", databaseID))
	}

	return &Client{
		client:     client,
		projectID:  projectID,
		databaseID: databaseID,
	}, nil
}

// Close closes the Firestore client
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// GetClient returns the underlying Firestore client
func (c *Client) GetClient() *firestore.Client {
	return c.client
}
