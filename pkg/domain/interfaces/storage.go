package interfaces

import (
	"context"
	"errors"
)

// ErrStorageKeyNotFound is returned by StorageAdapter.Get for a missing key.
// The credential store treats it as "not logged in".
var ErrStorageKeyNotFound = errors.New("storage key not found")

// StorageAdapter is the byte store behind the credential store and the
// analytics export sink. Keys are slash separated paths such as
// "default/accessToken" or "exports/analytics_2024-01-01_2024-01-31.csv".
type StorageAdapter interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
