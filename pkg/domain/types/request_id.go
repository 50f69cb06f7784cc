package types

import (
	"context"

	"github.com/google/uuid"
)

// RequestID identifies a single outgoing API call. It is sent as X-Request-ID.
type RequestID string

func NewRequestID(ctx context.Context) RequestID {
	return RequestID(newUUID(ctx))
}

func (id RequestID) String() string {
	return string(id)
}

// IsValid checks if the RequestID is a valid UUID
func (id RequestID) IsValid() bool {
	if id == "" {
		return false
	}
	_, err := uuid.Parse(string(id))
	return err == nil
}
