package interfaces

import "context"

// Navigator moves the consumer to the login entry point after the session is
// invalidated by the server
type Navigator interface {
	// CurrentPath returns the consumer's current location
	CurrentPath(ctx context.Context) string

	// GoToLogin sends the consumer to the login path
	GoToLogin(ctx context.Context)
}
