package interfaces

import (
	"context"

	"github.com/m-mizutani/shopdesk/pkg/domain/model/auth"
)

// CredentialStore persists at most one token pair. Load returns
// auth.ErrCredentialNotFound when nothing is stored.
type CredentialStore interface {
	Save(ctx context.Context, cred *auth.Credential) error
	Load(ctx context.Context) (*auth.Credential, error)
	Clear(ctx context.Context) error
}
