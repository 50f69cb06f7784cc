package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/domain/interfaces"
	"github.com/m-mizutani/shopdesk/pkg/domain/model/auth"
	"github.com/m-mizutani/shopdesk/pkg/domain/types"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type credentialDocument struct {
	AccessToken  string    `firestore:"access_token"`
	RefreshToken string    `firestore:"refresh_token"`
	UpdatedAt    time.Time `firestore:"updated_at"`
}

// CredentialStore keeps one credential document per profile
type CredentialStore struct {
	client  *firestore.Client
	profile types.Profile
}

// NewCredentialStore creates a CredentialStore for profile
func NewCredentialStore(c *Client, profile types.Profile) *CredentialStore {
	if profile == "" {
		profile = types.DefaultProfile
	}
	return &CredentialStore{
		client:  c.client,
		profile: profile,
	}
}

func (s *CredentialStore) doc() *firestore.DocumentRef {
	return s.client.Collection(collectionCredentials).Doc(s.profile.String())
}

// Save overwrites the profile document
func (s *CredentialStore) Save(ctx context.Context, cred *auth.Credential) error {
	if !cred.IsValid() {
		return goerr.Wrap(auth.ErrInvalidCredential, "refusing to save credential without access token",
			goerr.T(apperr.ErrTagInvalidInput),
			goerr.TV(apperr.ProfileKey, s.profile.String()))
	}

	doc := credentialDocument{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		UpdatedAt:    time.Now().UTC(),
	}
	if _, err := s.doc().Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to save credential",
			goerr.T(apperr.ErrTagFirestore),
			goerr.TV(apperr.CollectionKey, collectionCredentials),
			goerr.TV(apperr.DocumentIDKey, s.profile.String()))
	}

	return nil
}

// Load returns auth.ErrCredentialNotFound when the document does not exist
func (s *CredentialStore) Load(ctx context.Context) (*auth.Credential, error) {
	snap, err := s.doc().Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, auth.ErrCredentialNotFound
		}
		return nil, goerr.Wrap(err, "failed to get credential",
			goerr.T(apperr.ErrTagFirestore),
			goerr.TV(apperr.CollectionKey, collectionCredentials),
			goerr.TV(apperr.DocumentIDKey, s.profile.String()))
	}

	var doc credentialDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode credential",
			goerr.T(apperr.ErrTagFirestore),
			goerr.TV(apperr.DocumentIDKey, s.profile.String()))
	}
	if doc.AccessToken == "" {
		return nil, auth.ErrCredentialNotFound
	}

	return &auth.Credential{
		AccessToken:  doc.AccessToken,
		RefreshToken: doc.RefreshToken,
	}, nil
}

// Clear deletes the profile document. Firestore treats deleting a missing
// document as success.
func (s *CredentialStore) Clear(ctx context.Context) error {
	if _, err := s.doc().Delete(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil
		}
		return goerr.Wrap(err, "failed to delete credential",
			goerr.T(apperr.ErrTagFirestore),
			goerr.TV(apperr.CollectionKey, collectionCredentials),
			goerr.TV(apperr.DocumentIDKey, s.profile.String()))
	}
	return nil
}

var _ interfaces.CredentialStore = (*CredentialStore)(nil)
