package credential

import (
	"context"
	"errors"
	"path"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/domain/interfaces"
	"github.com/m-mizutani/shopdesk/pkg/domain/model/auth"
	"github.com/m-mizutani/shopdesk/pkg/domain/types"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
)

// Storage keys. They match the names the web dashboard keeps in local storage.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
)

// Store keeps the token pair in a StorageAdapter, one key per token
type Store struct {
	adapter interfaces.StorageAdapter
	profile types.Profile
}

// Option is a functional option for Store
type Option func(*Store)

// WithProfile stores the tokens under "<profile>/". The default profile uses
// the bare keys.
func WithProfile(profile types.Profile) Option {
	return func(s *Store) {
		s.profile = profile
	}
}

// New creates a credential store over adapter
func New(adapter interfaces.StorageAdapter, opts ...Option) *Store {
	s := &Store{
		adapter: adapter,
		profile: types.DefaultProfile,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save writes both tokens. An empty refresh token removes a stale one.
func (s *Store) Save(ctx context.Context, cred *auth.Credential) error {
	if !cred.IsValid() {
		return goerr.Wrap(auth.ErrInvalidCredential, "refusing to save credential without access token",
			goerr.T(apperr.ErrTagInvalidInput),
			goerr.TV(apperr.ProfileKey, s.profile.String()))
	}

	if err := s.adapter.Put(ctx, s.key(KeyAccessToken), []byte(cred.AccessToken)); err != nil {
		return goerr.Wrap(err, "failed to save access token",
			goerr.T(apperr.ErrTagStorage),
			goerr.TV(apperr.ProfileKey, s.profile.String()))
	}

	if cred.RefreshToken == "" {
		if err := s.adapter.Delete(ctx, s.key(KeyRefreshToken)); err != nil {
			return goerr.Wrap(err, "failed to remove stale refresh token",
				goerr.T(apperr.ErrTagStorage),
				goerr.TV(apperr.ProfileKey, s.profile.String()))
		}
		return nil
	}

	if err := s.adapter.Put(ctx, s.key(KeyRefreshToken), []byte(cred.RefreshToken)); err != nil {
		return goerr.Wrap(err, "failed to save refresh token",
			goerr.T(apperr.ErrTagStorage),
			goerr.TV(apperr.ProfileKey, s.profile.String()))
	}

	return nil
}

// Load returns the stored pair, or auth.ErrCredentialNotFound when no
// access token is stored
func (s *Store) Load(ctx context.Context) (*auth.Credential, error) {
	access, err := s.adapter.Get(ctx, s.key(KeyAccessToken))
	if err != nil {
		if errors.Is(err, interfaces.ErrStorageKeyNotFound) {
			return nil, auth.ErrCredentialNotFound
		}
		return nil, goerr.Wrap(err, "failed to load access token",
			goerr.T(apperr.ErrTagStorage),
			goerr.TV(apperr.ProfileKey, s.profile.String()))
	}
	if len(access) == 0 {
		return nil, auth.ErrCredentialNotFound
	}

	cred := &auth.Credential{AccessToken: string(access)}

	refresh, err := s.adapter.Get(ctx, s.key(KeyRefreshToken))
	switch {
	case err == nil:
		cred.RefreshToken = string(refresh)
	case errors.Is(err, interfaces.ErrStorageKeyNotFound):
	default:
		return nil, goerr.Wrap(err, "failed to load refresh token",
			goerr.T(apperr.ErrTagStorage),
			goerr.TV(apperr.ProfileKey, s.profile.String()))
	}

	return cred, nil
}

// Clear removes both tokens. Clearing an empty store succeeds.
func (s *Store) Clear(ctx context.Context) error {
	for _, key := range []string{KeyAccessToken, KeyRefreshToken} {
		if err := s.adapter.Delete(ctx, s.key(key)); err != nil {
			return goerr.Wrap(err, "failed to clear credential",
				goerr.T(apperr.ErrTagStorage),
				goerr.TV(apperr.ProfileKey, s.profile.String()),
				goerr.TV(apperr.StorageKeyKey, key))
		}
	}
	return nil
}

func (s *Store) key(name string) string {
	if s.profile == "" || s.profile == types.DefaultProfile {
		return name
	}
	return path.Join(s.profile.String(), name)
}

var _ interfaces.CredentialStore = (*Store)(nil)
