package config

import (
	"context"
	"log/slog"
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/adapters/fs"
	"github.com/m-mizutani/shopdesk/pkg/adapters/memory"
	"github.com/m-mizutani/shopdesk/pkg/domain/interfaces"
	"github.com/m-mizutani/shopdesk/pkg/domain/types"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
	"github.com/m-mizutani/shopdesk/pkg/repository/credential"
	"github.com/m-mizutani/shopdesk/pkg/repository/database/firestore"
	"github.com/urfave/cli/v3"
)

// Credential backends
const (
	BackendFile         = "file"
	BackendMemory       = "memory"
	BackendCloudStorage = "cloud-storage"
	BackendFirestore    = "firestore"
)

var credentialBackends = []string{BackendFile, BackendMemory, BackendCloudStorage, BackendFirestore}

// Credential selects where the token pair is persisted
type Credential struct {
	Backend string
	Dir     string
	Profile string
}

// Flags returns CLI flags for credential storage
func (x *Credential) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "credential-backend",
			Category:    "credential",
			Usage:       "Token storage [file|memory|cloud-storage|firestore] (default: file)",
			Sources:     cli.EnvVars("SHOPDESK_CREDENTIAL_BACKEND"),
			Destination: &x.Backend,
		},
		&cli.StringFlag{
			Name:        "credential-dir",
			Category:    "credential",
			Usage:       "Directory of the file backend (default: user config directory)",
			Sources:     cli.EnvVars("SHOPDESK_CREDENTIAL_DIR"),
			Destination: &x.Dir,
		},
		&cli.StringFlag{
			Name:        "profile",
			Aliases:     []string{"p"},
			Category:    "credential",
			Usage:       "Credential profile, one session per profile",
			Sources:     cli.EnvVars("SHOPDESK_PROFILE"),
			Destination: &x.Profile,
		},
	}
}

// LogValue returns the credential configuration as a slog.Value for logging
func (x Credential) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", x.Backend),
		slog.String("dir", x.Dir),
		slog.String("profile", x.Profile),
	)
}

// ApplyFile fills values not given by flags from the file
func (x *Credential) ApplyFile(f *File) {
	x.Backend = firstNonEmpty(x.Backend, f.Credential.Backend)
	x.Dir = firstNonEmpty(x.Dir, f.Credential.Dir)
	x.Profile = firstNonEmpty(x.Profile, f.Credential.Profile)
}

// SetDefaults sets default values for credential storage
func (x *Credential) SetDefaults() {
	x.Backend = firstNonEmpty(x.Backend, BackendFile)
	x.Profile = firstNonEmpty(x.Profile, types.DefaultProfile.String())
}

// Validate validates the credential configuration
func (x *Credential) Validate() error {
	if !slices.Contains(credentialBackends, x.Backend) {
		return goerr.New("unknown credential backend",
			goerr.T(apperr.ErrTagInvalidInput),
			goerr.V("backend", x.Backend),
			goerr.V("valid_backends", credentialBackends))
	}
	if err := types.Profile(x.Profile).Validate(); err != nil {
		return goerr.Wrap(err, "invalid profile", goerr.TV(apperr.ProfileKey, x.Profile))
	}
	return nil
}

// Configure creates the credential store for the selected backend. The
// cloud-storage backend reuses the storage bucket under "credentials/".
func (x *Credential) Configure(ctx context.Context, st *Storage, gcp *Firestore) (interfaces.CredentialStore, func(), error) {
	x.SetDefaults()
	if err := x.Validate(); err != nil {
		return nil, nil, err
	}
	profile := types.Profile(x.Profile)
	opts := []credential.Option{credential.WithProfile(profile)}

	switch x.Backend {
	case BackendMemory:
		return credential.New(memory.New(), opts...), func() {}, nil

	case BackendCloudStorage:
		if st == nil || !st.HasCloudStorage() {
			return nil, nil, goerr.New("cloud-storage credential backend requires --cloud-storage-bucket",
				goerr.T(apperr.ErrTagRequiredField))
		}
		adapter, cleanup, err := st.CreateAdapter(ctx, gcp, "credentials/")
		if err != nil {
			return nil, nil, err
		}
		return credential.New(adapter, opts...), cleanup, nil

	case BackendFirestore:
		client, err := gcp.Configure(ctx)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			_ = client.Close() // #nosec G104
		}
		return firestore.NewCredentialStore(client, profile), cleanup, nil

	default:
		dir := firstNonEmpty(x.Dir, fs.DefaultBaseDirectory())
		adapter, err := fs.New(&fs.Config{BaseDirectory: dir})
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to create credential directory", goerr.V("dir", dir))
		}
		return credential.New(adapter, opts...), func() {}, nil
	}
}
