package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
	"github.com/m-mizutani/shopdesk/pkg/repository/database/firestore"
	"github.com/urfave/cli/v3"
	"google.golang.org/api/option"
)

// Firestore contains configuration for Google Cloud Firestore and the
// credentials shared by all Google Cloud clients
type Firestore struct {
	ProjectID       string
	DatabaseID      string
	CredentialsFile string
}

// Flags returns CLI flags for Firestore configuration
func (f *Firestore) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Category:    "google cloud",
			Usage:       "Google Cloud Project ID for Firestore",
			Sources:     cli.EnvVars("SHOPDESK_FIRESTORE_PROJECT_ID"),
			Destination: &f.ProjectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Category:    "google cloud",
			Usage:       "Firestore Database ID (default: (default))",
			Sources:     cli.EnvVars("SHOPDESK_FIRESTORE_DATABASE_ID"),
			Destination: &f.DatabaseID,
		},
		&cli.StringFlag{
			Name:        "google-credentials-file",
			Category:    "google cloud",
			Usage:       "Service account key file (default: Application Default Credentials)",
			Sources:     cli.EnvVars("SHOPDESK_GOOGLE_CREDENTIALS_FILE"),
			Destination: &f.CredentialsFile,
		},
	}
}

// LogValue returns the Firestore configuration as a slog.Value for logging
func (f Firestore) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("project_id", f.ProjectID),
		slog.String("database_id", f.DatabaseID),
		slog.Bool("credentials_file", f.CredentialsFile != ""),
	)
}

// ApplyFile fills values not given by flags from the file
func (f *Firestore) ApplyFile(file *File) {
	f.ProjectID = firstNonEmpty(f.ProjectID, file.Firestore.ProjectID)
	f.DatabaseID = firstNonEmpty(f.DatabaseID, file.Firestore.DatabaseID)
	f.CredentialsFile = firstNonEmpty(f.CredentialsFile, file.Firestore.CredentialsFile)
}

// SetDefaults sets default values for Firestore configuration
func (f *Firestore) SetDefaults() {
	if f.DatabaseID == "" {
		f.DatabaseID = "(default)"
	}
}

// IsValid checks if the Firestore configuration is valid
func (f *Firestore) IsValid() bool {
	return f.ProjectID != "" && f.DatabaseID != ""
}

// ClientOptions returns options for Google Cloud clients
func (f *Firestore) ClientOptions() []option.ClientOption {
	if f.CredentialsFile == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(f.CredentialsFile)}
}

// Configure creates the Firestore client
func (f *Firestore) Configure(ctx context.Context) (*firestore.Client, error) {
	f.SetDefaults()
	if !f.IsValid() {
		return nil, goerr.New("firestore project ID is required",
			goerr.T(apperr.ErrTagRequiredField))
	}

	client, err := firestore.New(ctx, f.ProjectID, f.DatabaseID, f.ClientOptions()...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.TV(apperr.ProjectIDKey, f.ProjectID))
	}
	return client, nil
}
