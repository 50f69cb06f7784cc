package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/adapters/cs"
	"github.com/m-mizutani/shopdesk/pkg/adapters/fs"
	"github.com/m-mizutani/shopdesk/pkg/domain/interfaces"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
	"github.com/m-mizutani/shopdesk/pkg/repository/storage"
	"github.com/urfave/cli/v3"
)

// Storage contains configuration for the export sink and the
// cloud-storage credential backend
type Storage struct {
	// Cloud Storage configuration
	Bucket string
	Prefix string

	// File System storage configuration
	FSPath string

	Compress bool
}

// Flags returns CLI flags for Storage configuration
func (s *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "cloud-storage-bucket",
			Category:    "storage",
			Sources:     cli.EnvVars("SHOPDESK_CLOUD_STORAGE_BUCKET"),
			Usage:       "Cloud Storage bucket for exports and credentials",
			Destination: &s.Bucket,
		},
		&cli.StringFlag{
			Name:        "cloud-storage-prefix",
			Category:    "storage",
			Sources:     cli.EnvVars("SHOPDESK_CLOUD_STORAGE_PREFIX"),
			Usage:       "Prefix for Cloud Storage objects",
			Destination: &s.Prefix,
		},
		&cli.StringFlag{
			Name:        "file-storage-path",
			Category:    "storage",
			Usage:       "Directory for exports on the local file system",
			Sources:     cli.EnvVars("SHOPDESK_FILE_STORAGE_PATH"),
			Destination: &s.FSPath,
		},
		&cli.BoolFlag{
			Name:        "storage-compress",
			Category:    "storage",
			Usage:       "Gzip stored exports",
			Sources:     cli.EnvVars("SHOPDESK_STORAGE_COMPRESS"),
			Destination: &s.Compress,
		},
	}
}

// LogValue returns the Storage configuration as a slog.Value for logging
func (s Storage) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("bucket", s.Bucket),
		slog.String("prefix", s.Prefix),
		slog.String("fs_path", s.FSPath),
		slog.Bool("compress", s.Compress),
	)
}

// ApplyFile fills values not given by flags from the file
func (s *Storage) ApplyFile(f *File) {
	s.Bucket = firstNonEmpty(s.Bucket, f.Storage.Bucket)
	s.Prefix = firstNonEmpty(s.Prefix, f.Storage.Prefix)
	s.FSPath = firstNonEmpty(s.FSPath, f.Storage.Path)
	s.Compress = s.Compress || f.Storage.Compress
}

// Validate validates the Storage configuration
func (s *Storage) Validate() error {
	if !s.HasCloudStorage() && s.FSPath == "" {
		return goerr.Wrap(apperr.ErrStorageNotConfigured,
			"use --cloud-storage-bucket for cloud storage or --file-storage-path for file system")
	}
	return nil
}

// HasCloudStorage returns true if cloud storage is configured
func (s *Storage) HasCloudStorage() bool {
	return s.Bucket != ""
}

// CreateAdapter creates appropriate storage adapter based on configuration.
// subPrefix is appended to the configured prefix.
func (s *Storage) CreateAdapter(ctx context.Context, gcp *Firestore, subPrefix string) (interfaces.StorageAdapter, func(), error) {
	if s.HasCloudStorage() {
		opts := []cs.Option{}
		if prefix := s.Prefix + subPrefix; prefix != "" {
			opts = append(opts, cs.WithPrefix(prefix))
		}
		if gcp != nil {
			opts = append(opts, cs.WithClientOptions(gcp.ClientOptions()...))
		}

		csClient, err := cs.New(ctx, s.Bucket, opts...)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to create Cloud Storage client")
		}

		cleanup := func() {
			_ = csClient.Close() // #nosec G104 - Close error handled gracefully in cleanup
		}

		return csClient, cleanup, nil
	}

	if s.FSPath != "" {
		fsClient, err := fs.New(&fs.Config{BaseDirectory: s.FSPath})
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to create file system storage adapter")
		}

		return fsClient, func() {}, nil
	}

	return nil, nil, apperr.ErrStorageNotConfigured
}

// Configure creates the export sink
func (s *Storage) Configure(ctx context.Context, gcp *Firestore) (*storage.Client, func(), error) {
	if err := s.Validate(); err != nil {
		return nil, nil, err
	}

	adapter, cleanup, err := s.CreateAdapter(ctx, gcp, "")
	if err != nil {
		return nil, nil, err
	}

	var opts []storage.Option
	if s.Compress {
		opts = append(opts, storage.WithCompression())
	}
	return storage.New(adapter, opts...), cleanup, nil
}
