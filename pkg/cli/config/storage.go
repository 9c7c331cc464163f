package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/memora-app/memora/pkg/service/mediastore"
	"github.com/urfave/cli/v3"
)

// Storage holds CLI flags for the media object store
type Storage struct {
	bucket string
}

// Flags returns CLI flags for storage configuration
func (s *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "storage-bucket",
			Usage:       "Cloud Storage bucket for uploaded media",
			Sources:     cli.EnvVars("MEMORA_STORAGE_BUCKET"),
			Destination: &s.bucket,
		},
	}
}

// Bucket returns the configured bucket name
func (s *Storage) Bucket() string {
	return s.bucket
}

// Configure creates the media store client.
// Returns nil if no bucket is configured (media uploads will be disabled).
func (s *Storage) Configure(ctx context.Context) (*mediastore.GCS, error) {
	if s.bucket == "" {
		return nil, nil
	}

	store, err := mediastore.New(ctx, s.bucket)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create media store")
	}

	return store, nil
}
