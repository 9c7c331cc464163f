package mediastore

import (
	"context"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/memora-app/memora/pkg/domain/interfaces"
	"google.golang.org/api/option"
)

// GCS stores uploaded media objects in a Cloud Storage bucket and mints
// signed read URLs so downstream providers can fetch them without
// credentials.
type GCS struct {
	client *storage.Client
	bucket string
}

var _ interfaces.MediaStorage = &GCS{}

// New creates a Cloud Storage backed media store.
func New(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCS, error) {
	if bucket == "" {
		return nil, goerr.New("bucket name is required")
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &GCS{
		client: client,
		bucket: bucket,
	}, nil
}

// Upload writes the reader's content to the bucket under objectName.
func (s *GCS) Upload(ctx context.Context, objectName string, r io.Reader, contentType string) error {
	if objectName == "" {
		return goerr.New("object name is required")
	}

	w := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write object",
			goerr.V("bucket", s.bucket),
			goerr.V("object", objectName),
		)
	}

	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize object",
			goerr.V("bucket", s.bucket),
			goerr.V("object", objectName),
		)
	}

	return nil
}

// SignedURL returns a V4 signed GET URL valid for ttl.
func (s *GCS) SignedURL(_ context.Context, objectName string, ttl time.Duration) (string, error) {
	if objectName == "" {
		return "", goerr.New("object name is required")
	}

	url, err := s.client.Bucket(s.bucket).SignedURL(objectName, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(ttl),
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to sign object URL",
			goerr.V("bucket", s.bucket),
			goerr.V("object", objectName),
		)
	}

	return url, nil
}

// Close releases the underlying storage client.
func (s *GCS) Close() error {
	return s.client.Close()
}
