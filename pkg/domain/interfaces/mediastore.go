package interfaces

import (
	"context"
	"io"
	"time"
)

// MediaStorage stores uploaded media and mints provider-readable URLs for it.
type MediaStorage interface {
	// Upload stores the media under the given object name
	Upload(ctx context.Context, objectName string, r io.Reader, contentType string) error

	// SignedURL returns a time-limited readable URL for the stored object
	SignedURL(ctx context.Context, objectName string, ttl time.Duration) (string, error)
}
