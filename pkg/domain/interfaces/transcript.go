package interfaces

import (
	"context"

	"github.com/memora-app/memora/pkg/domain/model"
)

// TranscriptRepository defines the interface for Transcript data persistence.
// There is at most one transcript per source; Put replaces any previous one.
type TranscriptRepository interface {
	// Put upserts the transcript of a source
	Put(ctx context.Context, transcript *model.Transcript) (*model.Transcript, error)

	// Get retrieves the transcript of a source
	Get(ctx context.Context, sourceID int64) (*model.Transcript, error)

	// Delete deletes the transcript of a source
	Delete(ctx context.Context, sourceID int64) error
}
