package interfaces

import (
	"context"

	"github.com/memora-app/memora/pkg/domain/model"
)

// SourceRepository defines the interface for Source data persistence.
// Source IDs are allocated by the repository from a monotonic counter.
type SourceRepository interface {
	// Create creates a new source and assigns its ID
	Create(ctx context.Context, source *model.Source) (*model.Source, error)

	// Get retrieves a source by ID
	Get(ctx context.Context, id int64) (*model.Source, error)

	// ListByContainer retrieves all sources of a container
	ListByContainer(ctx context.Context, containerID model.ContainerID) ([]*model.Source, error)

	// ListActiveCaptures retrieves meeting sources whose capture bot has not
	// reached a terminal transcription state yet. Used by the capture worker.
	ListActiveCaptures(ctx context.Context) ([]*model.Source, error)

	// Update updates an existing source
	Update(ctx context.Context, source *model.Source) (*model.Source, error)

	// Delete deletes a source by ID
	Delete(ctx context.Context, id int64) error

	// DeleteByContainer deletes all sources of a container
	DeleteByContainer(ctx context.Context, containerID model.ContainerID) error
}
