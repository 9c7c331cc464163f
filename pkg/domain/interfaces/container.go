package interfaces

import (
	"context"

	"github.com/memora-app/memora/pkg/domain/model"
)

// ContainerRepository defines the interface for Container data persistence
type ContainerRepository interface {
	// Create creates a new container
	Create(ctx context.Context, container *model.Container) (*model.Container, error)

	// Get retrieves a container by ID
	Get(ctx context.Context, id model.ContainerID) (*model.Container, error)

	// List retrieves all containers
	List(ctx context.Context) ([]*model.Container, error)

	// Delete deletes a container by ID. Sources and transcripts owned by the
	// container are removed by the use case layer before this is called.
	Delete(ctx context.Context, id model.ContainerID) error
}
