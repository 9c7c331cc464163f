package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/memora-app/memora/pkg/domain/model"
	"github.com/memora-app/memora/pkg/utils/logging"
)

// CreateContainer creates a new knowledge container.
func (uc *UseCases) CreateContainer(ctx context.Context, name string) (*model.Container, error) {
	if name == "" {
		return nil, goerr.Wrap(ErrEmptyName, "container name is required")
	}

	created, err := uc.repo.Container().Create(ctx, &model.Container{
		Name: name,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create container")
	}

	return created, nil
}

// GetContainer retrieves a container by ID.
func (uc *UseCases) GetContainer(ctx context.Context, id model.ContainerID) (*model.Container, error) {
	container, err := uc.repo.Container().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrContainerNotFound, "container not found", goerr.V(ContainerIDKey, id))
	}
	return container, nil
}

// ListContainers retrieves all containers.
func (uc *UseCases) ListContainers(ctx context.Context) ([]*model.Container, error) {
	containers, err := uc.repo.Container().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list containers")
	}
	return containers, nil
}

// DeleteContainer removes a container and everything it exclusively owns:
// its sources, their transcripts, and the container's vector collection.
func (uc *UseCases) DeleteContainer(ctx context.Context, id model.ContainerID) error {
	if _, err := uc.repo.Container().Get(ctx, id); err != nil {
		return goerr.Wrap(ErrContainerNotFound, "container not found", goerr.V(ContainerIDKey, id))
	}

	sources, err := uc.repo.Source().ListByContainer(ctx, id)
	if err != nil {
		return goerr.Wrap(err, "failed to list container sources", goerr.V(ContainerIDKey, id))
	}

	for _, s := range sources {
		if err := uc.repo.Transcript().Delete(ctx, s.ID); err != nil {
			// Most sources never had a transcript
			logging.From(ctx).Debug("no transcript to delete", "source_id", s.ID)
		}
	}

	if err := uc.repo.Source().DeleteByContainer(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete container sources", goerr.V(ContainerIDKey, id))
	}

	// The collection drop is soft: an unreachable vector database must not
	// block the deletion of the durable records.
	if err := uc.coordinator.DropCollection(ctx, id); err != nil {
		logging.From(ctx).Warn("failed to drop vector collection",
			"container_id", id,
			"error", err,
		)
	}

	if err := uc.repo.Container().Delete(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete container", goerr.V(ContainerIDKey, id))
	}

	return nil
}
