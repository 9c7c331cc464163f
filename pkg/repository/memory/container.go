package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/memora-app/memora/pkg/domain/model"
)

type containerRepository struct {
	mu         sync.RWMutex
	containers map[model.ContainerID]*model.Container
}

func newContainerRepository() *containerRepository {
	return &containerRepository{
		containers: make(map[model.ContainerID]*model.Container),
	}
}

func copyContainer(c *model.Container) *model.Container {
	cp := *c
	return &cp
}

func (r *containerRepository) Create(ctx context.Context, container *model.Container) (*model.Container, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := copyContainer(container)
	if created.ID == "" {
		created.ID = model.NewContainerID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	r.containers[created.ID] = created
	return copyContainer(created), nil
}

func (r *containerRepository) Get(ctx context.Context, id model.ContainerID) (*model.Container, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	container, exists := r.containers[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "container not found", goerr.V("id", id))
	}

	return copyContainer(container), nil
}

func (r *containerRepository) List(ctx context.Context) ([]*model.Container, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	containers := make([]*model.Container, 0, len(r.containers))
	for _, c := range r.containers {
		containers = append(containers, copyContainer(c))
	}

	return containers, nil
}

func (r *containerRepository) Delete(ctx context.Context, id model.ContainerID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.containers[id]; !exists {
		return goerr.Wrap(ErrNotFound, "container not found", goerr.V("id", id))
	}

	delete(r.containers, id)
	return nil
}
