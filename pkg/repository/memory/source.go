package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/memora-app/memora/pkg/domain/model"
	"github.com/memora-app/memora/pkg/domain/types"
)

type sourceRepository struct {
	mu      sync.RWMutex
	sources map[int64]*model.Source
	nextID  int64
}

func newSourceRepository() *sourceRepository {
	return &sourceRepository{
		sources: make(map[int64]*model.Source),
		nextID:  1,
	}
}

func copySource(s *model.Source) *model.Source {
	cp := *s
	return &cp
}

func (r *sourceRepository) Create(ctx context.Context, source *model.Source) (*model.Source, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := copySource(source)
	created.ID = r.nextID
	created.CreatedAt = now
	created.UpdatedAt = now
	r.nextID++

	r.sources[created.ID] = created
	return copySource(created), nil
}

func (r *sourceRepository) Get(ctx context.Context, id int64) (*model.Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	source, exists := r.sources[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "source not found", goerr.V("id", id))
	}

	return copySource(source), nil
}

func (r *sourceRepository) ListByContainer(ctx context.Context, containerID model.ContainerID) ([]*model.Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sources := make([]*model.Source, 0)
	for _, s := range r.sources {
		if s.ContainerID == containerID {
			sources = append(sources, copySource(s))
		}
	}
	// Newest first, matching the Firestore backend ordering
	sort.Slice(sources, func(i, j int) bool {
		return sources[i].CreatedAt.After(sources[j].CreatedAt)
	})

	return sources, nil
}

func (r *sourceRepository) ListActiveCaptures(ctx context.Context) ([]*model.Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sources := make([]*model.Source, 0)
	for _, s := range r.sources {
		if s.Kind != types.SourceKindMeeting || s.RecallBotID == "" {
			continue
		}
		if s.TranscriptionStatus.IsTerminal() {
			continue
		}
		sources = append(sources, copySource(s))
	}
	sort.Slice(sources, func(i, j int) bool {
		return sources[i].CreatedAt.Before(sources[j].CreatedAt)
	})

	return sources, nil
}

func (r *sourceRepository) Update(ctx context.Context, source *model.Source) (*model.Source, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.sources[source.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "source not found", goerr.V("id", source.ID))
	}

	updated := copySource(source)
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.sources[updated.ID] = updated
	return copySource(updated), nil
}

func (r *sourceRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sources[id]; !exists {
		return goerr.Wrap(ErrNotFound, "source not found", goerr.V("id", id))
	}

	delete(r.sources, id)
	return nil
}

func (r *sourceRepository) DeleteByContainer(ctx context.Context, containerID model.ContainerID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.sources {
		if s.ContainerID == containerID {
			delete(r.sources, id)
		}
	}

	return nil
}
