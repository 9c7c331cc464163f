package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/memora-app/memora/pkg/domain/model"
	"github.com/memora-app/memora/pkg/service/embedding"
	"github.com/memora-app/memora/pkg/service/vectordb"
)

// Search answers a natural-language query against one container's index.
// When the vector database or the embedding provider is unreachable the
// query degrades to ErrSearchUnavailable instead of an internal failure: the
// rest of the system keeps working without search.
func (uc *UseCases) Search(ctx context.Context, containerID model.ContainerID, query string, topK int) ([]*model.SearchHit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, goerr.Wrap(ErrEmptyQuery, "search query is required")
	}
	if topK <= 0 {
		topK = defaultSearchTopK
	}

	if _, err := uc.repo.Container().Get(ctx, containerID); err != nil {
		return nil, goerr.Wrap(ErrContainerNotFound, "container not found", goerr.V(ContainerIDKey, containerID))
	}

	hits, err := uc.coordinator.Search(ctx, containerID, query, topK)
	if err != nil {
		if errors.Is(err, vectordb.ErrVectorDBUnavailable) || errors.Is(err, embedding.ErrProviderUnavailable) {
			return nil, goerr.Wrap(ErrSearchUnavailable, "search backend unreachable", goerr.V(ContainerIDKey, containerID))
		}
		return nil, goerr.Wrap(err, "search failed", goerr.V(ContainerIDKey, containerID))
	}

	return hits, nil
}
