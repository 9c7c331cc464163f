package index

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/memora-app/memora/pkg/domain/interfaces"
	"github.com/memora-app/memora/pkg/domain/model"
	"github.com/memora-app/memora/pkg/service/chunk"
	"github.com/memora-app/memora/pkg/utils/logging"
)

// Coordinator orchestrates one indexing run for a single source: ensure the
// container's collection, evict stale fragments, chunk, embed, upsert. Runs
// are linear, restartable from scratch, and idempotent: re-indexing the same
// content converges to the same set of points.
type Coordinator struct {
	splitter *chunk.Splitter
	embedder interfaces.EmbeddingClient
	vectors  interfaces.VectorIndex
}

// Result is the outcome of one indexing run. Err is diagnostic only: the run
// is dispatched fire-and-forget, so failures are reported through the status
// rather than raised to the triggering operation.
type Result struct {
	Success       bool
	FragmentCount int
	Err           error
}

// New creates a Coordinator.
func New(splitter *chunk.Splitter, embedder interfaces.EmbeddingClient, vectors interfaces.VectorIndex) (*Coordinator, error) {
	if splitter == nil {
		return nil, goerr.New("splitter is required")
	}
	if embedder == nil {
		return nil, goerr.New("embedding client is required")
	}
	if vectors == nil {
		return nil, goerr.New("vector index is required")
	}

	return &Coordinator{
		splitter: splitter,
		embedder: embedder,
		vectors:  vectors,
	}, nil
}

// Index runs the full pipeline for one source. Nothing to index is success
// with a zero count, not an error. Any external failure produces
// Success=false with the cause in Err; nothing escapes as a panic or an
// unhandled error.
func (c *Coordinator) Index(ctx context.Context, containerID model.ContainerID, sourceID int64, content string, meta model.SourceMeta) Result {
	logger := logging.From(ctx)

	if strings.TrimSpace(content) == "" {
		return Result{Success: true, FragmentCount: 0}
	}

	if !c.vectors.EnsureCollection(ctx, containerID) {
		return Result{Err: goerr.New("failed to ensure vector collection",
			goerr.V("container_id", containerID),
			goerr.V("source_id", sourceID),
		)}
	}

	// Evict any previously indexed fragments so edited content never leaves
	// orphans behind.
	if err := c.vectors.DeleteBySource(ctx, containerID, sourceID); err != nil {
		return Result{Err: goerr.Wrap(err, "failed to remove stale fragments",
			goerr.V("source_id", sourceID),
		)}
	}

	fragments := c.splitter.Split(content)
	if len(fragments) == 0 {
		return Result{Success: true, FragmentCount: 0}
	}
	if err := model.ValidateFragmentCount(sourceID, len(fragments)); err != nil {
		return Result{Err: err}
	}

	texts := make([]string, len(fragments))
	for i := range fragments {
		fragments[i].SourceID = sourceID
		texts[i] = fragments[i].Text
	}

	vectors, err := c.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return Result{Err: goerr.Wrap(err, "failed to embed fragments",
			goerr.V("source_id", sourceID),
			goerr.V("fragments", len(fragments)),
		)}
	}

	if err := c.vectors.Upsert(ctx, containerID, meta, fragments, vectors); err != nil {
		return Result{Err: goerr.Wrap(err, "failed to upsert fragments",
			goerr.V("source_id", sourceID),
		)}
	}

	logger.Info("indexed source",
		"container_id", containerID,
		"source_id", sourceID,
		"fragments", len(fragments),
	)

	return Result{Success: true, FragmentCount: len(fragments)}
}

// EvictSource removes every indexed fragment of a source. Used when a source
// is deleted outside of a re-index run.
func (c *Coordinator) EvictSource(ctx context.Context, containerID model.ContainerID, sourceID int64) error {
	if err := c.vectors.DeleteBySource(ctx, containerID, sourceID); err != nil {
		return goerr.Wrap(err, "failed to evict source fragments",
			goerr.V("container_id", containerID),
			goerr.V("source_id", sourceID),
		)
	}
	return nil
}

// DropCollection deletes a container's entire collection. Part of the
// container deletion cascade.
func (c *Coordinator) DropCollection(ctx context.Context, containerID model.ContainerID) error {
	if err := c.vectors.DropCollection(ctx, containerID); err != nil {
		return goerr.Wrap(err, "failed to drop collection", goerr.V("container_id", containerID))
	}
	return nil
}

// Search answers a text query against a container's collection, returning
// ranked fragments with source attribution.
func (c *Coordinator) Search(ctx context.Context, containerID model.ContainerID, query string, topK int) ([]*model.SearchHit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, goerr.New("query must not be empty")
	}

	queryVector, err := c.embedder.Embed(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query")
	}

	hits, err := c.vectors.Search(ctx, containerID, queryVector, topK)
	if err != nil {
		return nil, goerr.Wrap(err, "vector search failed", goerr.V("container_id", containerID))
	}

	return hits, nil
}
