package interfaces

import (
	"context"

	"github.com/memora-app/memora/pkg/domain/model"
)

// VectorIndex owns one vector collection per knowledge container. The vector
// database is an optional-availability dependency: every operation returns an
// explicit failure result instead of unwinding past the caller, and the rest
// of the system keeps working when it is down.
type VectorIndex interface {
	// EnsureCollection creates the container's collection if absent.
	// Idempotent. Returns false instead of an error so callers can treat an
	// unreachable vector database as a degraded, non-fatal condition.
	EnsureCollection(ctx context.Context, containerID model.ContainerID) bool

	// DeleteBySource removes all points belonging to the source
	DeleteBySource(ctx context.Context, containerID model.ContainerID, sourceID int64) error

	// Upsert writes fragments with their vectors. Insert-or-replace by point
	// ID, which makes the operation safely retryable.
	Upsert(ctx context.Context, containerID model.ContainerID, meta model.SourceMeta, fragments []model.Fragment, vectors [][]float32) error

	// Search returns the topK nearest points with payload and score
	Search(ctx context.Context, containerID model.ContainerID, queryVector []float32, topK int) ([]*model.SearchHit, error)

	// DropCollection deletes the container's collection entirely. Called only
	// from the container deletion cascade.
	DropCollection(ctx context.Context, containerID model.ContainerID) error
}
