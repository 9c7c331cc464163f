package interfaces

import "context"

// EmbeddingClient turns text into fixed-dimension vectors. The dimension is a
// collection-wide invariant fixed at construction time and must never change
// for a live collection.
type EmbeddingClient interface {
	// Embed generates a vector for a single text
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates vectors for multiple texts. The result is
	// order-preserving and has the same length as the input.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the configured vector dimensionality
	Dimension() int
}
