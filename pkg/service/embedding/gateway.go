package embedding

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/memora-app/memora/pkg/domain/interfaces"
	"golang.org/x/sync/errgroup"
)

// ErrProviderUnavailable marks failures of the embedding provider. Callers
// treat it as non-fatal: log, record a degraded status, and keep serving.
var ErrProviderUnavailable = goerr.New("embedding provider unavailable")

// Model is the subset of gollem.LLMClient the gateway needs.
type Model interface {
	GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error)
}

// Gateway turns text into fixed-dimension vectors via an LLM provider. The
// dimension is fixed at construction and is a collection-wide invariant.
type Gateway struct {
	model       Model
	dimension   int
	batchSize   int
	concurrency int
}

var _ interfaces.EmbeddingClient = &Gateway{}

// Option is a functional option for Gateway configuration
type Option func(*Gateway)

// WithBatchSize limits how many texts go into one provider call
func WithBatchSize(size int) Option {
	return func(g *Gateway) {
		if size > 0 {
			g.batchSize = size
		}
	}
}

// WithConcurrency bounds how many provider calls run in parallel for one batch
func WithConcurrency(n int) Option {
	return func(g *Gateway) {
		if n > 0 {
			g.concurrency = n
		}
	}
}

// New creates a Gateway over the given embedding model.
func New(model Model, dimension int, opts ...Option) (*Gateway, error) {
	if model == nil {
		return nil, goerr.New("embedding model is required")
	}
	if dimension <= 0 {
		return nil, goerr.New("invalid embedding dimension", goerr.V("dimension", dimension))
	}

	g := &Gateway{
		model:       model,
		dimension:   dimension,
		batchSize:   64,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// Dimension returns the configured vector dimensionality
func (g *Gateway) Dimension() int {
	return g.dimension
}

// Embed generates a vector for a single text
func (g *Gateway) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := g.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates vectors for multiple texts, order-preserving. Large
// inputs are split into provider-sized batches that run with bounded
// concurrency; a failure in any batch fails the whole call with
// ErrProviderUnavailable.
func (g *Gateway) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, len(texts))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency)

	for offset := 0; offset < len(texts); offset += g.batchSize {
		end := offset + g.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		eg.Go(func() error {
			embedded, err := g.model.GenerateEmbedding(egCtx, g.dimension, texts[offset:end])
			if err != nil {
				return goerr.Wrap(ErrProviderUnavailable, err.Error(),
					goerr.V("batch_offset", offset),
					goerr.V("batch_size", end-offset),
				)
			}
			if len(embedded) != end-offset {
				return goerr.Wrap(ErrProviderUnavailable, "provider returned wrong number of vectors",
					goerr.V("want", end-offset),
					goerr.V("got", len(embedded)),
				)
			}

			for i, vec := range embedded {
				if len(vec) != g.dimension {
					return goerr.Wrap(ErrProviderUnavailable, "provider returned wrong dimension",
						goerr.V("want", g.dimension),
						goerr.V("got", len(vec)),
					)
				}
				converted := make([]float32, len(vec))
				for j, v := range vec {
					converted[j] = float32(v)
				}
				vectors[offset+i] = converted
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return vectors, nil
}
