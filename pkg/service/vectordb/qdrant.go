package vectordb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/memora-app/memora/pkg/domain/interfaces"
	"github.com/memora-app/memora/pkg/domain/model"
	"github.com/memora-app/memora/pkg/domain/types"
	"github.com/memora-app/memora/pkg/utils/logging"
	"github.com/memora-app/memora/pkg/utils/safe"
)

// ErrVectorDBUnavailable marks failures of the vector database. The database
// is an optional-availability dependency: callers degrade instead of failing
// their own operation.
var ErrVectorDBUnavailable = goerr.New("vector database unavailable")

const defaultTimeout = 15 * time.Second

// Client is a REST client to Qdrant managing one collection per knowledge
// container, cosine distance, fixed dimensionality.
type Client struct {
	baseURL    string
	apiKey     string
	dimension  int
	prefix     string
	httpClient *http.Client
}

var _ interfaces.VectorIndex = &Client{}

// Config holds Qdrant connection settings
type Config struct {
	BaseURL   string
	APIKey    string
	Dimension int
	Timeout   time.Duration
}

// New creates a Qdrant client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, goerr.New("qdrant base URL is required")
	}
	if cfg.Dimension <= 0 {
		return nil, goerr.New("invalid vector dimension", goerr.V("dimension", cfg.Dimension))
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		dimension:  cfg.Dimension,
		prefix:     "memora",
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) collectionName(containerID model.ContainerID) string {
	return c.prefix + "_" + string(containerID)
}

// EnsureCollection creates the container's collection if missing. Idempotent:
// an already-existing collection counts as success. Failures are logged and
// reported as false, never raised.
func (c *Client) EnsureCollection(ctx context.Context, containerID model.ContainerID) bool {
	body := map[string]any{
		"vectors": map[string]any{
			"size":     c.dimension,
			"distance": "Cosine",
		},
	}

	url := fmt.Sprintf("%s/collections/%s", c.baseURL, c.collectionName(containerID))
	if err := c.doJSON(ctx, http.MethodPut, url, body, nil, http.StatusConflict); err != nil {
		logging.From(ctx).Warn("failed to ensure vector collection",
			"container_id", containerID,
			"error", err.Error(),
		)
		return false
	}

	return true
}

// DeleteBySource removes every point that belongs to the source. Point IDs
// follow the sourceID*PartitionSize+position scheme, so the source's points
// are identifiable by the source_id payload filter alone.
func (c *Client) DeleteBySource(ctx context.Context, containerID model.ContainerID, sourceID int64) error {
	body := map[string]any{
		"filter": map[string]any{
			"must": []map[string]any{
				{"key": "source_id", "match": map[string]any{"value": sourceID}},
			},
		},
	}

	url := fmt.Sprintf("%s/collections/%s/points/delete?wait=true", c.baseURL, c.collectionName(containerID))
	if err := c.doJSON(ctx, http.MethodPost, url, body, nil); err != nil {
		return goerr.Wrap(ErrVectorDBUnavailable, "failed to delete source points",
			goerr.V("container_id", containerID),
			goerr.V("source_id", sourceID),
		)
	}

	return nil
}

// Upsert writes fragments with their vectors. Insert-or-replace by point ID.
func (c *Client) Upsert(ctx context.Context, containerID model.ContainerID, meta model.SourceMeta, fragments []model.Fragment, vectors [][]float32) error {
	if len(fragments) != len(vectors) {
		return goerr.New("fragments and vectors length mismatch",
			goerr.V("fragments", len(fragments)),
			goerr.V("vectors", len(vectors)),
		)
	}
	if len(fragments) == 0 {
		return nil
	}

	points := make([]map[string]any, len(fragments))
	for i, frag := range fragments {
		points[i] = map[string]any{
			"id":     frag.PointID(),
			"vector": vectors[i],
			"payload": map[string]any{
				"source_id":    frag.SourceID,
				"container_id": string(containerID),
				"kind":         meta.Kind.String(),
				"name":         meta.Name,
				"position":     frag.Position,
				"text":         frag.Text,
			},
		}
	}

	url := fmt.Sprintf("%s/collections/%s/points?wait=true", c.baseURL, c.collectionName(containerID))
	if err := c.doJSON(ctx, http.MethodPut, url, map[string]any{"points": points}, nil); err != nil {
		return goerr.Wrap(ErrVectorDBUnavailable, "failed to upsert points",
			goerr.V("container_id", containerID),
			goerr.V("points", len(points)),
		)
	}

	return nil
}

type searchResponse struct {
	Result []struct {
		ID      int64          `json:"id"`
		Score   float64        `json:"score"`
		Payload map[string]any `json:"payload"`
	} `json:"result"`
}

// Search returns the topK nearest points with payload and relevance score.
func (c *Client) Search(ctx context.Context, containerID model.ContainerID, queryVector []float32, topK int) ([]*model.SearchHit, error) {
	if topK <= 0 {
		topK = 5
	}

	body := map[string]any{
		"vector":       queryVector,
		"limit":        topK,
		"with_payload": true,
	}

	var resp searchResponse
	url := fmt.Sprintf("%s/collections/%s/points/search", c.baseURL, c.collectionName(containerID))
	if err := c.doJSON(ctx, http.MethodPost, url, body, &resp); err != nil {
		return nil, goerr.Wrap(ErrVectorDBUnavailable, "search failed",
			goerr.V("container_id", containerID),
		)
	}

	hits := make([]*model.SearchHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hit := &model.SearchHit{Score: r.Score}
		if v, ok := r.Payload["source_id"].(float64); ok {
			hit.SourceID = int64(v)
		}
		if v, ok := r.Payload["name"].(string); ok {
			hit.SourceName = v
		}
		if v, ok := r.Payload["kind"].(string); ok {
			hit.Kind = types.SourceKind(v)
		}
		if v, ok := r.Payload["position"].(float64); ok {
			hit.Position = int(v)
		}
		if v, ok := r.Payload["text"].(string); ok {
			hit.Text = v
		}
		hits = append(hits, hit)
	}

	return hits, nil
}

// DropCollection removes the container's collection. Used only by the
// container deletion cascade; missing collections are not an error.
func (c *Client) DropCollection(ctx context.Context, containerID model.ContainerID) error {
	url := fmt.Sprintf("%s/collections/%s", c.baseURL, c.collectionName(containerID))
	if err := c.doJSON(ctx, http.MethodDelete, url, nil, nil, http.StatusNotFound); err != nil {
		return goerr.Wrap(ErrVectorDBUnavailable, "failed to drop collection",
			goerr.V("container_id", containerID),
		)
	}

	return nil
}

// doJSON issues one request with a JSON body and optionally decodes a JSON
// response. Status codes listed in accept are treated as success alongside
// the 2xx range.
func (c *Client) doJSON(ctx context.Context, method, url string, body, out any, accept ...int) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return goerr.Wrap(err, "failed to marshal request body")
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return goerr.Wrap(err, "failed to create request", goerr.V("url", url))
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "request failed", goerr.V("method", method), goerr.V("url", url))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		accepted := false
		for _, code := range accept {
			if resp.StatusCode == code {
				accepted = true
				break
			}
		}
		if !accepted {
			return goerr.New("unexpected response status",
				goerr.V("method", method),
				goerr.V("url", url),
				goerr.V("status", resp.Status),
			)
		}
		return nil
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return goerr.Wrap(err, "failed to decode response", goerr.V("url", url))
		}
	}

	return nil
}
