package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/memora-app/memora/pkg/service/vectordb"
	"github.com/urfave/cli/v3"
)

// Qdrant holds CLI flags for the vector database connection
type Qdrant struct {
	baseURL string
	apiKey  string
	timeout time.Duration
}

// Flags returns CLI flags for Qdrant configuration
func (q *Qdrant) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "qdrant-url",
			Usage:       "Qdrant base URL (required)",
			Sources:     cli.EnvVars("MEMORA_QDRANT_URL"),
			Destination: &q.baseURL,
		},
		&cli.StringFlag{
			Name:        "qdrant-api-key",
			Usage:       "Qdrant API key",
			Sources:     cli.EnvVars("MEMORA_QDRANT_API_KEY"),
			Destination: &q.apiKey,
		},
		&cli.DurationFlag{
			Name:        "qdrant-timeout",
			Usage:       "Qdrant request timeout",
			Value:       30 * time.Second,
			Sources:     cli.EnvVars("MEMORA_QDRANT_TIMEOUT"),
			Destination: &q.timeout,
		},
	}
}

// LogAttrs returns log attributes for the Qdrant configuration
func (q *Qdrant) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("base_url", q.baseURL),
		slog.Bool("api_key_set", q.apiKey != ""),
	}
}

// Configure creates a vector database client with the given vector dimension
func (q *Qdrant) Configure(dimension int) (*vectordb.Client, error) {
	if q.baseURL == "" {
		return nil, goerr.New("qdrant-url is required")
	}

	client, err := vectordb.New(vectordb.Config{
		BaseURL:   q.baseURL,
		APIKey:    q.apiKey,
		Dimension: dimension,
		Timeout:   q.timeout,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create qdrant client")
	}

	return client, nil
}
