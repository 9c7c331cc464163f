package config

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/memora-app/memora/pkg/service/recall"
	"github.com/urfave/cli/v3"
)

// Recall holds CLI flags for the meeting capture bot provider
type Recall struct {
	apiKey  string
	baseURL string
	timeout time.Duration
}

// Flags returns CLI flags for capture bot configuration
func (r *Recall) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "recall-api-key",
			Usage:       "Recall API key for meeting capture bots",
			Sources:     cli.EnvVars("MEMORA_RECALL_API_KEY"),
			Destination: &r.apiKey,
		},
		&cli.StringFlag{
			Name:        "recall-base-url",
			Usage:       "Recall API base URL",
			Value:       "https://us-east-1.recall.ai/api/v1",
			Sources:     cli.EnvVars("MEMORA_RECALL_BASE_URL"),
			Destination: &r.baseURL,
		},
		&cli.DurationFlag{
			Name:        "recall-timeout",
			Usage:       "Recall API request timeout",
			Sources:     cli.EnvVars("MEMORA_RECALL_TIMEOUT"),
			Destination: &r.timeout,
		},
	}
}

// IsConfigured reports whether an API key has been provided
func (r *Recall) IsConfigured() bool {
	return r.apiKey != ""
}

// Configure creates the capture bot client.
// Returns nil if no API key is configured (meeting capture will be disabled).
func (r *Recall) Configure() (*recall.Client, error) {
	if r.apiKey == "" {
		return nil, nil
	}

	client, err := recall.New(recall.Config{
		BaseURL: r.baseURL,
		APIKey:  r.apiKey,
		Timeout: r.timeout,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create recall client")
	}

	return client, nil
}
