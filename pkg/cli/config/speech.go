package config

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/memora-app/memora/pkg/service/speech"
	"github.com/urfave/cli/v3"
)

// Speech holds CLI flags for the speech-to-text provider
type Speech struct {
	apiKey  string
	baseURL string
	model   string
	timeout time.Duration
}

// Flags returns CLI flags for speech-to-text configuration
func (s *Speech) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "speech-api-key",
			Usage:       "Speech-to-text provider API key",
			Sources:     cli.EnvVars("MEMORA_SPEECH_API_KEY"),
			Destination: &s.apiKey,
		},
		&cli.StringFlag{
			Name:        "speech-base-url",
			Usage:       "Speech-to-text provider base URL",
			Sources:     cli.EnvVars("MEMORA_SPEECH_BASE_URL"),
			Destination: &s.baseURL,
		},
		&cli.StringFlag{
			Name:        "speech-model",
			Usage:       "Speech-to-text model name",
			Sources:     cli.EnvVars("MEMORA_SPEECH_MODEL"),
			Destination: &s.model,
		},
		&cli.DurationFlag{
			Name:        "speech-timeout",
			Usage:       "Speech-to-text request timeout",
			Sources:     cli.EnvVars("MEMORA_SPEECH_TIMEOUT"),
			Destination: &s.timeout,
		},
	}
}

// IsConfigured reports whether an API key has been provided
func (s *Speech) IsConfigured() bool {
	return s.apiKey != ""
}

// Configure creates the speech-to-text client.
// Returns nil if no API key is configured (transcription will be disabled).
func (s *Speech) Configure() (*speech.Client, error) {
	if s.apiKey == "" {
		return nil, nil
	}

	client, err := speech.New(speech.Config{
		BaseURL: s.baseURL,
		APIKey:  s.apiKey,
		Model:   s.model,
		Timeout: s.timeout,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create speech-to-text client")
	}

	return client, nil
}
