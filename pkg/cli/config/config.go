package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/memora-app/memora/pkg/domain/model"
	"github.com/memora-app/memora/pkg/service/chunk"
	"github.com/pelletier/go-toml/v2"
)

// AppConfig represents ingestion tuning loaded from a TOML file. All values
// have working defaults, so the file itself is optional.
type AppConfig struct {
	Chunking  Chunking  `toml:"chunking"`
	Embedding Embedding `toml:"embedding"`
	Capture   Capture   `toml:"capture"`
	Dispatch  Dispatch  `toml:"dispatch"`
}

// Chunking controls how raw content is split into fragments
type Chunking struct {
	TargetSize int `toml:"target_size"`
	Overlap    int `toml:"overlap"`
}

// Validate checks if the Chunking section is valid
func (c *Chunking) Validate() error {
	if c.TargetSize < 0 || c.Overlap < 0 {
		return goerr.New("chunking sizes must not be negative",
			goerr.V("target_size", c.TargetSize), goerr.V("overlap", c.Overlap))
	}
	if c.TargetSize > 0 && c.Overlap >= c.TargetSize {
		return goerr.New("chunking overlap must be smaller than target size",
			goerr.V("target_size", c.TargetSize), goerr.V("overlap", c.Overlap))
	}
	return nil
}

// Embedding controls the embedding gateway
type Embedding struct {
	Dimension   int `toml:"dimension"`
	BatchSize   int `toml:"batch_size"`
	Concurrency int `toml:"concurrency"`
}

// Validate checks if the Embedding section is valid
func (e *Embedding) Validate() error {
	if e.Dimension < 0 {
		return goerr.New("embedding dimension must not be negative", goerr.V("dimension", e.Dimension))
	}
	if e.BatchSize < 0 || e.Concurrency < 0 {
		return goerr.New("embedding batch size and concurrency must not be negative",
			goerr.V("batch_size", e.BatchSize), goerr.V("concurrency", e.Concurrency))
	}
	return nil
}

// Capture controls the meeting capture worker
type Capture struct {
	BotName             string `toml:"bot_name"`
	PollIntervalSeconds int    `toml:"poll_interval_seconds"`
	MaxWaitMinutes      int    `toml:"max_wait_minutes"`
}

// Validate checks if the Capture section is valid
func (c *Capture) Validate() error {
	if c.PollIntervalSeconds < 0 || c.MaxWaitMinutes < 0 {
		return goerr.New("capture intervals must not be negative",
			goerr.V("poll_interval_seconds", c.PollIntervalSeconds),
			goerr.V("max_wait_minutes", c.MaxWaitMinutes))
	}
	return nil
}

// Dispatch controls the background task pool
type Dispatch struct {
	Workers int `toml:"workers"`
}

// Validate checks if the Dispatch section is valid
func (d *Dispatch) Validate() error {
	if d.Workers < 0 {
		return goerr.New("dispatch workers must not be negative", goerr.V("workers", d.Workers))
	}
	return nil
}

// DefaultAppConfig returns the configuration used when no TOML file is given
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Chunking: Chunking{
			TargetSize: chunk.DefaultTargetSize,
			Overlap:    chunk.DefaultOverlap,
		},
		Embedding: Embedding{
			Dimension:   model.DefaultEmbeddingDimension,
			BatchSize:   64,
			Concurrency: 4,
		},
		Capture: Capture{
			BotName:             "Memora Notetaker",
			PollIntervalSeconds: 30,
			MaxWaitMinutes:      240,
		},
		Dispatch: Dispatch{
			Workers: 8,
		},
	}
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	if err := a.Chunking.Validate(); err != nil {
		return goerr.Wrap(err, "invalid chunking config")
	}
	if err := a.Embedding.Validate(); err != nil {
		return goerr.Wrap(err, "invalid embedding config")
	}
	if err := a.Capture.Validate(); err != nil {
		return goerr.Wrap(err, "invalid capture config")
	}
	if err := a.Dispatch.Validate(); err != nil {
		return goerr.Wrap(err, "invalid dispatch config")
	}
	return nil
}

// LoadAppConfiguration loads the application configuration from a TOML file.
// Values omitted from the file keep their defaults.
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(ErrConfigNotFound, "failed to read config file", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	config := DefaultAppConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V(ConfigPathKey, path))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return config, nil
}
