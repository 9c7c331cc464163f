package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/memora-app/memora/pkg/cli/config"
	"github.com/memora-app/memora/pkg/domain/model"
)

func TestLoadAppConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{
			name: "valid configuration with all sections",
			content: `
[chunking]
target_size = 800
overlap = 120

[embedding]
dimension = 1536
batch_size = 32
concurrency = 2

[capture]
bot_name = "Team Notetaker"
poll_interval_seconds = 15
max_wait_minutes = 90

[dispatch]
workers = 4
`,
		},
		{
			name: "partial configuration keeps defaults",
			content: `
[chunking]
target_size = 1000
`,
		},
		{
			name:    "empty file keeps defaults",
			content: "",
		},
		{
			name: "overlap not smaller than target size",
			content: `
[chunking]
target_size = 100
overlap = 100
`,
			wantErr: true,
		},
		{
			name: "negative dimension",
			content: `
[embedding]
dimension = -1
`,
			wantErr: true,
		},
		{
			name: "negative poll interval",
			content: `
[capture]
poll_interval_seconds = -5
`,
			wantErr: true,
		},
		{
			name:    "malformed TOML",
			content: `[chunking`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, "memora.toml")
			err := os.WriteFile(configPath, []byte(tt.content), 0644)
			gt.NoError(t, err).Required()

			cfg, err := config.LoadAppConfiguration(configPath)
			if tt.wantErr {
				gt.Value(t, err).NotNil()
				return
			}
			gt.NoError(t, err).Required()
			gt.Value(t, cfg).NotNil()
		})
	}
}

func TestLoadAppConfiguration_Values(t *testing.T) {
	content := `
[chunking]
target_size = 800
overlap = 120

[embedding]
dimension = 1536
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "memora.toml")
	err := os.WriteFile(configPath, []byte(content), 0644)
	gt.NoError(t, err).Required()

	cfg, err := config.LoadAppConfiguration(configPath)
	gt.NoError(t, err).Required()

	gt.Value(t, cfg.Chunking.TargetSize).Equal(800)
	gt.Value(t, cfg.Chunking.Overlap).Equal(120)
	gt.Value(t, cfg.Embedding.Dimension).Equal(1536)

	// Sections absent from the file keep their defaults
	defaults := config.DefaultAppConfig()
	gt.Value(t, cfg.Capture).Equal(defaults.Capture)
	gt.Value(t, cfg.Dispatch).Equal(defaults.Dispatch)
}

func TestLoadAppConfiguration_MissingFile(t *testing.T) {
	tmpDir := t.TempDir()
	_, err := config.LoadAppConfiguration(filepath.Join(tmpDir, "no-such.toml"))
	gt.Error(t, err).Is(config.ErrConfigNotFound)
}

func TestDefaultAppConfig(t *testing.T) {
	cfg := config.DefaultAppConfig()
	gt.NoError(t, cfg.Validate()).Required()
	gt.Value(t, cfg.Embedding.Dimension).Equal(model.DefaultEmbeddingDimension)
}
