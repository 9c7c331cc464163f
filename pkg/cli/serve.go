package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/memora-app/memora/pkg/cli/config"
	httpctrl "github.com/memora-app/memora/pkg/controller/http"
	"github.com/memora-app/memora/pkg/service/chunk"
	"github.com/memora-app/memora/pkg/service/embedding"
	"github.com/memora-app/memora/pkg/service/index"
	"github.com/memora-app/memora/pkg/service/worker"
	"github.com/memora-app/memora/pkg/usecase"
	"github.com/memora-app/memora/pkg/utils/async"
	"github.com/memora-app/memora/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var configPath string
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var qdrantCfg config.Qdrant
	var storageCfg config.Storage
	var speechCfg config.Speech
	var recallCfg config.Recall
	var sentryCfg config.Sentry

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("MEMORA_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to TOML file with ingestion tuning (optional)",
			Sources:     cli.EnvVars("MEMORA_CONFIG"),
			Destination: &configPath,
		},
	}

	// Add shared config flags
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, qdrantCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)
	flags = append(flags, speechCfg.Flags()...)
	flags = append(flags, recallCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			// Load ingestion tuning
			appCfg := config.DefaultAppConfig()
			if configPath != "" {
				loaded, err := config.LoadAppConfiguration(configPath)
				if err != nil {
					return goerr.Wrap(err, "failed to load app configuration")
				}
				appCfg = loaded
			}

			// Initialize error reporting
			sentryFlush, err := sentryCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure sentry")
			}
			defer sentryFlush()

			// Initialize repository based on backend type
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			// Embedding provider and vector index are mandatory: without
			// them neither indexing nor search can run.
			model, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure gemini client")
			}
			if model == nil {
				return goerr.New("gemini-project is required for the embedding provider")
			}

			embedder, err := embedding.New(model, appCfg.Embedding.Dimension,
				embedding.WithBatchSize(appCfg.Embedding.BatchSize),
				embedding.WithConcurrency(appCfg.Embedding.Concurrency),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create embedding gateway")
			}

			vectors, err := qdrantCfg.Configure(appCfg.Embedding.Dimension)
			if err != nil {
				return goerr.Wrap(err, "failed to configure vector database")
			}

			splitter := chunk.New(
				chunk.WithTargetSize(appCfg.Chunking.TargetSize),
				chunk.WithOverlap(appCfg.Chunking.Overlap),
			)

			coordinator, err := index.New(splitter, embedder, vectors)
			if err != nil {
				return goerr.Wrap(err, "failed to create indexing coordinator")
			}

			dispatcher, err := async.NewDispatcher(appCfg.Dispatch.Workers)
			if err != nil {
				return goerr.Wrap(err, "failed to create dispatcher")
			}
			defer dispatcher.Release()

			// Optional providers
			ucOpts := []usecase.Option{
				usecase.WithBotName(appCfg.Capture.BotName),
			}

			stt, err := speechCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure speech-to-text client")
			}
			if stt != nil {
				ucOpts = append(ucOpts, usecase.WithSpeechToText(stt))
				logging.Default().Info("Speech-to-text enabled")
			} else {
				logging.Default().Info("Speech API key not configured, transcription features will be limited")
			}

			bots, err := recallCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure capture bot client")
			}
			if bots != nil {
				ucOpts = append(ucOpts, usecase.WithBotProvider(bots))
				logging.Default().Info("Meeting capture bots enabled")
			} else {
				logging.Default().Info("Recall API key not configured, meeting capture will be limited")
			}

			media, err := storageCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure media store")
			}
			if media != nil {
				ucOpts = append(ucOpts, usecase.WithMediaStorage(media))
				logging.Default().Info("Media storage enabled", "bucket", storageCfg.Bucket())
			} else {
				logging.Default().Info("Storage bucket not configured, media uploads will be limited")
			}

			uc := usecase.New(repo, coordinator, dispatcher, ucOpts...)

			// Start the capture worker only when bots can actually be
			// observed
			var captureWorker *worker.CaptureWorker
			if bots != nil && stt != nil {
				captureWorker = worker.NewCaptureWorker(uc,
					time.Duration(appCfg.Capture.PollIntervalSeconds)*time.Second,
					time.Duration(appCfg.Capture.MaxWaitMinutes)*time.Minute,
				)
				if err := captureWorker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start capture worker")
				}
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			// Start server in goroutine
			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			// Wait for shutdown signal or server error
			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				// Stop the capture worker first so it no longer schedules
				// new transcriptions
				if captureWorker != nil {
					captureWorker.Stop()
				}

				// Create shutdown context with timeout
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				// Attempt graceful shutdown
				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
