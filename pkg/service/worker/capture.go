package worker

import (
	"context"
	"time"

	"github.com/memora-app/memora/pkg/domain/model"
	"github.com/memora-app/memora/pkg/domain/types"
	"github.com/memora-app/memora/pkg/utils/logging"
)

// CaptureUseCase is the slice of application operations the capture worker
// drives.
type CaptureUseCase interface {
	ListActiveCaptures(ctx context.Context) ([]*model.Source, error)
	CaptureStatus(ctx context.Context, sourceID int64) (types.BotStatus, error)
	Retranscribe(ctx context.Context, sourceID int64) error
	StopCapture(ctx context.Context, sourceID int64) error
	FailCapture(ctx context.Context, sourceID int64, reason string) error
}

// CaptureWorker polls in-flight meeting captures and advances them: once a
// bot's recording becomes available the source is handed to the transcription
// pipeline, a failed bot fails the source, and a capture that exceeds the
// bounded wait is stopped and failed with a user-facing timeout.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - For future horizontal scaling, implement distributed locking or leader election
type CaptureWorker struct {
	uc       CaptureUseCase
	interval time.Duration
	maxWait  time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewCaptureWorker creates a worker polling every interval and failing
// captures still not recorded after maxWait.
func NewCaptureWorker(uc CaptureUseCase, interval, maxWait time.Duration) *CaptureWorker {
	return &CaptureWorker{
		uc:       uc,
		interval: interval,
		maxWait:  maxWait,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the polling loop. Does not block server startup.
func (w *CaptureWorker) Start(ctx context.Context) error {
	logging.Default().Info("capture worker starting",
		"interval", w.interval.String(),
		"max_wait", w.maxWait.String(),
	)

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *CaptureWorker) Stop() {
	logging.Default().Info("capture worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("capture worker stopped")
}

func (w *CaptureWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.tick(ctx)

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("capture worker context cancelled")
			return
		}
	}
}

// tick observes every active capture once. A failure on one source never
// stops the handling of the others.
func (w *CaptureWorker) tick(ctx context.Context) {
	logger := logging.From(ctx)

	sources, err := w.uc.ListActiveCaptures(ctx)
	if err != nil {
		logger.Error("failed to list active captures (will retry next interval)",
			"error", err.Error())
		return
	}

	for _, source := range sources {
		w.observe(ctx, source)
	}
}

func (w *CaptureWorker) observe(ctx context.Context, source *model.Source) {
	logger := logging.From(ctx)

	status, err := w.uc.CaptureStatus(ctx, source.ID)
	if err != nil {
		logger.Error("failed to poll capture bot (will retry next interval)",
			"source_id", source.ID,
			"error", err.Error())
		return
	}

	switch status {
	case types.BotStatusRecordingAvailable:
		// Trigger transcription exactly once: Retranscribe moves the source
		// out of pending before returning, so later ticks skip it.
		if source.TranscriptionStatus != types.TranscriptionPending {
			return
		}
		if err := w.uc.Retranscribe(ctx, source.ID); err != nil {
			logger.Error("failed to start transcription for capture",
				"source_id", source.ID,
				"error", err.Error())
		}

	case types.BotStatusFailed:
		if err := w.uc.FailCapture(ctx, source.ID, "capture bot failed to record the meeting"); err != nil {
			logger.Error("failed to mark capture as failed",
				"source_id", source.ID,
				"error", err.Error())
		}

	default:
		if w.maxWait > 0 && time.Since(source.CreatedAt) > w.maxWait {
			logger.Warn("capture exceeded maximum wait",
				"source_id", source.ID,
				"status", status,
				"waited", time.Since(source.CreatedAt).String())

			if err := w.uc.StopCapture(ctx, source.ID); err != nil {
				logger.Error("failed to stop timed-out capture bot",
					"source_id", source.ID,
					"error", err.Error())
			}
			if err := w.uc.FailCapture(ctx, source.ID, "meeting capture timed out"); err != nil {
				logger.Error("failed to mark capture as timed out",
					"source_id", source.ID,
					"error", err.Error())
			}
		}
	}
}
