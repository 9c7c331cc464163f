package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/memora-app/memora/pkg/domain/interfaces"
	"github.com/memora-app/memora/pkg/domain/model"
	"github.com/memora-app/memora/pkg/domain/types"
	"github.com/memora-app/memora/pkg/utils/logging"
)

// Retranscribe re-runs the transcription pipeline for a media source. The new
// transcript supersedes any previous one and the source is re-indexed, so
// repeating it converges to the same state.
func (uc *UseCases) Retranscribe(ctx context.Context, sourceID int64) error {
	if uc.stt == nil {
		return goerr.Wrap(ErrTranscriptionUnavailable, "speech-to-text is not configured")
	}

	source, err := uc.repo.Source().Get(ctx, sourceID)
	if err != nil {
		return goerr.Wrap(ErrSourceNotFound, "source not found", goerr.V(SourceIDKey, sourceID))
	}
	if !source.Kind.IsMedia() {
		return goerr.Wrap(ErrNotMediaSource, "source kind is not transcribable", goerr.V("kind", source.Kind))
	}

	// Move to processing synchronously so a caller polling the source (the
	// capture worker in particular) never sees it pending again and
	// double-triggers the pipeline.
	source.TranscriptionStatus = types.TranscriptionProcessing
	source.TranscriptionError = ""
	if _, err := uc.repo.Source().Update(ctx, source); err != nil {
		return goerr.Wrap(err, "failed to mark source processing", goerr.V(SourceIDKey, sourceID))
	}

	uc.scheduleTranscription(ctx, sourceID)

	return nil
}

// scheduleTranscription dispatches one pipeline run off the request path.
func (uc *UseCases) scheduleTranscription(ctx context.Context, sourceID int64) {
	uc.dispatcher.Dispatch(ctx, func(ctx context.Context) error {
		return uc.ProcessTranscription(ctx, sourceID)
	})
}

// ProcessTranscription runs the transcription pipeline for one media source:
// mark processing, resolve a retrievable media URL, transcribe, normalize,
// persist the transcript, mark done, then schedule indexing. Any step failure
// lands on the source as status=error with a readable reason; it is never
// raised to whatever triggered the run, and a later re-trigger starts over.
func (uc *UseCases) ProcessTranscription(ctx context.Context, sourceID int64) error {
	logger := logging.From(ctx)

	source, err := uc.repo.Source().Get(ctx, sourceID)
	if err != nil {
		return goerr.Wrap(err, "failed to load source for transcription", goerr.V(SourceIDKey, sourceID))
	}

	source.TranscriptionStatus = types.TranscriptionProcessing
	source.TranscriptionError = ""
	if source, err = uc.repo.Source().Update(ctx, source); err != nil {
		return goerr.Wrap(err, "failed to mark source processing", goerr.V(SourceIDKey, sourceID))
	}

	mediaURL, err := uc.resolveMediaURL(ctx, source)
	if err != nil {
		return uc.failTranscription(ctx, source, "media is not retrievable", err)
	}

	sttCtx, cancel := context.WithTimeout(ctx, uc.transcribeTimeout)
	defer cancel()

	result, err := uc.stt.Transcribe(sttCtx, mediaURL, interfaces.TranscribeOptions{
		Diarize: true,
	})
	if err != nil {
		return uc.failTranscription(ctx, source, "transcription provider failed", err)
	}

	content := model.FormatUtterances(result.Utterances)
	transcript := &model.Transcript{
		SourceID:     sourceID,
		Content:      content,
		LanguageCode: result.DetectedLanguage,
		Speakers:     model.SpeakerList(result.Utterances),
		WordCount:    model.CountWords(content),
		DurationSec:  result.DurationSec,
	}

	if _, err := uc.repo.Transcript().Put(ctx, transcript); err != nil {
		return uc.failTranscription(ctx, source, "failed to store transcript", err)
	}

	source.RawContent = content
	source.TranscriptionStatus = types.TranscriptionDone
	source.TranscriptionError = ""
	updated, err := uc.repo.Source().Update(ctx, source)
	if err != nil {
		return uc.failTranscription(ctx, source, "failed to finalize transcription", err)
	}
	source = updated

	logger.Info("transcribed source",
		"source_id", sourceID,
		"duration_sec", result.DurationSec,
		"speakers", len(transcript.Speakers),
		"words", transcript.WordCount,
	)

	uc.scheduleIndexing(ctx, source, content)

	return nil
}

// resolveMediaURL returns a provider-fetchable URL for the source's media:
// a signed URL for uploaded files, or the bot recording for captured
// meetings.
func (uc *UseCases) resolveMediaURL(ctx context.Context, source *model.Source) (string, error) {
	if source.FileRef != "" {
		if uc.media == nil {
			return "", goerr.Wrap(ErrUploadUnavailable, "media storage is not configured")
		}
		url, err := uc.media.SignedURL(ctx, source.FileRef, uc.signedURLTTL)
		if err != nil {
			return "", goerr.Wrap(err, "failed to sign media URL", goerr.V("file_ref", source.FileRef))
		}
		return url, nil
	}

	if source.RecallBotID != "" {
		if uc.bots == nil {
			return "", goerr.Wrap(ErrCaptureUnavailable, "bot provider is not configured")
		}
		url, err := uc.bots.RecordingURL(ctx, source.RecallBotID)
		if err != nil {
			return "", goerr.Wrap(err, "failed to resolve bot recording", goerr.V("bot_id", source.RecallBotID))
		}
		return url, nil
	}

	return "", goerr.Wrap(ErrNotMediaSource, "source has neither media file nor capture bot", goerr.V(SourceIDKey, source.ID))
}

// failTranscription records the failure on the source. The stored transcript
// from any previous successful run stays untouched, and no indexing is
// scheduled.
func (uc *UseCases) failTranscription(ctx context.Context, source *model.Source, reason string, cause error) error {
	logging.From(ctx).Error("transcription failed",
		"source_id", source.ID,
		"reason", reason,
		"error", cause,
	)

	source.TranscriptionStatus = types.TranscriptionError
	source.TranscriptionError = reason
	if _, err := uc.repo.Source().Update(ctx, source); err != nil {
		return goerr.Wrap(err, "failed to record transcription failure", goerr.V(SourceIDKey, source.ID))
	}

	return goerr.Wrap(cause, reason, goerr.V(SourceIDKey, source.ID))
}
