package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/memora-app/memora/pkg/domain/model"
	"github.com/memora-app/memora/pkg/domain/types"
	"github.com/memora-app/memora/pkg/utils/logging"
)

// IngestText stores pasted text or an extracted document as a source and
// schedules indexing in the background. The source is durable before this
// returns; the index converges asynchronously.
func (uc *UseCases) IngestText(ctx context.Context, containerID model.ContainerID, kind types.SourceKind, name, content string) (*model.Source, error) {
	if strings.TrimSpace(content) == "" {
		return nil, goerr.Wrap(ErrEmptyContent, "content is required")
	}
	if kind == "" {
		kind = types.SourceKindText
	}
	if kind.IsMedia() {
		return nil, goerr.New("media kinds must be ingested through IngestMedia", goerr.V("kind", kind))
	}

	if _, err := uc.repo.Container().Get(ctx, containerID); err != nil {
		return nil, goerr.Wrap(ErrContainerNotFound, "container not found", goerr.V(ContainerIDKey, containerID))
	}

	created, err := uc.repo.Source().Create(ctx, &model.Source{
		ContainerID:         containerID,
		Kind:                kind,
		Name:                name,
		RawContent:          content,
		TranscriptionStatus: types.TranscriptionNone,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create source")
	}

	uc.scheduleIndexing(ctx, created, content)

	return created, nil
}

// IngestMedia uploads a recording, registers it as a pending source, and
// schedules transcription in the background.
func (uc *UseCases) IngestMedia(ctx context.Context, containerID model.ContainerID, kind types.SourceKind, name, contentType string, r io.Reader) (*model.Source, error) {
	if uc.media == nil {
		return nil, goerr.Wrap(ErrUploadUnavailable, "media storage is not configured")
	}
	if uc.stt == nil {
		return nil, goerr.Wrap(ErrTranscriptionUnavailable, "speech-to-text is not configured")
	}
	if !kind.IsMedia() {
		return nil, goerr.New("kind does not carry transcribable media", goerr.V("kind", kind))
	}

	if _, err := uc.repo.Container().Get(ctx, containerID); err != nil {
		return nil, goerr.Wrap(ErrContainerNotFound, "container not found", goerr.V(ContainerIDKey, containerID))
	}

	created, err := uc.repo.Source().Create(ctx, &model.Source{
		ContainerID:         containerID,
		Kind:                kind,
		Name:                name,
		TranscriptionStatus: types.TranscriptionPending,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create source")
	}

	objectName := fmt.Sprintf("media/%s/%d", containerID, created.ID)
	if err := uc.media.Upload(ctx, objectName, r, contentType); err != nil {
		return nil, goerr.Wrap(err, "failed to upload media", goerr.V(SourceIDKey, created.ID))
	}

	created.FileRef = objectName
	updated, err := uc.repo.Source().Update(ctx, created)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to attach media to source", goerr.V(SourceIDKey, created.ID))
	}

	uc.scheduleTranscription(ctx, updated.ID)

	return updated, nil
}

// GetSource retrieves a source by ID.
func (uc *UseCases) GetSource(ctx context.Context, id int64) (*model.Source, error) {
	source, err := uc.repo.Source().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrSourceNotFound, "source not found", goerr.V(SourceIDKey, id))
	}
	return source, nil
}

// ListSources retrieves all sources of a container.
func (uc *UseCases) ListSources(ctx context.Context, containerID model.ContainerID) ([]*model.Source, error) {
	if _, err := uc.repo.Container().Get(ctx, containerID); err != nil {
		return nil, goerr.Wrap(ErrContainerNotFound, "container not found", goerr.V(ContainerIDKey, containerID))
	}

	sources, err := uc.repo.Source().ListByContainer(ctx, containerID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list sources", goerr.V(ContainerIDKey, containerID))
	}
	return sources, nil
}

// DeleteSource removes a source, its transcript, and its indexed fragments.
func (uc *UseCases) DeleteSource(ctx context.Context, id int64) error {
	source, err := uc.repo.Source().Get(ctx, id)
	if err != nil {
		return goerr.Wrap(ErrSourceNotFound, "source not found", goerr.V(SourceIDKey, id))
	}

	if err := uc.coordinator.EvictSource(ctx, source.ContainerID, id); err != nil {
		// Soft-fail: vector eviction must not block removal of the record
		logging.From(ctx).Warn("failed to evict source from vector index",
			"source_id", id,
			"error", err,
		)
	}

	if err := uc.repo.Transcript().Delete(ctx, id); err != nil {
		logging.From(ctx).Debug("no transcript to delete", "source_id", id)
	}

	if err := uc.repo.Source().Delete(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete source", goerr.V(SourceIDKey, id))
	}

	return nil
}

// scheduleIndexing dispatches one indexing run for the source. Failures are
// logged by the dispatcher's error boundary; they never reach the caller.
func (uc *UseCases) scheduleIndexing(ctx context.Context, source *model.Source, content string) {
	containerID := source.ContainerID
	sourceID := source.ID
	meta := source.Meta()

	uc.dispatcher.Dispatch(ctx, func(ctx context.Context) error {
		result := uc.coordinator.Index(ctx, containerID, sourceID, content, meta)
		if !result.Success {
			return goerr.Wrap(result.Err, "indexing failed", goerr.V(SourceIDKey, sourceID))
		}
		return nil
	})
}
