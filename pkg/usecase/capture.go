package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/memora-app/memora/pkg/domain/model"
	"github.com/memora-app/memora/pkg/domain/types"
	"github.com/memora-app/memora/pkg/utils/logging"
)

// CaptureLiveMeeting sends a capture bot into a live meeting and registers a
// pending meeting source that the capture worker drives to completion.
func (uc *UseCases) CaptureLiveMeeting(ctx context.Context, containerID model.ContainerID, meetingURL, name string) (*model.Source, error) {
	if uc.bots == nil {
		return nil, goerr.Wrap(ErrCaptureUnavailable, "bot provider is not configured")
	}
	if strings.TrimSpace(meetingURL) == "" {
		return nil, goerr.Wrap(ErrEmptyMeetingURL, "meeting URL is required")
	}

	if _, err := uc.repo.Container().Get(ctx, containerID); err != nil {
		return nil, goerr.Wrap(ErrContainerNotFound, "container not found", goerr.V(ContainerIDKey, containerID))
	}

	platform := types.DetectPlatform(meetingURL)

	botID, err := uc.bots.CreateBot(ctx, meetingURL, uc.botName)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create capture bot", goerr.V("meeting_url", meetingURL))
	}

	if name == "" {
		name = "Meeting (" + platform.String() + ")"
	}

	created, err := uc.repo.Source().Create(ctx, &model.Source{
		ContainerID:         containerID,
		Kind:                types.SourceKindMeeting,
		Name:                name,
		MeetingURL:          meetingURL,
		Platform:            platform,
		RecallBotID:         botID,
		TranscriptionStatus: types.TranscriptionPending,
	})
	if err != nil {
		// The bot is already in the meeting; best effort to call it back.
		if stopErr := uc.bots.Stop(ctx, botID); stopErr != nil {
			logging.From(ctx).Warn("failed to stop orphaned capture bot",
				"bot_id", botID,
				"error", stopErr,
			)
		}
		return nil, goerr.Wrap(err, "failed to create meeting source", goerr.V("bot_id", botID))
	}

	logging.From(ctx).Info("capture bot dispatched",
		"source_id", created.ID,
		"bot_id", botID,
		"platform", platform,
	)

	return created, nil
}

// CaptureStatus reports the live bot state for a meeting source.
func (uc *UseCases) CaptureStatus(ctx context.Context, sourceID int64) (types.BotStatus, error) {
	if uc.bots == nil {
		return types.BotStatusUnknown, goerr.Wrap(ErrCaptureUnavailable, "bot provider is not configured")
	}

	source, err := uc.repo.Source().Get(ctx, sourceID)
	if err != nil {
		return types.BotStatusUnknown, goerr.Wrap(ErrSourceNotFound, "source not found", goerr.V(SourceIDKey, sourceID))
	}
	if source.RecallBotID == "" {
		return types.BotStatusUnknown, goerr.Wrap(ErrNotCaptureBot, "source has no capture bot", goerr.V(SourceIDKey, sourceID))
	}

	status, err := uc.bots.GetStatus(ctx, source.RecallBotID)
	if err != nil {
		return types.BotStatusUnknown, goerr.Wrap(err, "failed to get bot status", goerr.V("bot_id", source.RecallBotID))
	}

	return status, nil
}

// StopCapture makes the bot leave the meeting. The provider keeps processing
// whatever it recorded, so the worker still picks the recording up later.
func (uc *UseCases) StopCapture(ctx context.Context, sourceID int64) error {
	if uc.bots == nil {
		return goerr.Wrap(ErrCaptureUnavailable, "bot provider is not configured")
	}

	source, err := uc.repo.Source().Get(ctx, sourceID)
	if err != nil {
		return goerr.Wrap(ErrSourceNotFound, "source not found", goerr.V(SourceIDKey, sourceID))
	}
	if source.RecallBotID == "" {
		return goerr.Wrap(ErrNotCaptureBot, "source has no capture bot", goerr.V(SourceIDKey, sourceID))
	}

	if err := uc.bots.Stop(ctx, source.RecallBotID); err != nil {
		return goerr.Wrap(err, "failed to stop capture bot", goerr.V("bot_id", source.RecallBotID))
	}

	return nil
}

// ListActiveCaptures returns meeting sources whose bot lifecycle is still in
// flight. Consumed by the capture worker on every poll tick.
func (uc *UseCases) ListActiveCaptures(ctx context.Context) ([]*model.Source, error) {
	sources, err := uc.repo.Source().ListActiveCaptures(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list active captures")
	}
	return sources, nil
}

// FailCapture marks a meeting source as failed with a user-facing reason.
// Called by the worker on bot failure or when the bounded wait is exceeded.
func (uc *UseCases) FailCapture(ctx context.Context, sourceID int64, reason string) error {
	source, err := uc.repo.Source().Get(ctx, sourceID)
	if err != nil {
		return goerr.Wrap(ErrSourceNotFound, "source not found", goerr.V(SourceIDKey, sourceID))
	}

	source.TranscriptionStatus = types.TranscriptionError
	source.TranscriptionError = reason
	if _, err := uc.repo.Source().Update(ctx, source); err != nil {
		return goerr.Wrap(err, "failed to record capture failure", goerr.V(SourceIDKey, sourceID))
	}

	return nil
}
