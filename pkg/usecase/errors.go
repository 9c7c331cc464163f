package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrContainerNotFound = errors.New("container not found")
	ErrSourceNotFound    = errors.New("source not found")

	// Validation errors
	ErrEmptyContent    = errors.New("content is required")
	ErrEmptyName       = errors.New("name is required")
	ErrEmptyMeetingURL = errors.New("meeting URL is required")
	ErrEmptyQuery      = errors.New("search query is required")
	ErrNotMediaSource  = errors.New("source has no transcribable media")
	ErrNotCaptureBot   = errors.New("source has no capture bot")

	// Availability errors
	ErrSearchUnavailable        = errors.New("search is unavailable")
	ErrTranscriptionUnavailable = errors.New("transcription is not configured")
	ErrCaptureUnavailable       = errors.New("meeting capture is not configured")
	ErrUploadUnavailable        = errors.New("media upload is not configured")
)

// Context keys for error values
const (
	ContainerIDKey = "container_id"
	SourceIDKey    = "source_id"
)
