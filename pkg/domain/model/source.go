package model

import (
	"time"

	"github.com/memora-app/memora/pkg/domain/types"
)

// Source represents one ingested content item. Its int64 ID is allocated by
// the repository from a counter; the point-ID scheme in fragment.go depends on
// it being a small arithmetic value, not a UUID.
type Source struct {
	ID          int64
	ContainerID ContainerID
	Kind        types.SourceKind
	Name        string

	// RawContent is populated immediately for pasted text and documents, or
	// asynchronously by the transcription pipeline for media sources.
	RawContent string

	// FileRef is the object name of the stored media in the media bucket.
	// Empty for pure text sources.
	FileRef string

	// RecallBotID is a foreign reference to the capture bot session for
	// meeting sources. Memora observes the bot, it never owns it.
	RecallBotID string
	MeetingURL  string
	Platform    types.Platform

	TranscriptionStatus types.TranscriptionStatus
	// TranscriptionError holds a human-readable reason when the status is
	// error, so the UI can show it and permit a re-trigger.
	TranscriptionError string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Metadata carried into the vector index payload for source attribution.
type SourceMeta struct {
	Kind types.SourceKind
	Name string
}

// Meta returns the indexing payload metadata for the source.
func (s *Source) Meta() SourceMeta {
	return SourceMeta{Kind: s.Kind, Name: s.Name}
}
