package interfaces

import (
	"context"

	"github.com/memora-app/memora/pkg/domain/model"
)

// TranscribeOptions controls a speech-to-text request
type TranscribeOptions struct {
	// LanguageCode hints the spoken language. Empty lets the provider detect it.
	LanguageCode string

	// Diarize enables per-utterance speaker labels
	Diarize bool
}

// TranscribeResult is the provider-neutral transcription output
type TranscribeResult struct {
	Utterances       []model.Utterance
	DurationSec      float64
	DetectedLanguage string
}

// SpeechToText transcribes recorded audio/video reachable at a URL. Calls may
// take seconds to minutes proportional to media duration; callers must pass a
// context with a finite deadline.
type SpeechToText interface {
	Transcribe(ctx context.Context, audioURL string, opts TranscribeOptions) (*TranscribeResult, error)
}
