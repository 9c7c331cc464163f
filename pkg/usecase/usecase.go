package usecase

import (
	"time"

	"github.com/memora-app/memora/pkg/domain/interfaces"
	"github.com/memora-app/memora/pkg/service/index"
	"github.com/memora-app/memora/pkg/utils/async"
)

const (
	defaultBotName           = "Memora Notetaker"
	defaultTranscribeTimeout = 30 * time.Minute
	defaultSignedURLTTL      = time.Hour
	defaultSearchTopK        = 8
)

// UseCases bundles the application operations over the persistence,
// indexing, transcription, and capture dependencies.
type UseCases struct {
	repo        interfaces.Repository
	coordinator *index.Coordinator
	dispatcher  *async.Dispatcher
	stt         interfaces.SpeechToText
	bots        interfaces.BotProvider
	media       interfaces.MediaStorage

	botName           string
	transcribeTimeout time.Duration
	signedURLTTL      time.Duration
}

type Option func(*UseCases)

// WithSpeechToText enables media transcription
func WithSpeechToText(stt interfaces.SpeechToText) Option {
	return func(uc *UseCases) {
		uc.stt = stt
	}
}

// WithBotProvider enables live meeting capture
func WithBotProvider(bots interfaces.BotProvider) Option {
	return func(uc *UseCases) {
		uc.bots = bots
	}
}

// WithMediaStorage enables direct media uploads
func WithMediaStorage(media interfaces.MediaStorage) Option {
	return func(uc *UseCases) {
		uc.media = media
	}
}

// WithBotName sets the display name capture bots join meetings with
func WithBotName(name string) Option {
	return func(uc *UseCases) {
		if name != "" {
			uc.botName = name
		}
	}
}

// WithTranscribeTimeout bounds a single speech-to-text call. The default is
// generous because provider latency grows with media duration.
func WithTranscribeTimeout(d time.Duration) Option {
	return func(uc *UseCases) {
		if d > 0 {
			uc.transcribeTimeout = d
		}
	}
}

func New(repo interfaces.Repository, coordinator *index.Coordinator, dispatcher *async.Dispatcher, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:              repo,
		coordinator:       coordinator,
		dispatcher:        dispatcher,
		botName:           defaultBotName,
		transcribeTimeout: defaultTranscribeTimeout,
		signedURLTTL:      defaultSignedURLTTL,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}
