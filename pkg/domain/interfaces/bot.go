package interfaces

import (
	"context"

	"github.com/memora-app/memora/pkg/domain/types"
)

// BotProvider is the remote meeting-bot service. Bots are created, observed
// through polling, and optionally stopped; their lifecycle is owned entirely
// by the provider.
type BotProvider interface {
	// CreateBot asks the provider to join the meeting and returns the opaque bot ID
	CreateBot(ctx context.Context, meetingURL, displayName string) (string, error)

	// GetStatus returns the bot's current observed state
	GetStatus(ctx context.Context, botID string) (types.BotStatus, error)

	// Stop makes the bot leave the call
	Stop(ctx context.Context, botID string) error

	// RecordingURL returns a retrievable URL for the bot's recording. Only
	// valid once recordings are available: it must pick an audio track first,
	// fall back to video, and fail explicitly when neither exists.
	RecordingURL(ctx context.Context, botID string) (string, error)
}
