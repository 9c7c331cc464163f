package model

import "github.com/memora-app/memora/pkg/domain/types"

// CaptureBot is a remote, provider-managed recording session for a live
// meeting. It is not owned by Memora: we hold only a foreign reference on the
// meeting source and observe the bot's state through polling.
type CaptureBot struct {
	ID         string
	MeetingURL string
	Platform   types.Platform
	Status     types.BotStatus
}
