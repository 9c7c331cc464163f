package types

// BotStatus represents the observed state of a remote capture bot. The bot's
// lifecycle is driven entirely by the provider; we only read it.
type BotStatus string

const (
	BotStatusCreated            BotStatus = "created"
	BotStatusJoining            BotStatus = "joining"
	BotStatusWaitingRoom        BotStatus = "waiting_room"
	BotStatusRecording          BotStatus = "recording"
	BotStatusEnded              BotStatus = "ended"
	BotStatusRecordingAvailable BotStatus = "recording_available"
	BotStatusFailed             BotStatus = "failed"
	BotStatusUnknown            BotStatus = "unknown"
)

// IsTerminal reports whether the bot will make no further progress. Polling
// stops once a terminal state is observed.
func (s BotStatus) IsTerminal() bool {
	return s == BotStatusRecordingAvailable || s == BotStatusFailed
}

// String returns the string representation of the bot status
func (s BotStatus) String() string {
	return string(s)
}
