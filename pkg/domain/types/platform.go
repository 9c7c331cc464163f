package types

import "strings"

// Platform identifies which video-conferencing product a meeting URL belongs
// to. It is used for labeling only and never branches transcription logic.
type Platform string

const (
	PlatformZoom    Platform = "zoom"
	PlatformMeet    Platform = "meet"
	PlatformTeams   Platform = "teams"
	PlatformWebex   Platform = "webex"
	PlatformUnknown Platform = "unknown"
)

// DetectPlatform classifies a meeting URL by substring matching.
func DetectPlatform(meetingURL string) Platform {
	lowered := strings.ToLower(meetingURL)

	switch {
	case strings.Contains(lowered, "zoom.us"):
		return PlatformZoom
	case strings.Contains(lowered, "meet.google.com"):
		return PlatformMeet
	case strings.Contains(lowered, "teams.microsoft.com"), strings.Contains(lowered, "teams.live.com"):
		return PlatformTeams
	case strings.Contains(lowered, "webex.com"):
		return PlatformWebex
	default:
		return PlatformUnknown
	}
}

// String returns the string representation of the platform
func (p Platform) String() string {
	return string(p)
}
