package types

import "fmt"

// TranscriptionStatus represents the transcription state of a source
type TranscriptionStatus string

const (
	TranscriptionNone       TranscriptionStatus = "none"
	TranscriptionPending    TranscriptionStatus = "pending"
	TranscriptionProcessing TranscriptionStatus = "processing"
	TranscriptionDone       TranscriptionStatus = "done"
	TranscriptionError      TranscriptionStatus = "error"
)

// IsValid checks if the transcription status is valid
func (s TranscriptionStatus) IsValid() bool {
	switch s {
	case TranscriptionNone,
		TranscriptionPending,
		TranscriptionProcessing,
		TranscriptionDone,
		TranscriptionError:
		return true
	default:
		return false
	}
}

// Normalize returns the status, treating empty as TranscriptionNone for
// records written before the field existed.
func (s TranscriptionStatus) Normalize() TranscriptionStatus {
	if s == "" {
		return TranscriptionNone
	}
	return s
}

// IsTerminal reports whether the transcription has finished, successfully or not.
func (s TranscriptionStatus) IsTerminal() bool {
	return s == TranscriptionDone || s == TranscriptionError
}

// String returns the string representation of the transcription status
func (s TranscriptionStatus) String() string {
	return string(s)
}

// ParseTranscriptionStatus parses a string into a TranscriptionStatus
func ParseTranscriptionStatus(s string) (TranscriptionStatus, error) {
	status := TranscriptionStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid transcription status: %s", s)
	}
	return status, nil
}
