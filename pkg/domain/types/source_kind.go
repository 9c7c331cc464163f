package types

import "fmt"

// SourceKind represents the kind of content a source holds
type SourceKind string

const (
	SourceKindText      SourceKind = "text"
	SourceKindMeeting   SourceKind = "meeting"
	SourceKindVoiceNote SourceKind = "voice_note"
	SourceKindDocument  SourceKind = "document"
	SourceKindUpload    SourceKind = "upload"
)

// AllSourceKinds returns all valid source kinds
func AllSourceKinds() []SourceKind {
	return []SourceKind{
		SourceKindText,
		SourceKindMeeting,
		SourceKindVoiceNote,
		SourceKindDocument,
		SourceKindUpload,
	}
}

// IsValid checks if the source kind is valid
func (k SourceKind) IsValid() bool {
	switch k {
	case SourceKindText,
		SourceKindMeeting,
		SourceKindVoiceNote,
		SourceKindDocument,
		SourceKindUpload:
		return true
	default:
		return false
	}
}

// IsMedia reports whether sources of this kind carry audio/video that must go
// through transcription before they can be indexed.
func (k SourceKind) IsMedia() bool {
	switch k {
	case SourceKindMeeting, SourceKindVoiceNote, SourceKindUpload:
		return true
	default:
		return false
	}
}

// String returns the string representation of the source kind
func (k SourceKind) String() string {
	return string(k)
}

// ParseSourceKind parses a string into a SourceKind
func ParseSourceKind(s string) (SourceKind, error) {
	kind := SourceKind(s)
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid source kind: %s", s)
	}
	return kind, nil
}
