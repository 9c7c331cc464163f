package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Utterance is one diarized span of speech, already normalized away from any
// provider-specific response shape.
type Utterance struct {
	Speaker  string
	Text     string
	StartSec float64
	EndSec   float64
}

// Transcript is the durable result of transcribing one source. Produced
// exactly once per successful transcription; a re-transcription supersedes the
// previous content and triggers re-indexing.
type Transcript struct {
	SourceID     int64
	Content      string
	LanguageCode string
	Speakers     []string
	WordCount    int
	DurationSec  float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FormatUtterances renders diarized utterances as plain text, one line per
// utterance: "[mm:ss] Speaker: text". This is the normalization boundary that
// keeps downstream consumers independent of the speech-to-text provider.
func FormatUtterances(utterances []Utterance) string {
	var sb strings.Builder
	for i, u := range utterances {
		text := strings.TrimSpace(u.Text)
		if text == "" {
			continue
		}
		if i > 0 && sb.Len() > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "[%s] %s: %s", formatTimestamp(u.StartSec), u.Speaker, text)
	}
	return sb.String()
}

// SpeakerList returns the distinct speakers in order of first appearance.
func SpeakerList(utterances []Utterance) []string {
	seen := make(map[string]int)
	for i, u := range utterances {
		if _, ok := seen[u.Speaker]; !ok && u.Speaker != "" {
			seen[u.Speaker] = i
		}
	}

	speakers := make([]string, 0, len(seen))
	for speaker := range seen {
		speakers = append(speakers, speaker)
	}
	sort.Slice(speakers, func(i, j int) bool {
		return seen[speakers[i]] < seen[speakers[j]]
	})
	return speakers
}

// CountWords counts whitespace-separated tokens.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

func formatTimestamp(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	total := int(sec)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
