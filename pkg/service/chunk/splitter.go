package chunk

import (
	"strings"

	"github.com/memora-app/memora/pkg/domain/model"
)

const (
	// DefaultTargetSize is the target fragment size in characters
	DefaultTargetSize = 500

	// DefaultOverlap is how many characters of the previous fragment's tail
	// are repeated at the start of the next one, preserving cross-boundary
	// context for retrieval.
	DefaultOverlap = 50

	// minTolerance keeps the boundary search window useful for very small
	// target sizes.
	minTolerance = 20
)

// Splitter cuts raw text into overlapping fragments suitable for embedding.
// Splitting is deterministic: identical input always yields identical
// fragments and positions.
type Splitter struct {
	targetSize int
	overlap    int
	tolerance  int
}

// Option configures a Splitter
type Option func(*Splitter)

// WithTargetSize sets the target fragment size in characters
func WithTargetSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.targetSize = size
		}
	}
}

// WithOverlap sets the fragment overlap in characters
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a Splitter with the given options
func New(opts ...Option) *Splitter {
	s := &Splitter{
		targetSize: DefaultTargetSize,
		overlap:    DefaultOverlap,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.overlap >= s.targetSize {
		s.overlap = s.targetSize / 2
	}

	s.tolerance = s.targetSize / 5
	if s.tolerance < minTolerance {
		s.tolerance = minTolerance
	}

	return s
}

// Split cuts text into fragments. Fragments prefer ending at the sentence
// boundary nearest to the target size; when no boundary falls inside the
// tolerance window the cut is hard at the target size. Positions are
// zero-based and contiguous. Empty or whitespace-only input yields nil.
// Each fragment is trimmed of surrounding whitespace, so concatenating
// fragments (minus overlap) reproduces the input only up to whitespace.
// SourceID on the returned fragments is left for the caller to assign.
func (s *Splitter) Split(text string) []model.Fragment {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)

	var fragments []model.Fragment
	start := 0
	position := 0

	for start < len(runes) {
		end := start + s.targetSize
		if end >= len(runes) {
			end = len(runes)
		} else if boundary := s.nearestBoundary(runes, start, end); boundary > 0 {
			end = boundary
		}

		fragText := strings.TrimSpace(string(runes[start:end]))
		if fragText != "" {
			fragments = append(fragments, model.Fragment{
				Position: position,
				Text:     fragText,
			})
			position++
		}

		if end >= len(runes) {
			break
		}

		next := end - s.overlap
		if next <= start {
			// Overlap would stall the scan; advance without it.
			next = end
		}
		start = next
	}

	return fragments
}

// nearestBoundary returns the cut index just after the sentence terminator
// closest to the target end, searching within the tolerance window. Returns 0
// when no boundary qualifies.
func (s *Splitter) nearestBoundary(runes []rune, start, end int) int {
	lo := end - s.tolerance
	if lo <= start {
		lo = start + 1
	}
	hi := end + s.tolerance
	if hi > len(runes) {
		hi = len(runes)
	}

	best := 0
	bestDist := s.tolerance + 1
	for i := lo; i <= hi; i++ {
		if !isSentenceEnd(runes[i-1]) {
			continue
		}
		dist := i - end
		if dist < 0 {
			dist = -dist
		}
		if dist < bestDist {
			best = i
			bestDist = dist
		}
	}

	return best
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
