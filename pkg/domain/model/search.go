package model

import "github.com/memora-app/memora/pkg/domain/types"

// SearchHit is one ranked fragment returned from the semantic search, with
// enough payload for source attribution.
type SearchHit struct {
	SourceID   int64
	SourceName string
	Kind       types.SourceKind
	Position   int
	Text       string
	Score      float64
}
