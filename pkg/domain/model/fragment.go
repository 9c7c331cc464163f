package model

import "github.com/m-mizutani/goerr/v2"

// PartitionSize is the per-source point ID partition width. A fragment's point
// ID is sourceID*PartitionSize+position, which gives every source a disjoint,
// computable ID range so stale fragments can be deleted without a ledger. The
// cost is a hard ceiling of PartitionSize-1 fragments per source; indexing
// rejects anything beyond it rather than letting IDs bleed into the next
// source's range.
const PartitionSize = 10000

// MaxFragmentsPerSource is the enforced fragment ceiling per source.
const MaxFragmentsPerSource = PartitionSize - 1

// DefaultEmbeddingDimension is the vector dimension used unless configured
// otherwise. The dimension is fixed per vector collection; changing it
// requires re-indexing every container.
const DefaultEmbeddingDimension = 768

// ErrTooManyFragments is returned when a source chunks into more fragments
// than its point ID partition can hold.
var ErrTooManyFragments = goerr.New("source exceeds fragment ceiling")

// Fragment is a chunked slice of a source's text. Fragments are derived, never
// persisted relationally: they exist only inside the vector index, and their
// identity is fully reconstructible from (sourceID, position).
type Fragment struct {
	SourceID int64
	Position int
	Text     string
}

// PointID returns the vector point ID for the fragment.
func (f Fragment) PointID() int64 {
	return PointID(f.SourceID, f.Position)
}

// PointID computes the vector point ID for a source fragment. Injective for
// any position < PartitionSize.
func PointID(sourceID int64, position int) int64 {
	return sourceID*PartitionSize + int64(position)
}

// ValidateFragmentCount checks the fragment ceiling for one source.
func ValidateFragmentCount(sourceID int64, count int) error {
	if count > MaxFragmentsPerSource {
		return goerr.Wrap(ErrTooManyFragments, "refusing to index",
			goerr.V("source_id", sourceID),
			goerr.V("fragments", count),
			goerr.V("limit", MaxFragmentsPerSource),
		)
	}
	return nil
}
