package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/memora-app/memora/pkg/domain/model"
)

type transcriptRepository struct {
	mu          sync.RWMutex
	transcripts map[int64]*model.Transcript
}

func newTranscriptRepository() *transcriptRepository {
	return &transcriptRepository{
		transcripts: make(map[int64]*model.Transcript),
	}
}

func copyTranscript(tr *model.Transcript) *model.Transcript {
	cp := *tr
	cp.Speakers = make([]string, len(tr.Speakers))
	copy(cp.Speakers, tr.Speakers)
	return &cp
}

func (r *transcriptRepository) Put(ctx context.Context, transcript *model.Transcript) (*model.Transcript, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	stored := copyTranscript(transcript)
	if prev, exists := r.transcripts[stored.SourceID]; exists {
		stored.CreatedAt = prev.CreatedAt
	} else {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	r.transcripts[stored.SourceID] = stored
	return copyTranscript(stored), nil
}

func (r *transcriptRepository) Get(ctx context.Context, sourceID int64) (*model.Transcript, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	transcript, exists := r.transcripts[sourceID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "transcript not found", goerr.V("source_id", sourceID))
	}

	return copyTranscript(transcript), nil
}

func (r *transcriptRepository) Delete(ctx context.Context, sourceID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.transcripts[sourceID]; !exists {
		return goerr.Wrap(ErrNotFound, "transcript not found", goerr.V("source_id", sourceID))
	}

	delete(r.transcripts, sourceID)
	return nil
}
