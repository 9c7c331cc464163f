package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/memora-app/memora/pkg/domain/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type transcriptRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newTranscriptRepository(client *firestore.Client) *transcriptRepository {
	return &transcriptRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *transcriptRepository) transcriptsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_transcripts"
	}
	return "transcripts"
}

// Put upserts the transcript keyed by its source ID, so a re-transcription
// replaces the previous content in place.
func (r *transcriptRepository) Put(ctx context.Context, transcript *model.Transcript) (*model.Transcript, error) {
	docID := fmt.Sprintf("%d", transcript.SourceID)
	docRef := r.client.Collection(r.transcriptsCollection()).Doc(docID)

	now := time.Now().UTC()
	stored := &model.Transcript{
		SourceID:     transcript.SourceID,
		Content:      transcript.Content,
		LanguageCode: transcript.LanguageCode,
		Speakers:     transcript.Speakers,
		WordCount:    transcript.WordCount,
		DurationSec:  transcript.DurationSec,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if prev, err := docRef.Get(ctx); err == nil {
		var p model.Transcript
		if err := prev.DataTo(&p); err == nil {
			stored.CreatedAt = p.CreatedAt
		}
	} else if status.Code(err) != codes.NotFound {
		return nil, goerr.Wrap(err, "failed to check transcript existence", goerr.V("source_id", transcript.SourceID))
	}

	if _, err := docRef.Set(ctx, stored); err != nil {
		return nil, goerr.Wrap(err, "failed to put transcript", goerr.V("source_id", transcript.SourceID))
	}

	return stored, nil
}

func (r *transcriptRepository) Get(ctx context.Context, sourceID int64) (*model.Transcript, error) {
	docID := fmt.Sprintf("%d", sourceID)
	docSnap, err := r.client.Collection(r.transcriptsCollection()).Doc(docID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "transcript not found", goerr.V("source_id", sourceID))
		}
		return nil, goerr.Wrap(err, "failed to get transcript", goerr.V("source_id", sourceID))
	}

	var t model.Transcript
	if err := docSnap.DataTo(&t); err != nil {
		return nil, goerr.Wrap(err, "failed to decode transcript", goerr.V("source_id", sourceID))
	}

	return &t, nil
}

func (r *transcriptRepository) Delete(ctx context.Context, sourceID int64) error {
	docID := fmt.Sprintf("%d", sourceID)
	docRef := r.client.Collection(r.transcriptsCollection()).Doc(docID)

	// Check if document exists
	_, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "transcript not found", goerr.V("source_id", sourceID))
		}
		return goerr.Wrap(err, "failed to check transcript existence", goerr.V("source_id", sourceID))
	}

	_, err = docRef.Delete(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to delete transcript", goerr.V("source_id", sourceID))
	}

	return nil
}
