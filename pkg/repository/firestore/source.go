package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/memora-app/memora/pkg/domain/model"
	"github.com/memora-app/memora/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type sourceRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newSourceRepository(client *firestore.Client) *sourceRepository {
	return &sourceRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *sourceRepository) sourcesCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_sources"
	}
	return "sources"
}

func (r *sourceRepository) counterCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_counters"
	}
	return "counters"
}

func (r *sourceRepository) sourceCounterDoc() string {
	return "source_counter"
}

// getNextID allocates a monotonic source ID from a counter document. The
// counter only moves forward, so IDs are never reused even after deletes;
// the vector point-ID scheme depends on that.
func (r *sourceRepository) getNextID(ctx context.Context) (int64, error) {
	counterRef := r.client.Collection(r.counterCollection()).Doc(r.sourceCounterDoc())

	var nextID int64
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(counterRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				nextID = 1
				return tx.Set(counterRef, map[string]interface{}{
					"value": nextID,
				})
			}
			return goerr.Wrap(err, "failed to get counter")
		}

		currentValue, err := doc.DataAt("value")
		if err != nil {
			return goerr.Wrap(err, "failed to get counter value")
		}

		val, ok := currentValue.(int64)
		if !ok {
			return goerr.New("counter value is not of type int64", goerr.V("value", currentValue))
		}
		nextID = val + 1
		return tx.Update(counterRef, []firestore.Update{
			{Path: "value", Value: nextID},
		})
	})

	if err != nil {
		return 0, goerr.Wrap(err, "failed to get next ID")
	}

	return nextID, nil
}

func (r *sourceRepository) Create(ctx context.Context, source *model.Source) (*model.Source, error) {
	nextID, err := r.getNextID(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get next ID")
	}

	now := time.Now().UTC()
	created := &model.Source{
		ID:                  nextID,
		ContainerID:         source.ContainerID,
		Kind:                source.Kind,
		Name:                source.Name,
		RawContent:          source.RawContent,
		FileRef:             source.FileRef,
		RecallBotID:         source.RecallBotID,
		MeetingURL:          source.MeetingURL,
		Platform:            source.Platform,
		TranscriptionStatus: source.TranscriptionStatus,
		TranscriptionError:  source.TranscriptionError,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	docID := fmt.Sprintf("%d", created.ID)

	_, err = r.client.Collection(r.sourcesCollection()).Doc(docID).Set(ctx, created)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create source", goerr.V("id", created.ID))
	}

	return created, nil
}

func (r *sourceRepository) Get(ctx context.Context, id int64) (*model.Source, error) {
	docID := fmt.Sprintf("%d", id)
	docSnap, err := r.client.Collection(r.sourcesCollection()).Doc(docID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "source not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get source", goerr.V("id", id))
	}

	var s model.Source
	if err := docSnap.DataTo(&s); err != nil {
		return nil, goerr.Wrap(err, "failed to decode source", goerr.V("id", id))
	}

	return &s, nil
}

func (r *sourceRepository) ListByContainer(ctx context.Context, containerID model.ContainerID) ([]*model.Source, error) {
	iter := r.client.Collection(r.sourcesCollection()).
		Where("ContainerID", "==", string(containerID)).
		OrderBy("CreatedAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	sources := make([]*model.Source, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate sources", goerr.V("container_id", containerID))
		}

		var s model.Source
		if err := docSnap.DataTo(&s); err != nil {
			return nil, goerr.Wrap(err, "failed to decode source", goerr.V("doc_id", docSnap.Ref.ID))
		}

		sources = append(sources, &s)
	}

	return sources, nil
}

func (r *sourceRepository) ListActiveCaptures(ctx context.Context) ([]*model.Source, error) {
	// Filter on kind only and narrow down client-side to avoid a composite
	// index on (Kind, TranscriptionStatus).
	iter := r.client.Collection(r.sourcesCollection()).
		Where("Kind", "==", string(types.SourceKindMeeting)).
		OrderBy("CreatedAt", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	sources := make([]*model.Source, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate meeting sources")
		}

		var s model.Source
		if err := docSnap.DataTo(&s); err != nil {
			return nil, goerr.Wrap(err, "failed to decode source", goerr.V("doc_id", docSnap.Ref.ID))
		}

		if s.RecallBotID == "" || s.TranscriptionStatus.IsTerminal() {
			continue
		}

		sources = append(sources, &s)
	}

	return sources, nil
}

func (r *sourceRepository) Update(ctx context.Context, source *model.Source) (*model.Source, error) {
	docID := fmt.Sprintf("%d", source.ID)
	docRef := r.client.Collection(r.sourcesCollection()).Doc(docID)

	// Check if document exists
	_, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "source not found", goerr.V("id", source.ID))
		}
		return nil, goerr.Wrap(err, "failed to check source existence", goerr.V("id", source.ID))
	}

	updated := &model.Source{
		ID:                  source.ID,
		ContainerID:         source.ContainerID,
		Kind:                source.Kind,
		Name:                source.Name,
		RawContent:          source.RawContent,
		FileRef:             source.FileRef,
		RecallBotID:         source.RecallBotID,
		MeetingURL:          source.MeetingURL,
		Platform:            source.Platform,
		TranscriptionStatus: source.TranscriptionStatus,
		TranscriptionError:  source.TranscriptionError,
		CreatedAt:           source.CreatedAt,
		UpdatedAt:           time.Now().UTC(),
	}

	_, err = docRef.Set(ctx, updated)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update source", goerr.V("id", source.ID))
	}

	return updated, nil
}

func (r *sourceRepository) Delete(ctx context.Context, id int64) error {
	docID := fmt.Sprintf("%d", id)
	docRef := r.client.Collection(r.sourcesCollection()).Doc(docID)

	// Check if document exists
	_, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "source not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to check source existence", goerr.V("id", id))
	}

	_, err = docRef.Delete(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to delete source", goerr.V("id", id))
	}

	return nil
}

func (r *sourceRepository) DeleteByContainer(ctx context.Context, containerID model.ContainerID) error {
	iter := r.client.Collection(r.sourcesCollection()).
		Where("ContainerID", "==", string(containerID)).
		Documents(ctx)
	defer iter.Stop()

	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate sources", goerr.V("container_id", containerID))
		}

		if _, err := docSnap.Ref.Delete(ctx); err != nil {
			return goerr.Wrap(err, "failed to delete source", goerr.V("doc_id", docSnap.Ref.ID))
		}
	}

	return nil
}
