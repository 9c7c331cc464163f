package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/memora-app/memora/pkg/domain/interfaces"
	"github.com/memora-app/memora/pkg/domain/model"
	"github.com/memora-app/memora/pkg/domain/types"
	"github.com/memora-app/memora/pkg/repository/memory"
)

func runTranscriptRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	newSource := func(t *testing.T, repo interfaces.Repository) *model.Source {
		t.Helper()
		source, err := repo.Source().Create(context.Background(), &model.Source{
			ContainerID: model.NewContainerID(),
			Kind:        types.SourceKindMeeting,
			Name:        "Weekly sync",
		})
		gt.NoError(t, err).Required()
		return source
	}

	t.Run("Put stores transcript keyed by source", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		source := newSource(t, repo)

		stored, err := repo.Transcript().Put(ctx, &model.Transcript{
			SourceID:     source.ID,
			Content:      "[00:00] Speaker 1: Hello everyone.",
			LanguageCode: "en",
			Speakers:     []string{"Speaker 1"},
			WordCount:    2,
			DurationSec:  4.2,
		})
		gt.NoError(t, err).Required()
		gt.Bool(t, stored.CreatedAt.IsZero()).False()

		got, err := repo.Transcript().Get(ctx, source.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Content).Equal("[00:00] Speaker 1: Hello everyone.")
		gt.Value(t, got.LanguageCode).Equal("en")
		gt.Array(t, got.Speakers).Length(1)
	})

	t.Run("Put replaces previous transcript", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		source := newSource(t, repo)

		first, err := repo.Transcript().Put(ctx, &model.Transcript{
			SourceID: source.ID,
			Content:  "first pass",
		})
		gt.NoError(t, err).Required()

		_, err = repo.Transcript().Put(ctx, &model.Transcript{
			SourceID: source.ID,
			Content:  "second pass",
		})
		gt.NoError(t, err).Required()

		got, err := repo.Transcript().Get(ctx, source.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Content).Equal("second pass")
		gt.Value(t, got.CreatedAt.Unix()).Equal(first.CreatedAt.Unix())
	})

	t.Run("Get returns not found without transcript", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Transcript().Get(ctx, 999999999)
		gt.Value(t, err).NotNil()
		if !isNotFound(err) {
			t.Errorf("expected not found error, got %v", err)
		}
	})

	t.Run("Delete removes transcript", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		source := newSource(t, repo)

		_, err := repo.Transcript().Put(ctx, &model.Transcript{
			SourceID: source.ID,
			Content:  "to be removed",
		})
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Transcript().Delete(ctx, source.ID))

		_, err = repo.Transcript().Get(ctx, source.ID)
		gt.Value(t, err).NotNil()
	})
}

func TestTranscriptRepository_Memory(t *testing.T) {
	runTranscriptRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestTranscriptRepository_Firestore(t *testing.T) {
	runTranscriptRepositoryTest(t, newFirestoreRepository)
}
