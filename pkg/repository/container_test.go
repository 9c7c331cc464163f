package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/memora-app/memora/pkg/domain/interfaces"
	"github.com/memora-app/memora/pkg/domain/model"
	"github.com/memora-app/memora/pkg/repository/firestore"
	"github.com/memora-app/memora/pkg/repository/memory"
)

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
	if databaseID == "" {
		t.Skip("TEST_FIRESTORE_DATABASE_ID not set")
	}

	ctx := context.Background()
	prefix := fmt.Sprintf("test_%d", time.Now().UnixNano())
	repo, err := firestore.New(ctx, projectID, databaseID, firestore.WithCollectionPrefix(prefix))
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

func isNotFound(err error) bool {
	return errors.Is(err, memory.ErrNotFound) || errors.Is(err, firestore.ErrNotFound)
}

func runContainerRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create assigns ID and timestamps", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Container().Create(ctx, &model.Container{
			Name: "Work Notes",
		})
		gt.NoError(t, err).Required()

		gt.String(t, string(created.ID)).NotEqual("")
		gt.Value(t, created.Name).Equal("Work Notes")
		gt.Bool(t, created.CreatedAt.IsZero()).False()
	})

	t.Run("Get retrieves created container", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Container().Create(ctx, &model.Container{
			Name: "Research",
		})
		gt.NoError(t, err).Required()

		got, err := repo.Container().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.ID).Equal(created.ID)
		gt.Value(t, got.Name).Equal("Research")
	})

	t.Run("Get returns not found for unknown ID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Container().Get(ctx, model.NewContainerID())
		gt.Value(t, err).NotNil()
		if !isNotFound(err) {
			t.Errorf("expected not found error, got %v", err)
		}
	})

	t.Run("List returns all containers", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for _, name := range []string{"A", "B", "C"} {
			_, err := repo.Container().Create(ctx, &model.Container{Name: name})
			gt.NoError(t, err).Required()
		}

		containers, err := repo.Container().List(ctx)
		gt.NoError(t, err).Required()
		gt.Number(t, len(containers)).GreaterOrEqual(3)
	})

	t.Run("Delete removes container", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Container().Create(ctx, &model.Container{Name: "Temp"})
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Container().Delete(ctx, created.ID))

		_, err = repo.Container().Get(ctx, created.ID)
		gt.Value(t, err).NotNil()
	})

	t.Run("Delete returns not found for unknown ID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		err := repo.Container().Delete(ctx, model.NewContainerID())
		gt.Value(t, err).NotNil()
		if !isNotFound(err) {
			t.Errorf("expected not found error, got %v", err)
		}
	})
}

func TestContainerRepository_Memory(t *testing.T) {
	runContainerRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestContainerRepository_Firestore(t *testing.T) {
	runContainerRepositoryTest(t, newFirestoreRepository)
}
