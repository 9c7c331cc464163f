package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/memora-app/memora/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type containerRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newContainerRepository(client *firestore.Client) *containerRepository {
	return &containerRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *containerRepository) containersCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_containers"
	}
	return "containers"
}

func (r *containerRepository) Create(ctx context.Context, container *model.Container) (*model.Container, error) {
	now := time.Now().UTC()
	created := &model.Container{
		ID:        container.ID,
		Name:      container.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if created.ID == "" {
		created.ID = model.NewContainerID()
	}

	_, err := r.client.Collection(r.containersCollection()).Doc(string(created.ID)).Set(ctx, created)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create container", goerr.V("id", created.ID))
	}

	return created, nil
}

func (r *containerRepository) Get(ctx context.Context, id model.ContainerID) (*model.Container, error) {
	docSnap, err := r.client.Collection(r.containersCollection()).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "container not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get container", goerr.V("id", id))
	}

	var c model.Container
	if err := docSnap.DataTo(&c); err != nil {
		return nil, goerr.Wrap(err, "failed to decode container", goerr.V("id", id))
	}

	return &c, nil
}

func (r *containerRepository) List(ctx context.Context) ([]*model.Container, error) {
	iter := r.client.Collection(r.containersCollection()).Documents(ctx)
	defer iter.Stop()

	containers := make([]*model.Container, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate containers")
		}

		var c model.Container
		if err := docSnap.DataTo(&c); err != nil {
			return nil, goerr.Wrap(err, "failed to decode container", goerr.V("doc_id", docSnap.Ref.ID))
		}

		containers = append(containers, &c)
	}

	return containers, nil
}

func (r *containerRepository) Delete(ctx context.Context, id model.ContainerID) error {
	docRef := r.client.Collection(r.containersCollection()).Doc(string(id))

	// Check if document exists
	_, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "container not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to check container existence", goerr.V("id", id))
	}

	_, err = docRef.Delete(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to delete container", goerr.V("id", id))
	}

	return nil
}
