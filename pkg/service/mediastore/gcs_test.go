package mediastore_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/memora-app/memora/pkg/service/mediastore"
)

func TestNewRequiresBucket(t *testing.T) {
	_, err := mediastore.New(context.Background(), "")
	gt.Error(t, err)
}

func TestGCSUpload(t *testing.T) {
	bucket, ok := os.LookupEnv("TEST_STORAGE_BUCKET")
	if !ok {
		t.Skip("TEST_STORAGE_BUCKET is not set")
	}

	ctx := context.Background()
	store, err := mediastore.New(ctx, bucket)
	gt.NoError(t, err).Required()
	defer store.Close()

	objectName := fmt.Sprintf("test/%d/note.txt", time.Now().UnixNano())
	body := []byte("uploaded media body")
	gt.NoError(t, store.Upload(ctx, objectName, bytes.NewReader(body), "text/plain"))

	url, err := store.SignedURL(ctx, objectName, time.Minute)
	gt.NoError(t, err).Required()
	gt.String(t, url).Contains(objectName)
}
