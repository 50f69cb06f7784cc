package cs_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/shopdesk/pkg/adapters/cs"
	"github.com/m-mizutani/shopdesk/pkg/domain/interfaces"
)

func newTestClient(t *testing.T) *cs.Client {
	t.Helper()
	bucket, ok := os.LookupEnv("TEST_CLOUD_STORAGE_BUCKET")
	if !ok {
		t.Skip("Skipping Cloud Storage test: TEST_CLOUD_STORAGE_BUCKET not set")
	}

	prefix := "shopdesk-test/" + time.Now().Format("20060102-150405.000000") + "/"
	client, err := cs.New(context.Background(), bucket, cs.WithPrefix(prefix))
	gt.NoError(t, err).Required()
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestClient_RequiresBucket(t *testing.T) {
	_, err := cs.New(context.Background(), "")
	gt.Error(t, err)
}

func TestClient_PutGetDelete(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	gt.NoError(t, client.Put(ctx, "accessToken", []byte("tok"))).Required()

	data, err := client.Get(ctx, "accessToken")
	gt.NoError(t, err).Required()
	gt.Equal(t, string(data), "tok")

	gt.NoError(t, client.Delete(ctx, "accessToken"))
	_, err = client.Get(ctx, "accessToken")
	gt.Equal(t, err, interfaces.ErrStorageKeyNotFound)

	gt.NoError(t, client.Delete(ctx, "accessToken"))
}

func TestClient_ObjectPath(t *testing.T) {
	client := newTestClient(t)
	gt.S(t, client.ObjectPath("exports/a.csv")).Contains("shopdesk-test/")
}
