package memory_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/shopdesk/pkg/adapters/memory"
	"github.com/m-mizutani/shopdesk/pkg/domain/interfaces"
)

func TestMemoryClient_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	client := memory.New()

	gt.NoError(t, client.Put(ctx, "accessToken", []byte("tok-1")))

	retrieved, err := client.Get(ctx, "accessToken")
	gt.NoError(t, err)
	gt.Equal(t, string(retrieved), "tok-1")

	gt.NoError(t, client.Delete(ctx, "accessToken"))
	_, err = client.Get(ctx, "accessToken")
	gt.Equal(t, err, interfaces.ErrStorageKeyNotFound)

	// deleting again is fine
	gt.NoError(t, client.Delete(ctx, "accessToken"))
}

func TestMemoryClient_PutOverwrite(t *testing.T) {
	ctx := context.Background()
	client := memory.New()

	gt.NoError(t, client.Put(ctx, "k", []byte("first")))
	gt.NoError(t, client.Put(ctx, "k", []byte("second")))

	retrieved, err := client.Get(ctx, "k")
	gt.NoError(t, err)
	gt.Equal(t, string(retrieved), "second")
}

func TestMemoryClient_DataIsolation(t *testing.T) {
	ctx := context.Background()
	client := memory.New()

	original := []byte("original")
	gt.NoError(t, client.Put(ctx, "k", original))
	original[0] = 'X'

	retrieved, err := client.Get(ctx, "k")
	gt.NoError(t, err)
	gt.Equal(t, retrieved[0], byte('o'))

	retrieved[0] = 'Y'
	again, err := client.Get(ctx, "k")
	gt.NoError(t, err)
	gt.Equal(t, again[0], byte('o'))
}

func TestMemoryClient_Keys(t *testing.T) {
	ctx := context.Background()
	client := memory.New()

	gt.NoError(t, client.Put(ctx, "work/refreshToken", []byte("r")))
	gt.NoError(t, client.Put(ctx, "work/accessToken", []byte("a")))
	gt.NoError(t, client.Put(ctx, "accessToken", []byte("b")))

	gt.Equal(t, client.Keys("work/"), []string{"work/accessToken", "work/refreshToken"})
	gt.A(t, client.Keys("")).Length(3)
}
