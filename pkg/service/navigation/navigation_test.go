package navigation_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/shopdesk/pkg/service/navigation"
)

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	nav := navigation.NewRecorder("/login", "/orders")

	gt.Equal(t, nav.CurrentPath(ctx), "/orders")
	nav.GoToLogin(ctx)
	gt.Equal(t, nav.CurrentPath(ctx), "/login")
	gt.Equal(t, nav.Redirects(), 1)

	nav.SetPath("/products")
	gt.Equal(t, nav.Redirects(), 1)
	gt.Equal(t, nav.CurrentPath(ctx), "/products")
}

func TestTerminal_PrintsOnce(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	nav := navigation.NewTerminal(&buf, "/login", "orders list")

	gt.Equal(t, nav.CurrentPath(ctx), "orders list")
	nav.GoToLogin(ctx)
	nav.GoToLogin(ctx)

	gt.S(t, buf.String()).Contains("shopdesk login")
	gt.Equal(t, bytes.Count(buf.Bytes(), []byte("shopdesk login")), 1)
}

func TestScoped(t *testing.T) {
	nav := navigation.NewScoped("/login")

	t.Run("redirect is per request", func(t *testing.T) {
		ctx1, r1 := navigation.WithRequest(context.Background(), "/api/v1/orders")
		ctx2, r2 := navigation.WithRequest(context.Background(), "/api/v1/products")

		gt.Equal(t, nav.CurrentPath(ctx1), "/api/v1/orders")
		nav.GoToLogin(ctx1)

		loc, ok := r1.Location()
		gt.True(t, ok)
		gt.Equal(t, loc, "/login")
		gt.Equal(t, nav.CurrentPath(ctx1), "/login")

		_, ok = r2.Location()
		gt.False(t, ok)
		gt.Equal(t, nav.CurrentPath(ctx2), "/api/v1/products")
	})

	t.Run("no request scope is a no-op", func(t *testing.T) {
		ctx := context.Background()
		gt.Equal(t, nav.CurrentPath(ctx), "")
		nav.GoToLogin(ctx)
	})
}
