package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/shopdesk/pkg/domain/model/analytics"
	"github.com/m-mizutani/shopdesk/pkg/domain/model/catalog"
	"github.com/m-mizutani/shopdesk/pkg/domain/model/order"
	"github.com/m-mizutani/shopdesk/pkg/domain/model/user"
	"github.com/m-mizutani/shopdesk/pkg/domain/types"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
)

func TestAuthAPI(t *testing.T) {
	srv := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/login", "/api/v1/auth/refresh":
			writeJSON(w, http.StatusOK, map[string]any{
				"access_token":  "acc",
				"refresh_token": "ref",
				"token_type":    "bearer",
				"user":          map[string]any{"id": 3, "email": "a@example.com"},
			})
		default:
			writeJSON(w, http.StatusOK, map[string]any{})
		}
	})
	client := newClient(t, srv)
	ctx := context.Background()

	t.Run("login", func(t *testing.T) {
		resp, err := client.Auth().Login(ctx, "a@example.com", "pw")
		gt.NoError(t, err).Required()
		gt.Equal(t, resp.AccessToken, "acc")
		gt.Equal(t, resp.Credential().RefreshToken, "ref")
		gt.Equal(t, resp.User.ID, types.UserID("3"))

		var body map[string]string
		gt.NoError(t, json.Unmarshal(srv.last().Body, &body))
		gt.Equal(t, body, map[string]string{"email": "a@example.com", "password": "pw"})
	})

	t.Run("refresh", func(t *testing.T) {
		_, err := client.Auth().Refresh(ctx, "ref")
		gt.NoError(t, err)
		gt.Equal(t, string(srv.last().Body), `{"refresh_token":"ref"}`)
	})

	t.Run("logout carries explicit token", func(t *testing.T) {
		gt.NoError(t, client.Auth().Logout(ctx, "old-token"))
		gt.Equal(t, srv.last().Path, "/api/v1/auth/logout")
		gt.Equal(t, srv.last().Header.Get("Authorization"), "Bearer old-token")
	})

	t.Run("reset password payload", func(t *testing.T) {
		gt.NoError(t, client.Auth().ResetPassword(ctx, "tkn", "newpw"))
		var body map[string]string
		gt.NoError(t, json.Unmarshal(srv.last().Body, &body))
		gt.Equal(t, body["token"], "tkn")
		gt.Equal(t, body["password"], "newpw")
	})

	t.Run("change password payload", func(t *testing.T) {
		gt.NoError(t, client.Auth().ChangePassword(ctx, "old", "new"))
		gt.Equal(t, srv.last().Path, "/api/v1/auth/change-password")
		var body map[string]string
		gt.NoError(t, json.Unmarshal(srv.last().Body, &body))
		gt.Equal(t, body, map[string]string{"old_password": "old", "new_password": "new"})
	})

	t.Run("forgot password", func(t *testing.T) {
		gt.NoError(t, client.Auth().ForgotPassword(ctx, "a@example.com"))
		gt.Equal(t, string(srv.last().Body), `{"email":"a@example.com"}`)
	})

	t.Run("register", func(t *testing.T) {
		_, err := client.Auth().Register(ctx, user.Registration{Email: "n@example.com", Password: "pw"})
		gt.NoError(t, err)
		gt.Equal(t, srv.last().Path, "/api/v1/auth/register")
	})
}

func TestUsersAPI_UpdateMeSendsOnlyGivenFields(t *testing.T) {
	srv := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": 1, "email": "a@example.com", "full_name": "A"})
	})
	client := newClient(t, srv)

	name := "A"
	u, err := client.Users().UpdateMe(context.Background(), user.ProfileUpdate{FullName: &name})
	gt.NoError(t, err).Required()
	gt.Equal(t, u.FullName, "A")
	gt.Equal(t, srv.last().Method, http.MethodPut)
	gt.Equal(t, string(srv.last().Body), `{"full_name":"A"}`)
}

func TestProductsAPI(t *testing.T) {
	srv := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/v1/products" && r.Method == http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]any{
				"items": []map[string]any{{"id": 1, "title": "Lamp"}, {"id": 2, "title": "Bulb"}},
				"total": 12,
			})
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			writeJSON(w, http.StatusOK, map[string]any{"id": 1, "title": "Lamp"})
		}
	})
	client := newClient(t, srv)
	ctx := context.Background()

	page, err := client.Products().List(ctx, catalog.ListFilter{Search: "la"})
	gt.NoError(t, err).Required()
	gt.A(t, page.Items).Length(2)
	gt.Equal(t, page.Total, 12)
	gt.Equal(t, srv.last().Query, "search=la")

	p, err := client.Products().Get(ctx, "1")
	gt.NoError(t, err).Required()
	gt.Equal(t, p.Title, "Lamp")

	gt.NoError(t, client.Products().Delete(ctx, "1"))
	gt.Equal(t, srv.last().Path, "/api/v1/products/1")

	_, err = client.Products().Get(ctx, "")
	gt.True(t, errors.Is(err, apperr.ErrEmptyID))

	_, err = client.Products().Create(ctx, catalog.ProductInput{})
	gt.Error(t, err)
}

func TestListAcceptsBareArray(t *testing.T) {
	srv := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{{"id": "o-1", "order_status": "new"}})
	})
	client := newClient(t, srv)

	page, err := client.Orders().List(context.Background(), order.ListFilter{})
	gt.NoError(t, err).Required()
	gt.A(t, page.Items).Length(1)
	gt.Equal(t, page.Total, 1)
	gt.Equal(t, page.Items[0].Status, order.StatusNew)
}

func TestOrdersAPI_Fulfill(t *testing.T) {
	srv := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": "o-1", "order_status": "fulfilled"})
	})
	client := newClient(t, srv)
	ctx := context.Background()

	t.Run("missing tracking sends nothing", func(t *testing.T) {
		_, err := client.Orders().Fulfill(ctx, "o-1", order.Fulfillment{Carrier: "UPS"})
		gt.True(t, errors.Is(err, apperr.ErrMissingTracking))
		gt.Equal(t, srv.count(), 0)
	})

	t.Run("complete fulfillment", func(t *testing.T) {
		o, err := client.Orders().Fulfill(ctx, "o-1", order.Fulfillment{Carrier: "UPS", TrackingNumber: "1Z"})
		gt.NoError(t, err).Required()
		gt.Equal(t, o.Status, order.StatusFulfilled)
		gt.Equal(t, srv.last().Path, "/api/v1/orders/o-1/fulfillment")
	})
}

func TestOrdersAPI_StatusAndCancel(t *testing.T) {
	srv := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": "o-1", "order_status": "cancelled"})
	})
	client := newClient(t, srv)
	ctx := context.Background()

	_, err := client.Orders().UpdateStatus(ctx, "o-1", order.StatusUpdate{Status: "shipped"})
	gt.Error(t, err)
	gt.Equal(t, srv.count(), 0)

	_, err = client.Orders().UpdateStatus(ctx, "o-1", order.StatusUpdate{Status: order.StatusProcessing})
	gt.NoError(t, err)
	gt.Equal(t, srv.last().Method, http.MethodPut)
	gt.Equal(t, srv.last().Path, "/api/v1/orders/o-1/status")

	_, err = client.Orders().Cancel(ctx, "o-1", "out of stock")
	gt.NoError(t, err)
	gt.Equal(t, string(srv.last().Body), `{"reason":"out of stock"}`)
}

func TestOrdersAPI_GetWithTracking(t *testing.T) {
	var trackingStatus atomic.Int32
	trackingStatus.Store(http.StatusOK)
	srv := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/tracking") {
			if code := int(trackingStatus.Load()); code != http.StatusOK {
				writeJSON(w, code, map[string]any{"detail": "no tracking"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"carrier":         "UPS",
				"tracking_number": "1Z",
				"events":          []map[string]any{{"date": "2024-05-01T00:00:00Z", "description": "Delivered"}},
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": "o-1", "order_status": "fulfilled"})
	})
	client := newClient(t, srv)
	ctx := context.Background()

	detail, err := client.Orders().GetWithTracking(ctx, "o-1")
	gt.NoError(t, err).Required()
	gt.NotNil(t, detail.Tracking)
	gt.Equal(t, detail.Tracking.Carrier, "UPS")

	trackingStatus.Store(http.StatusNotFound)
	detail, err = client.Orders().GetWithTracking(ctx, "o-1")
	gt.NoError(t, err).Required()
	gt.Equal(t, detail.Order.ID, types.OrderID("o-1"))
	gt.Nil(t, detail.Tracking)

	trackingStatus.Store(http.StatusInternalServerError)
	detail, err = client.Orders().GetWithTracking(ctx, "o-1")
	gt.NoError(t, err).Required()
	gt.Nil(t, detail.Tracking)
}

func TestAnalyticsAPI(t *testing.T) {
	srv := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/analytics/overview":
			writeJSON(w, http.StatusOK, map[string]any{"total_revenue": 1000.5, "total_orders": 10})
		case "/api/v1/analytics/export":
			_, _ = w.Write([]byte("csv-bytes"))
		default:
			writeJSON(w, http.StatusOK, []map[string]any{{"id": "p1", "title": "Lamp", "revenue": 10}})
		}
	})
	client := newClient(t, srv)
	ctx := context.Background()
	r := analytics.Range{Period: analytics.PeriodMonth}.WithDefaults()

	o, err := client.Analytics().Overview(ctx, r)
	gt.NoError(t, err).Required()
	gt.Equal(t, o.TotalOrders, 10)
	gt.S(t, srv.last().Query).Contains("period=month")

	top, err := client.Analytics().TopProducts(ctx, r)
	gt.NoError(t, err).Required()
	gt.A(t, top).Length(1)
	gt.S(t, srv.last().Query).Contains("limit=5")

	data, err := client.Analytics().Export(ctx, r, "csv")
	gt.NoError(t, err).Required()
	gt.Equal(t, string(data), "csv-bytes")
	gt.S(t, srv.last().Query).Contains("type=csv")

	_, err = client.Analytics().Export(ctx, r, "")
	gt.Error(t, err)
}

func TestDashboardAPI(t *testing.T) {
	srv := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/dashboard/stats" {
			writeJSON(w, http.StatusOK, map[string]any{"total_products": 4, "pending_orders": 2})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": []map[string]any{{"label": "Mon", "sales": 3}}})
	})
	client := newClient(t, srv)
	ctx := context.Background()

	stats, err := client.Dashboard().Stats(ctx)
	gt.NoError(t, err).Required()
	gt.Equal(t, stats.TotalProducts, 4)

	points, err := client.Dashboard().Chart(ctx, analytics.PeriodWeek)
	gt.NoError(t, err).Required()
	gt.A(t, points).Length(1)
	gt.Equal(t, srv.last().Query, "period=week")
}
