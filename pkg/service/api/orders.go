package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/domain/model/order"
	"github.com/m-mizutani/shopdesk/pkg/domain/types"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
)

// OrdersAPI groups the /orders endpoints
type OrdersAPI struct {
	client *Client
}

// Orders returns the /orders endpoint group
func (c *Client) Orders() *OrdersAPI {
	return &OrdersAPI{client: c}
}

func orderPath(id types.OrderID, sub string) (string, error) {
	if id == "" {
		return "", goerr.Wrap(apperr.ErrEmptyID, "order ID is empty")
	}
	return "/orders/" + url.PathEscape(id.String()) + sub, nil
}

// List returns orders matching filter
func (a *OrdersAPI) List(ctx context.Context, filter order.ListFilter) (*Page[order.Order], error) {
	return listPage[order.Order](ctx, a.client, &Request{
		Method: http.MethodGet,
		Path:   "/orders",
		Query:  filter.Query(),
	})
}

// Get returns one order
func (a *OrdersAPI) Get(ctx context.Context, id types.OrderID) (*order.Order, error) {
	return a.orderCall(ctx, http.MethodGet, id, "", nil)
}

// Create records an order
func (a *OrdersAPI) Create(ctx context.Context, input order.Input) (*order.Order, error) {
	var o order.Order
	if _, err := a.client.Do(ctx, &Request{Method: http.MethodPost, Path: "/orders", Body: input}, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// Update changes the given fields of an order
func (a *OrdersAPI) Update(ctx context.Context, id types.OrderID, input order.Input) (*order.Order, error) {
	return a.orderCall(ctx, http.MethodPut, id, "", input)
}

// Cancel cancels an order with an optional reason
func (a *OrdersAPI) Cancel(ctx context.Context, id types.OrderID, reason string) (*order.Order, error) {
	return a.orderCall(ctx, http.MethodPost, id, "/cancel", map[string]string{"reason": reason})
}

// UpdateStatus moves an order to a new status
func (a *OrdersAPI) UpdateStatus(ctx context.Context, id types.OrderID, update order.StatusUpdate) (*order.Order, error) {
	if !update.Status.IsValid() {
		return nil, goerr.New("unknown order status",
			goerr.T(apperr.ErrTagInvalidInput),
			goerr.TV(apperr.OrderIDKey, id.String()),
			goerr.V("status", update.Status))
	}
	return a.orderCall(ctx, http.MethodPut, id, "/status", update)
}

// Fulfill attaches shipping information. Tracking number and carrier are
// checked before any request is sent.
func (a *OrdersAPI) Fulfill(ctx context.Context, id types.OrderID, f order.Fulfillment) (*order.Order, error) {
	if err := f.Validate(); err != nil {
		return nil, goerr.Wrap(err, "fulfillment rejected", goerr.TV(apperr.OrderIDKey, id.String()))
	}
	return a.orderCall(ctx, http.MethodPost, id, "/fulfillment", f)
}

// Tracking returns carrier tracking for a shipped order
func (a *OrdersAPI) Tracking(ctx context.Context, id types.OrderID) (*order.Tracking, error) {
	path, err := orderPath(id, "/tracking")
	if err != nil {
		return nil, err
	}

	var t order.Tracking
	if _, err := a.client.Do(ctx, &Request{Method: http.MethodGet, Path: path}, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetWithTracking loads an order and, best effort, its tracking. A missing or
// failing tracking lookup leaves Tracking nil.
func (a *OrdersAPI) GetWithTracking(ctx context.Context, id types.OrderID) (*order.Detail, error) {
	o, err := a.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &order.Detail{Order: o}
	tracking, err := a.Tracking(ctx, id)
	switch {
	case err == nil:
		detail.Tracking = tracking
	case StatusCode(err) == http.StatusNotFound:
	default:
		ctxlog.From(ctx).Warn("tracking lookup failed", "order_id", id, "error", err)
	}

	return detail, nil
}

func (a *OrdersAPI) orderCall(ctx context.Context, method string, id types.OrderID, sub string, body any) (*order.Order, error) {
	path, err := orderPath(id, sub)
	if err != nil {
		return nil, err
	}

	var o order.Order
	if _, err := a.client.Do(ctx, &Request{Method: method, Path: path, Body: body}, &o); err != nil {
		return nil, err
	}
	return &o, nil
}
