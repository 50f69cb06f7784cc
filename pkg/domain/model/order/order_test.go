package order_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/shopdesk/pkg/domain/model/order"
	"github.com/m-mizutani/shopdesk/pkg/domain/types"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
)

func TestOrder_Decode(t *testing.T) {
	raw := `{
		"id": "ord-1",
		"ebay_order_id": "12-34",
		"buyer_name": "Bob",
		"order_status": "processing",
		"order_total": 45.5,
		"profit": 12.25,
		"items": [
			{"sku": "A", "title": "Lamp", "quantity": 2, "price": 10},
			{"sku": "B", "title": "Bulb", "quantity": 1, "price": 5.5}
		],
		"order_date": "2024-05-01T09:00:00Z"
	}`

	var o order.Order
	gt.NoError(t, json.Unmarshal([]byte(raw), &o))
	gt.Equal(t, o.ID, types.OrderID("ord-1"))
	gt.Equal(t, o.Status, order.StatusProcessing)
	gt.A(t, o.Items).Length(2)
	gt.Equal(t, o.Subtotal(), 25.5)
	gt.V(t, o.Fulfillment).Nil()
}

func TestStatus(t *testing.T) {
	gt.True(t, order.StatusNew.IsValid())
	gt.False(t, order.Status("shipped").IsValid())
	gt.True(t, order.StatusCancelled.IsFinal())
	gt.False(t, order.StatusFulfilled.IsFinal())
	gt.A(t, order.Statuses()).Length(5)
}

func TestFulfillment_Validate(t *testing.T) {
	testCases := []struct {
		name  string
		input order.Fulfillment
		valid bool
	}{
		{"complete", order.Fulfillment{Carrier: "UPS", TrackingNumber: "1Z999"}, true},
		{"no carrier", order.Fulfillment{TrackingNumber: "1Z999"}, false},
		{"no tracking number", order.Fulfillment{Carrier: "UPS"}, false},
		{"blank tracking number", order.Fulfillment{Carrier: "UPS", TrackingNumber: "  "}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.input.Validate()
			if tc.valid {
				gt.NoError(t, err)
				return
			}
			gt.Error(t, err)
			gt.True(t, errors.Is(err, apperr.ErrMissingTracking))
		})
	}
}

func TestTracking_Latest(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	tr := order.Tracking{Events: []order.TrackingEvent{
		{Date: base, Description: "Label created"},
		{Date: base.Add(48 * time.Hour), Description: "Delivered"},
		{Date: base.Add(24 * time.Hour), Description: "In transit"},
	}}

	latest := tr.Latest()
	gt.V(t, latest).NotNil()
	gt.Equal(t, latest.Description, "Delivered")

	gt.V(t, (&order.Tracking{}).Latest()).Nil()
}

func TestListFilter_Query(t *testing.T) {
	q := order.ListFilter{Status: order.StatusNew, DateFrom: "2024-01-01", PageSize: 20}.Query()
	gt.Equal(t, q.Get("status"), "new")
	gt.Equal(t, q.Get("date_from"), "2024-01-01")
	gt.Equal(t, q.Get("page_size"), "20")
	gt.False(t, q.Has("search"))
}
