package order

import (
	"net/url"
	"strconv"
	"time"

	"github.com/m-mizutani/shopdesk/pkg/domain/types"
)

// Status is the fulfillment position of an order
type Status string

const (
	StatusNew        Status = "new"
	StatusProcessing Status = "processing"
	StatusFulfilled  Status = "fulfilled"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

var allStatuses = []Status{
	StatusNew,
	StatusProcessing,
	StatusFulfilled,
	StatusCompleted,
	StatusCancelled,
}

// Statuses returns every known order status
func Statuses() []Status {
	return append([]Status(nil), allStatuses...)
}

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	for _, v := range allStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsFinal reports whether no further transition is expected
func (s Status) IsFinal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Order is a marketplace order
type Order struct {
	ID           types.OrderID `json:"id"`
	EbayOrderID  string        `json:"ebay_order_id,omitempty"`
	BuyerName    string        `json:"buyer_name,omitempty"`
	BuyerEmail   string        `json:"buyer_email,omitempty"`
	Status       Status        `json:"order_status"`
	Total        float64       `json:"order_total"`
	Currency     string        `json:"currency,omitempty"`
	Profit       float64       `json:"profit"`
	ShippingCost float64       `json:"shipping_cost"`
	TaxAmount    float64       `json:"tax_amount"`
	Items        []Item        `json:"items,omitempty"`
	Fulfillment  *Fulfillment  `json:"fulfillment,omitempty"`
	OrderDate    *time.Time    `json:"order_date,omitempty"`
	PaymentDate  *time.Time    `json:"payment_date,omitempty"`
	ShipDate     *time.Time    `json:"ship_date,omitempty"`
	DeliveryDate *time.Time    `json:"delivery_date,omitempty"`
}

// Subtotal sums item prices times quantities
func (o *Order) Subtotal() float64 {
	var sum float64
	for _, item := range o.Items {
		sum += item.Price * float64(item.Quantity)
	}
	return sum
}

// Item is a line of an order
type Item struct {
	SKU       string  `json:"sku,omitempty"`
	Title     string  `json:"title"`
	Variation string  `json:"variation,omitempty"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	ImageURL  string  `json:"image_url,omitempty"`
}

// Input is the payload for creating or updating an order
type Input struct {
	EbayOrderID  *string  `json:"ebay_order_id,omitempty"`
	BuyerName    *string  `json:"buyer_name,omitempty"`
	BuyerEmail   *string  `json:"buyer_email,omitempty"`
	Total        *float64 `json:"order_total,omitempty"`
	Currency     *string  `json:"currency,omitempty"`
	ShippingCost *float64 `json:"shipping_cost,omitempty"`
	TaxAmount    *float64 `json:"tax_amount,omitempty"`
	Items        []Item   `json:"items,omitempty"`
}

// StatusUpdate is the payload for PUT /orders/{id}/status
type StatusUpdate struct {
	Status Status `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

// ListFilter narrows GET /orders
type ListFilter struct {
	Status   Status
	Search   string
	DateFrom string
	DateTo   string
	Page     int
	PageSize int
}

// Query encodes the filter, leaving out zero values
func (f ListFilter) Query() url.Values {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.DateFrom != "" {
		q.Set("date_from", f.DateFrom)
	}
	if f.DateTo != "" {
		q.Set("date_to", f.DateTo)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(f.PageSize))
	}
	return q
}
