package catalog

import (
	"net/url"
	"strconv"
	"time"

	"github.com/m-mizutani/shopdesk/pkg/domain/types"
)

// Product is a monitored marketplace listing
type Product struct {
	ID            types.ProductID `json:"id"`
	SKU           string          `json:"sku,omitempty"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	Category      string          `json:"category,omitempty"`
	Price         float64         `json:"price"`
	Cost          float64         `json:"cost,omitempty"`
	Currency      string          `json:"currency,omitempty"`
	Quantity      int             `json:"quantity"`
	ImageURL      string          `json:"image_url,omitempty"`
	SourceURL     string          `json:"source_url,omitempty"`
	EbayItemID    string          `json:"ebay_item_id,omitempty"`
	AmazonASIN    string          `json:"amazon_asin,omitempty"`
	Status        string          `json:"status,omitempty"`
	IsMonitored   bool            `json:"is_monitored"`
	CreatedAt     *time.Time      `json:"created_at,omitempty"`
	UpdatedAt     *time.Time      `json:"updated_at,omitempty"`
	LastCheckedAt *time.Time      `json:"last_checked_at,omitempty"`
}

// Margin returns the profit margin in percent, or 0 when price is unset
func (p *Product) Margin() float64 {
	if p.Price <= 0 {
		return 0
	}
	return (p.Price - p.Cost) / p.Price * 100
}

// ProductInput is the payload for create and update. Nil fields are not sent.
type ProductInput struct {
	SKU         *string  `json:"sku,omitempty"`
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Cost        *float64 `json:"cost,omitempty"`
	Quantity    *int     `json:"quantity,omitempty"`
	ImageURL    *string  `json:"image_url,omitempty"`
	SourceURL   *string  `json:"source_url,omitempty"`
	IsMonitored *bool    `json:"is_monitored,omitempty"`
}

// ListFilter narrows GET /products
type ListFilter struct {
	Search   string
	Category string
	Status   string
	Page     int
	PageSize int
}

// Query encodes the filter, leaving out zero values
func (f ListFilter) Query() url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(f.PageSize))
	}
	return q
}
