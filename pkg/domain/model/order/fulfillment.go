package order

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
)

// Fulfillment is the shipping information attached when an order ships
type Fulfillment struct {
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"tracking_number"`
	Notes          string `json:"notes,omitempty"`
}

// Validate requires both tracking number and carrier
func (f *Fulfillment) Validate() error {
	if strings.TrimSpace(f.TrackingNumber) == "" || strings.TrimSpace(f.Carrier) == "" {
		return goerr.Wrap(apperr.ErrMissingTracking, "invalid fulfillment",
			goerr.V("carrier", f.Carrier),
			goerr.V("tracking_number", f.TrackingNumber))
	}
	return nil
}

// Tracking is the carrier tracking view of a shipped order
type Tracking struct {
	Carrier        string          `json:"carrier"`
	TrackingNumber string          `json:"tracking_number"`
	TrackingURL    string          `json:"tracking_url,omitempty"`
	Status         string          `json:"status,omitempty"`
	Events         []TrackingEvent `json:"events,omitempty"`
}

// Latest returns the newest event, or nil when there are none
func (t *Tracking) Latest() *TrackingEvent {
	var latest *TrackingEvent
	for i := range t.Events {
		if latest == nil || t.Events[i].Date.After(latest.Date) {
			latest = &t.Events[i]
		}
	}
	return latest
}

// TrackingEvent is one carrier scan
type TrackingEvent struct {
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Location    string    `json:"location,omitempty"`
}

// Detail is an order together with its tracking. Tracking is nil when the
// order has not shipped or the carrier lookup is unavailable.
type Detail struct {
	Order    *Order    `json:"order"`
	Tracking *Tracking `json:"tracking,omitempty"`
}
