package user

import (
	"time"

	"github.com/m-mizutani/shopdesk/pkg/domain/types"
)

// User is the account returned by GET /users/me
type User struct {
	ID          types.UserID `json:"id"`
	Email       string       `json:"email"`
	FullName    string       `json:"full_name,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	CompanyName string       `json:"company_name,omitempty"`
	Bio         string       `json:"bio,omitempty"`
	Role        string       `json:"role,omitempty"`
	IsAdmin     bool         `json:"is_admin,omitempty"`

	// Marketplace integrations
	EbayEnabled   bool `json:"ebay_enabled"`
	AmazonEnabled bool `json:"amazon_enabled"`

	// Notification preferences
	EmailNotifications bool `json:"email_notifications"`
	OrderNotifications bool `json:"order_notifications"`
	InventoryAlerts    bool `json:"inventory_alerts"`
	PriceChangeAlerts  bool `json:"price_change_alerts"`

	// Counters
	MonitoredProductsCount int `json:"monitored_products_count"`
	OrdersCount            int `json:"orders_count"`

	CreatedAt *time.Time `json:"created_at,omitempty"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// DisplayName returns the full name, or the email when no name is set
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}

// IsAdministrator reports admin rights from either the flag or the role
func (u *User) IsAdministrator() bool {
	return u.IsAdmin || u.Role == "admin"
}

// ProfileUpdate is a partial update for PUT /users/me. Nil fields are not sent.
type ProfileUpdate struct {
	FullName    *string `json:"full_name,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	CompanyName *string `json:"company_name,omitempty"`
	Bio         *string `json:"bio,omitempty"`

	EmailNotifications *bool `json:"email_notifications,omitempty"`
	OrderNotifications *bool `json:"order_notifications,omitempty"`
	InventoryAlerts    *bool `json:"inventory_alerts,omitempty"`
	PriceChangeAlerts  *bool `json:"price_change_alerts,omitempty"`
}

// IsEmpty reports whether no field is set
func (p *ProfileUpdate) IsEmpty() bool {
	return p.FullName == nil && p.Phone == nil && p.CompanyName == nil && p.Bio == nil &&
		p.EmailNotifications == nil && p.OrderNotifications == nil &&
		p.InventoryAlerts == nil && p.PriceChangeAlerts == nil
}

// Registration is the payload for POST /auth/register
type Registration struct {
	Email       string `json:"email"`
	Password    string `json:"password" masq:"secret"`
	FullName    string `json:"full_name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
}
