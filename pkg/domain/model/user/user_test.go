package user_test

import (
	"encoding/json"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/shopdesk/pkg/domain/model/user"
	"github.com/m-mizutani/shopdesk/pkg/domain/types"
)

func TestUser_Decode(t *testing.T) {
	raw := `{
		"id": 12,
		"email": "owner@example.com",
		"full_name": "Shop Owner",
		"company_name": "Acme",
		"role": "admin",
		"ebay_enabled": true,
		"monitored_products_count": 31,
		"orders_count": 4,
		"created_at": "2024-03-01T10:00:00Z"
	}`

	var u user.User
	gt.NoError(t, json.Unmarshal([]byte(raw), &u))
	gt.Equal(t, u.ID, types.UserID("12"))
	gt.Equal(t, u.FullName, "Shop Owner")
	gt.True(t, u.EbayEnabled)
	gt.False(t, u.AmazonEnabled)
	gt.Equal(t, u.MonitoredProductsCount, 31)
	gt.True(t, u.IsAdministrator())
	gt.V(t, u.CreatedAt).NotNil()
	gt.V(t, u.LastLogin).Nil()
}

func TestUser_DisplayName(t *testing.T) {
	u := &user.User{Email: "a@example.com"}
	gt.Equal(t, u.DisplayName(), "a@example.com")

	u.FullName = "Alice"
	gt.Equal(t, u.DisplayName(), "Alice")
}

func TestProfileUpdate_OnlySetFieldsAreSent(t *testing.T) {
	name := "A"
	update := user.ProfileUpdate{FullName: &name}

	data, err := json.Marshal(update)
	gt.NoError(t, err)
	gt.Equal(t, string(data), `{"full_name":"A"}`)
	gt.NoError(t, update.Validate())

	gt.Error(t, (&user.ProfileUpdate{}).Validate())
}

func TestRegistration_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		r := user.Registration{Email: "new@example.com", Password: "s3cret"}
		gt.NoError(t, r.Validate())
	})

	t.Run("missing email", func(t *testing.T) {
		r := user.Registration{Password: "s3cret"}
		gt.Error(t, r.Validate())
	})

	t.Run("malformed email", func(t *testing.T) {
		r := user.Registration{Email: "not-an-email", Password: "s3cret"}
		gt.Error(t, r.Validate())
	})

	t.Run("missing password", func(t *testing.T) {
		r := user.Registration{Email: "new@example.com"}
		gt.Error(t, r.Validate())
	})
}
