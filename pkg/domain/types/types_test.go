package types_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/shopdesk/pkg/domain/types"
)

func TestNewRequestID(t *testing.T) {
	ctx := context.Background()
	id1 := types.NewRequestID(ctx)
	id2 := types.NewRequestID(ctx)

	gt.True(t, id1.IsValid())
	gt.True(t, id2.IsValid())
	gt.NotEqual(t, id1, id2)
	gt.False(t, types.RequestID("").IsValid())
	gt.False(t, types.RequestID("not-a-uuid").IsValid())
}

func TestIDUnmarshal(t *testing.T) {
	var v struct {
		User    types.UserID    `json:"user"`
		Product types.ProductID `json:"product"`
		Order   types.OrderID   `json:"order"`
	}

	t.Run("numbers", func(t *testing.T) {
		gt.NoError(t, json.Unmarshal([]byte(`{"user":42,"product":7,"order":1001}`), &v))
		gt.Equal(t, v.User, types.UserID("42"))
		gt.Equal(t, v.Product, types.ProductID("7"))
		gt.Equal(t, v.Order, types.OrderID("1001"))
	})

	t.Run("strings", func(t *testing.T) {
		gt.NoError(t, json.Unmarshal([]byte(`{"user":"u-1","product":"p-1","order":"o-1"}`), &v))
		gt.Equal(t, v.User, types.UserID("u-1"))
		gt.Equal(t, v.Product, types.ProductID("p-1"))
		gt.Equal(t, v.Order, types.OrderID("o-1"))
	})

	t.Run("null", func(t *testing.T) {
		var u struct {
			ID types.UserID `json:"id"`
		}
		gt.NoError(t, json.Unmarshal([]byte(`{"id":null}`), &u))
		gt.Equal(t, u.ID, types.UserID(""))
	})

	t.Run("invalid", func(t *testing.T) {
		var u struct {
			ID types.UserID `json:"id"`
		}
		gt.Error(t, json.Unmarshal([]byte(`{"id":{"x":1}}`), &u))
	})
}

func TestProfileValidate(t *testing.T) {
	gt.NoError(t, types.DefaultProfile.Validate())
	gt.NoError(t, types.Profile("staging_eu-1").Validate())
	gt.Error(t, types.Profile("").Validate())
	gt.Error(t, types.Profile("../etc").Validate())
	gt.Error(t, types.Profile("a/b").Validate())
}
