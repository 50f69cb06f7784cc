package catalog_test

import (
	"encoding/json"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/shopdesk/pkg/domain/model/catalog"
	"github.com/m-mizutani/shopdesk/pkg/domain/types"
)

func TestProduct_Margin(t *testing.T) {
	p := catalog.Product{Price: 200, Cost: 150}
	gt.Equal(t, p.Margin(), 25.0)

	gt.Equal(t, (&catalog.Product{}).Margin(), 0.0)
}

func TestProduct_DecodeNumericID(t *testing.T) {
	var p catalog.Product
	gt.NoError(t, json.Unmarshal([]byte(`{"id":7,"title":"Lamp","price":19.5,"quantity":3}`), &p))
	gt.Equal(t, p.ID, types.ProductID("7"))
	gt.Equal(t, p.Title, "Lamp")
}

func TestListFilter_Query(t *testing.T) {
	q := catalog.ListFilter{Search: "lamp", Page: 2}.Query()
	gt.Equal(t, q.Get("search"), "lamp")
	gt.Equal(t, q.Get("page"), "2")
	gt.False(t, q.Has("category"))
	gt.False(t, q.Has("page_size"))

	gt.Equal(t, len(catalog.ListFilter{}.Query()), 0)
}

func TestProductInput_PartialEncoding(t *testing.T) {
	price := 10.0
	data, err := json.Marshal(catalog.ProductInput{Price: &price})
	gt.NoError(t, err)
	gt.Equal(t, string(data), `{"price":10}`)
}
