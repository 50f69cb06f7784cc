package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/domain/model/catalog"
	"github.com/m-mizutani/shopdesk/pkg/domain/types"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
)

// ProductsAPI groups the /products endpoints
type ProductsAPI struct {
	client *Client
}

// Products returns the /products endpoint group
func (c *Client) Products() *ProductsAPI {
	return &ProductsAPI{client: c}
}

func productPath(id types.ProductID) (string, error) {
	if id == "" {
		return "", goerr.Wrap(apperr.ErrEmptyID, "product ID is empty")
	}
	return "/products/" + url.PathEscape(id.String()), nil
}

// List returns products matching filter
func (a *ProductsAPI) List(ctx context.Context, filter catalog.ListFilter) (*Page[catalog.Product], error) {
	return listPage[catalog.Product](ctx, a.client, &Request{
		Method: http.MethodGet,
		Path:   "/products",
		Query:  filter.Query(),
	})
}

// Get returns one product
func (a *ProductsAPI) Get(ctx context.Context, id types.ProductID) (*catalog.Product, error) {
	path, err := productPath(id)
	if err != nil {
		return nil, err
	}

	var p catalog.Product
	if _, err := a.client.Do(ctx, &Request{Method: http.MethodGet, Path: path}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create adds a product
func (a *ProductsAPI) Create(ctx context.Context, input catalog.ProductInput) (*catalog.Product, error) {
	if input.Title == nil || *input.Title == "" {
		return nil, goerr.New("product title is required", goerr.T(apperr.ErrTagRequiredField))
	}

	var p catalog.Product
	if _, err := a.client.Do(ctx, &Request{Method: http.MethodPost, Path: "/products", Body: input}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update changes the given fields of a product
func (a *ProductsAPI) Update(ctx context.Context, id types.ProductID, input catalog.ProductInput) (*catalog.Product, error) {
	path, err := productPath(id)
	if err != nil {
		return nil, err
	}

	var p catalog.Product
	if _, err := a.client.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: input}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes a product
func (a *ProductsAPI) Delete(ctx context.Context, id types.ProductID) error {
	path, err := productPath(id)
	if err != nil {
		return err
	}

	_, err = a.client.Do(ctx, &Request{Method: http.MethodDelete, Path: path}, nil)
	return err
}
