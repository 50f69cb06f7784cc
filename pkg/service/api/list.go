package api

import (
	"context"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
)

// Page is one page of a list endpoint
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// decodePage accepts a bare JSON array or an object wrapping the items in
// "items", "data" or "results"
func decodePage[T any](body []byte) (*Page[T], error) {
	var items []T
	if err := json.Unmarshal(body, &items); err == nil {
		return &Page[T]{Items: items, Total: len(items)}, nil
	}

	var env struct {
		Items   []T `json:"items"`
		Data    []T `json:"data"`
		Results []T `json:"results"`
		Total   int `json:"total"`
		Count   int `json:"count"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, goerr.Wrap(err, "failed to decode list response")
	}

	page := &Page[T]{Total: env.Total}
	switch {
	case env.Items != nil:
		page.Items = env.Items
	case env.Data != nil:
		page.Items = env.Data
	default:
		page.Items = env.Results
	}
	if page.Total == 0 {
		page.Total = env.Count
	}
	if page.Total == 0 {
		page.Total = len(page.Items)
	}
	return page, nil
}

func listPage[T any](ctx context.Context, c *Client, req *Request) (*Page[T], error) {
	resp, err := c.Do(ctx, req, nil)
	if err != nil {
		return nil, err
	}

	page, err := decodePage[T](resp.Body)
	if err != nil {
		return nil, &Error{
			StatusCode: resp.StatusCode,
			Message:    FallbackMessage,
			Cause: goerr.Wrap(err, "unexpected list payload",
				goerr.T(apperr.ErrTagServer),
				goerr.TV(apperr.MethodKey, req.Method),
				goerr.TV(apperr.PathKey, req.Path)),
		}
	}
	return page, nil
}
