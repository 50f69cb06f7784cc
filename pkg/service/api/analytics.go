package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/domain/model/analytics"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
)

// DashboardAPI groups the /dashboard endpoints
type DashboardAPI struct {
	client *Client
}

// Dashboard returns the /dashboard endpoint group
func (c *Client) Dashboard() *DashboardAPI {
	return &DashboardAPI{client: c}
}

// Stats returns the dashboard summary
func (a *DashboardAPI) Stats(ctx context.Context) (*analytics.DashboardStats, error) {
	var s analytics.DashboardStats
	if _, err := a.client.Do(ctx, &Request{Method: http.MethodGet, Path: "/dashboard/stats"}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Chart returns the sales chart for period
func (a *DashboardAPI) Chart(ctx context.Context, period analytics.Period) ([]analytics.ChartPoint, error) {
	q := url.Values{}
	if period != "" {
		q.Set("period", string(period))
	}

	page, err := listPage[analytics.ChartPoint](ctx, a.client, &Request{
		Method: http.MethodGet,
		Path:   "/dashboard/chart",
		Query:  q,
	})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// AnalyticsAPI groups the /analytics endpoints
type AnalyticsAPI struct {
	client *Client
}

// Analytics returns the /analytics endpoint group
func (c *Client) Analytics() *AnalyticsAPI {
	return &AnalyticsAPI{client: c}
}

// Overview returns the headline numbers for r
func (a *AnalyticsAPI) Overview(ctx context.Context, r analytics.Range) (*analytics.Overview, error) {
	var o analytics.Overview
	if _, err := a.client.Do(ctx, &Request{Method: http.MethodGet, Path: "/analytics/overview", Query: r.Query()}, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// Revenue returns the revenue series for r
func (a *AnalyticsAPI) Revenue(ctx context.Context, r analytics.Range) ([]analytics.RevenuePoint, error) {
	return listItems[analytics.RevenuePoint](ctx, a.client, "/analytics/revenue", r)
}

// TopProducts returns the best selling products
func (a *AnalyticsAPI) TopProducts(ctx context.Context, r analytics.Range) ([]analytics.ProductStat, error) {
	return listItems[analytics.ProductStat](ctx, a.client, "/analytics/top-products", r)
}

// TopCategories returns the best selling categories
func (a *AnalyticsAPI) TopCategories(ctx context.Context, r analytics.Range) ([]analytics.CategoryStat, error) {
	return listItems[analytics.CategoryStat](ctx, a.client, "/analytics/top-categories", r)
}

// ProfitableProducts returns the products with the highest profit
func (a *AnalyticsAPI) ProfitableProducts(ctx context.Context, r analytics.Range) ([]analytics.ProductStat, error) {
	return listItems[analytics.ProductStat](ctx, a.client, "/analytics/profitable-products", r)
}

// Export downloads the server generated export for r, e.g. CSV bytes
func (a *AnalyticsAPI) Export(ctx context.Context, r analytics.Range, exportType string) ([]byte, error) {
	if exportType == "" {
		return nil, goerr.New("export type is required", goerr.T(apperr.ErrTagRequiredField))
	}

	q := r.Query()
	q.Set("type", exportType)

	return a.client.Raw(ctx, &Request{
		Method: http.MethodGet,
		Path:   "/analytics/export",
		Query:  q,
		Header: http.Header{"Accept": {"*/*"}},
	})
}

func listItems[T any](ctx context.Context, c *Client, path string, r analytics.Range) ([]T, error) {
	page, err := listPage[T](ctx, c, &Request{Method: http.MethodGet, Path: path, Query: r.Query()})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}
