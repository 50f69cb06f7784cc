package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/domain/interfaces"
	"github.com/m-mizutani/shopdesk/pkg/domain/model/analytics"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
	"github.com/m-mizutani/shopdesk/pkg/repository/storage"
	"github.com/m-mizutani/shopdesk/pkg/service/api"
	"golang.org/x/sync/errgroup"
)

// DefaultExportType is used when Export is called without a type
const DefaultExportType = "csv"

// Analytics loads the analytics page datasets and stores exports
type Analytics struct {
	client *api.Client
	sink   *storage.Client
	now    func() time.Time
}

var _ interfaces.AnalyticsUseCases = (*Analytics)(nil)

// AnalyticsOption configures Analytics
type AnalyticsOption func(*Analytics)

// WithExportSink sets where exports and report snapshots are written
func WithExportSink(sink *storage.Client) AnalyticsOption {
	return func(a *Analytics) {
		a.sink = sink
	}
}

// WithClock replaces time.Now for resolving predefined periods
func WithClock(now func() time.Time) AnalyticsOption {
	return func(a *Analytics) {
		a.now = now
	}
}

// NewAnalytics creates the analytics use case
func NewAnalytics(client *api.Client, opts ...AnalyticsOption) *Analytics {
	a := &Analytics{
		client: client,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Analytics) resolve(r analytics.Range) (analytics.Range, error) {
	r = r.Resolve(a.now()).WithDefaults()
	if err := r.Validate(); err != nil {
		return r, goerr.Wrap(err, "invalid analytics range")
	}
	return r, nil
}

// Load fetches the five datasets of the analytics page in parallel. The
// first failure cancels the others and fails the whole load.
func (a *Analytics) Load(ctx context.Context, r analytics.Range) (*analytics.Report, error) {
	r, err := a.resolve(r)
	if err != nil {
		return nil, err
	}

	report := &analytics.Report{Range: r}
	ep := a.client.Analytics()
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		overview, err := ep.Overview(ctx, r)
		if err != nil {
			return goerr.Wrap(err, "failed to load overview")
		}
		report.Overview = overview
		return nil
	})
	eg.Go(func() error {
		revenue, err := ep.Revenue(ctx, r)
		if err != nil {
			return goerr.Wrap(err, "failed to load revenue")
		}
		report.Revenue = revenue
		return nil
	})
	eg.Go(func() error {
		products, err := ep.TopProducts(ctx, r)
		if err != nil {
			return goerr.Wrap(err, "failed to load top products")
		}
		report.TopProducts = products
		return nil
	})
	eg.Go(func() error {
		categories, err := ep.TopCategories(ctx, r)
		if err != nil {
			return goerr.Wrap(err, "failed to load top categories")
		}
		report.TopCategories = categories
		return nil
	})
	eg.Go(func() error {
		profitable, err := ep.ProfitableProducts(ctx, r)
		if err != nil {
			return goerr.Wrap(err, "failed to load profitable products")
		}
		report.ProfitableProducts = profitable
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, goerr.Wrap(err, "failed to load analytics",
			goerr.V("period", r.Period),
			goerr.V("date_from", r.DateFrom),
			goerr.V("date_to", r.DateTo))
	}

	ctxlog.From(ctx).Debug("analytics loaded",
		"period", r.Period,
		"revenue_points", len(report.Revenue),
		"top_products", len(report.TopProducts))
	return report, nil
}

// Export downloads the export file for r and writes it to the sink under
// analytics_<from>_<to>.<type>. It returns the storage key.
func (a *Analytics) Export(ctx context.Context, r analytics.Range, exportType string) (string, error) {
	if a.sink == nil {
		return "", apperr.ErrStorageNotConfigured
	}
	if exportType == "" {
		exportType = DefaultExportType
	}

	r, err := a.resolve(r)
	if err != nil {
		return "", err
	}

	data, err := a.client.Analytics().Export(ctx, r, exportType)
	if err != nil {
		return "", goerr.Wrap(err, "failed to download analytics export",
			goerr.TV(apperr.ExportTypeKey, exportType))
	}

	key, err := a.sink.SaveExport(ctx, r.ExportFileName(exportType), data)
	if err != nil {
		return "", goerr.Wrap(err, "failed to store analytics export",
			goerr.TV(apperr.ExportTypeKey, exportType))
	}

	ctxlog.From(ctx).Info("analytics exported", "key", key, "bytes", len(data))
	return key, nil
}

// SaveReport keeps a JSON snapshot of a loaded report in the sink
func (a *Analytics) SaveReport(ctx context.Context, report *analytics.Report) (string, error) {
	if a.sink == nil {
		return "", apperr.ErrStorageNotConfigured
	}

	key, err := a.sink.SaveReportJSON(ctx, report.Range.ExportFileName("json"), report)
	if err != nil {
		return "", goerr.Wrap(err, "failed to store analytics report")
	}
	return key, nil
}
