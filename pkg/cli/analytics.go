package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/m-mizutani/shopdesk/pkg/domain/model/analytics"
	"github.com/m-mizutani/shopdesk/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdDashboard(g *globalConfig) *cli.Command {
	var period string

	return &cli.Command{
		Name:  "dashboard",
		Usage: "Show dashboard figures",
		Commands: []*cli.Command{
			{
				Name:  "stats",
				Usage: "Show the summary numbers",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					rt, err := g.setup(ctx, g.terminalNavigator())
					if err != nil {
						return err
					}
					defer rt.Close()

					stats, err := rt.client.Dashboard().Stats(ctx)
					if err != nil {
						return err
					}
					return rt.out.print(stats, func(w io.Writer) {
						field(w, "Products", fmt.Sprintf("%d (%d monitored)", stats.TotalProducts, stats.MonitoredProducts))
						field(w, "Orders", fmt.Sprintf("%d (%d pending)", stats.TotalOrders, stats.PendingOrders))
						field(w, "Revenue", fmt.Sprintf("%.2f", stats.Revenue))
						field(w, "Profit", fmt.Sprintf("%.2f", stats.Profit))
						if stats.LowStockProducts > 0 {
							_, _ = warnColor.Fprintf(w, "%d products are low on stock\n", stats.LowStockProducts)
						}
						if stats.PriceAlerts > 0 {
							_, _ = warnColor.Fprintf(w, "%d price alerts\n", stats.PriceAlerts)
						}
					})
				},
			},
			{
				Name:  "chart",
				Usage: "Show the sales chart series",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "period", Usage: "Chart period [week|month|year]", Value: string(analytics.PeriodWeek), Destination: &period},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					rt, err := g.setup(ctx, g.terminalNavigator())
					if err != nil {
						return err
					}
					defer rt.Close()

					points, err := rt.client.Dashboard().Chart(ctx, analytics.Period(period))
					if err != nil {
						return err
					}
					return rt.out.print(points, func(w io.Writer) {
						rows := make([][]string, 0, len(points))
						for _, p := range points {
							rows = append(rows, []string{p.Label, fmt.Sprintf("%.2f", p.Sales), fmt.Sprintf("%.2f", p.Profit), fmt.Sprint(p.Orders)})
						}
						table(w, []string{"LABEL", "SALES", "PROFIT", "ORDERS"}, rows)
					})
				},
			},
		},
	}
}

func rangeFlags(r *analytics.Range, period *string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "period", Usage: "Period [week|month|quarter|year|custom]", Value: string(analytics.PeriodMonth), Destination: period},
		&cli.StringFlag{Name: "date-from", Usage: "Start date for a custom period (YYYY-MM-DD)", Destination: &r.DateFrom},
		&cli.StringFlag{Name: "date-to", Usage: "End date for a custom period (YYYY-MM-DD)", Destination: &r.DateTo},
		&cli.IntFlag{Name: "limit", Usage: "Entries in ranked lists", Value: analytics.DefaultLimit, Destination: &r.Limit},
	}
}

func printReport(w io.Writer, report *analytics.Report) {
	_, _ = labelColor.Fprintf(w, "Analytics %s .. %s\n", report.Range.DateFrom, report.Range.DateTo)
	if o := report.Overview; o != nil {
		field(w, "Revenue", fmt.Sprintf("%.2f", o.TotalRevenue))
		field(w, "Profit", fmt.Sprintf("%.2f", o.TotalProfit))
		field(w, "Orders", o.TotalOrders)
		field(w, "Avg order", fmt.Sprintf("%.2f", o.AverageOrderValue))
		field(w, "Margin", fmt.Sprintf("%.1f%%", o.MarginPercentage))
	}

	stats := func(title string, items []analytics.ProductStat) {
		_, _ = fmt.Fprintln(w)
		_, _ = labelColor.Fprintln(w, title)
		rows := make([][]string, 0, len(items))
		for _, p := range items {
			rows = append(rows, []string{p.Title, fmt.Sprint(p.Quantity), fmt.Sprintf("%.2f", p.Revenue), fmt.Sprintf("%.2f", p.Profit)})
		}
		table(w, []string{"PRODUCT", "SOLD", "REVENUE", "PROFIT"}, rows)
	}
	stats("Top products", report.TopProducts)
	stats("Most profitable", report.ProfitableProducts)

	_, _ = fmt.Fprintln(w)
	_, _ = labelColor.Fprintln(w, "Top categories")
	rows := make([][]string, 0, len(report.TopCategories))
	for _, c := range report.TopCategories {
		rows = append(rows, []string{c.Name, fmt.Sprint(c.ProductsCount), fmt.Sprintf("%.2f", c.Revenue)})
	}
	table(w, []string{"CATEGORY", "PRODUCTS", "REVENUE"}, rows)
}

func cmdAnalytics(g *globalConfig) *cli.Command {
	var (
		r          analytics.Range
		period     string
		exportType string
		save       bool
	)

	analyticsUseCase := func(ctx context.Context, rt *runtime, withSink bool) (*usecase.Analytics, error) {
		if !withSink {
			return rt.uc.Analytics, nil
		}
		sink, cleanup, err := g.storage.Configure(ctx, &g.firestore)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, cleanup)
		return usecase.NewAnalytics(rt.client, usecase.WithExportSink(sink)), nil
	}

	return &cli.Command{
		Name:  "analytics",
		Usage: "Sales analytics",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Load the analytics report",
				Flags: append(rangeFlags(&r, &period),
					&cli.BoolFlag{Name: "save", Usage: "Also store a JSON snapshot in the export storage", Destination: &save},
				),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					rt, err := g.setup(ctx, g.terminalNavigator())
					if err != nil {
						return err
					}
					defer rt.Close()

					uc, err := analyticsUseCase(ctx, rt, save)
					if err != nil {
						return err
					}

					r.Period = analytics.Period(period)
					report, err := uc.Load(ctx, r)
					if err != nil {
						return err
					}

					if save {
						key, err := uc.SaveReport(ctx, report)
						if err != nil {
							return err
						}
						_, _ = successColor.Fprintf(os.Stderr, "Snapshot stored at %s\n", key)
					}

					return rt.out.print(report, func(w io.Writer) { printReport(w, report) })
				},
			},
			{
				Name:  "export",
				Usage: "Download the analytics export into the export storage",
				Flags: append(rangeFlags(&r, &period),
					&cli.StringFlag{Name: "type", Usage: "Export type", Value: usecase.DefaultExportType, Destination: &exportType},
				),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					rt, err := g.setup(ctx, g.terminalNavigator())
					if err != nil {
						return err
					}
					defer rt.Close()

					uc, err := analyticsUseCase(ctx, rt, true)
					if err != nil {
						return err
					}

					r.Period = analytics.Period(period)
					key, err := uc.Export(ctx, r, exportType)
					if err != nil {
						return err
					}
					return rt.out.done("Export stored", "key", key)
				},
			},
		},
	}
}
