package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/m-mizutani/shopdesk/pkg/domain/model/order"
	"github.com/m-mizutani/shopdesk/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

func orderInputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "data", Usage: "Order as JSON, or @file.json (items are only accepted here)"},
		&cli.StringFlag{Name: "ebay-order-id", Usage: "eBay order ID"},
		&cli.StringFlag{Name: "buyer-name", Usage: "Buyer name"},
		&cli.StringFlag{Name: "buyer-email", Usage: "Buyer email"},
		&cli.FloatFlag{Name: "total", Usage: "Order total"},
		&cli.StringFlag{Name: "currency", Usage: "Currency"},
		&cli.FloatFlag{Name: "shipping-cost", Usage: "Shipping cost"},
		&cli.FloatFlag{Name: "tax-amount", Usage: "Tax amount"},
	}
}

func orderInputFromFlags(cmd *cli.Command) (order.Input, error) {
	var input order.Input
	if cmd.IsSet("data") {
		if err := readJSONInput(cmd.String("data"), &input); err != nil {
			return input, err
		}
	}

	str := func(name string, dst **string) {
		if cmd.IsSet(name) {
			v := cmd.String(name)
			*dst = &v
		}
	}
	num := func(name string, dst **float64) {
		if cmd.IsSet(name) {
			v := cmd.Float(name)
			*dst = &v
		}
	}
	str("ebay-order-id", &input.EbayOrderID)
	str("buyer-name", &input.BuyerName)
	str("buyer-email", &input.BuyerEmail)
	str("currency", &input.Currency)
	num("total", &input.Total)
	num("shipping-cost", &input.ShippingCost)
	num("tax-amount", &input.TaxAmount)
	return input, nil
}

func printOrder(w io.Writer, o *order.Order) {
	field(w, "ID", o.ID)
	if o.EbayOrderID != "" {
		field(w, "eBay order", o.EbayOrderID)
	}
	field(w, "Status", o.Status)
	field(w, "Buyer", o.BuyerName)
	field(w, "Total", fmt.Sprintf("%.2f %s", o.Total, o.Currency))
	field(w, "Profit", fmt.Sprintf("%.2f", o.Profit))
	if o.OrderDate != nil {
		field(w, "Ordered", o.OrderDate.Format(time.DateOnly))
	}
	for _, item := range o.Items {
		_, _ = fmt.Fprintf(w, "  - %dx %s (%.2f)\n", item.Quantity, item.Title, item.Price)
	}
	if o.Fulfillment != nil {
		field(w, "Carrier", o.Fulfillment.Carrier)
		field(w, "Tracking", o.Fulfillment.TrackingNumber)
	}
}

func printTracking(w io.Writer, t *order.Tracking) {
	field(w, "Carrier", t.Carrier)
	field(w, "Tracking", t.TrackingNumber)
	if t.Status != "" {
		field(w, "Shipment", t.Status)
	}
	if t.TrackingURL != "" {
		field(w, "URL", t.TrackingURL)
	}
	if latest := t.Latest(); latest != nil {
		field(w, "Last event", fmt.Sprintf("%s %s %s", latest.Date.Format(time.DateTime), latest.Description, latest.Location))
	}
}

// orderAction wraps the common setup for commands taking <order-id>
func orderAction(g *globalConfig, fn func(ctx context.Context, cmd *cli.Command, rt *runtime, id types.OrderID) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		id, err := firstArg(cmd, "order-id")
		if err != nil {
			return err
		}
		rt, err := g.setup(ctx, g.terminalNavigator())
		if err != nil {
			return err
		}
		defer rt.Close()
		return fn(ctx, cmd, rt, types.OrderID(id))
	}
}

func cmdOrders(g *globalConfig) *cli.Command {
	var (
		filter  order.ListFilter
		status  string
		reason  string
		notes   string
		fulfill order.Fulfillment
	)

	return &cli.Command{
		Name:  "orders",
		Usage: "Manage orders",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List orders",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "status", Usage: "Status filter", Destination: &status},
					&cli.StringFlag{Name: "search", Usage: "Free text search", Destination: &filter.Search},
					&cli.StringFlag{Name: "date-from", Usage: "From date (YYYY-MM-DD)", Destination: &filter.DateFrom},
					&cli.StringFlag{Name: "date-to", Usage: "To date (YYYY-MM-DD)", Destination: &filter.DateTo},
					&cli.IntFlag{Name: "page", Usage: "Page number", Destination: &filter.Page},
					&cli.IntFlag{Name: "page-size", Usage: "Items per page", Destination: &filter.PageSize},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					rt, err := g.setup(ctx, g.terminalNavigator())
					if err != nil {
						return err
					}
					defer rt.Close()

					filter.Status = order.Status(status)
					page, err := rt.client.Orders().List(ctx, filter)
					if err != nil {
						return err
					}

					return rt.out.print(page, func(w io.Writer) {
						rows := make([][]string, 0, len(page.Items))
						for _, o := range page.Items {
							date := ""
							if o.OrderDate != nil {
								date = o.OrderDate.Format(time.DateOnly)
							}
							rows = append(rows, []string{
								o.ID.String(),
								date,
								o.BuyerName,
								string(o.Status),
								fmt.Sprintf("%.2f", o.Total),
							})
						}
						table(w, []string{"ID", "DATE", "BUYER", "STATUS", "TOTAL"}, rows)
						_, _ = fmt.Fprintf(w, "%d of %d orders\n", len(page.Items), page.Total)
					})
				},
			},
			{
				Name:      "get",
				Usage:     "Show an order with its shipment tracking",
				ArgsUsage: "<order-id>",
				Action: orderAction(g, func(ctx context.Context, cmd *cli.Command, rt *runtime, id types.OrderID) error {
					detail, err := rt.client.Orders().GetWithTracking(ctx, id)
					if err != nil {
						return err
					}
					return rt.out.print(detail, func(w io.Writer) {
						printOrder(w, detail.Order)
						if detail.Tracking != nil {
							printTracking(w, detail.Tracking)
						}
					})
				}),
			},
			{
				Name:  "create",
				Usage: "Create an order",
				Flags: orderInputFlags(),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					input, err := orderInputFromFlags(cmd)
					if err != nil {
						return err
					}
					rt, err := g.setup(ctx, g.terminalNavigator())
					if err != nil {
						return err
					}
					defer rt.Close()

					o, err := rt.client.Orders().Create(ctx, input)
					if err != nil {
						return err
					}
					return rt.out.print(o, func(w io.Writer) {
						_, _ = successColor.Fprintln(w, "Order created")
						printOrder(w, o)
					})
				},
			},
			{
				Name:      "update",
				Usage:     "Update an order; only given fields are changed",
				ArgsUsage: "<order-id>",
				Flags:     orderInputFlags(),
				Action: orderAction(g, func(ctx context.Context, cmd *cli.Command, rt *runtime, id types.OrderID) error {
					input, err := orderInputFromFlags(cmd)
					if err != nil {
						return err
					}
					o, err := rt.client.Orders().Update(ctx, id, input)
					if err != nil {
						return err
					}
					return rt.out.print(o, func(w io.Writer) {
						_, _ = successColor.Fprintln(w, "Order updated")
						printOrder(w, o)
					})
				}),
			},
			{
				Name:      "cancel",
				Usage:     "Cancel an order",
				ArgsUsage: "<order-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "reason", Usage: "Cancellation reason", Destination: &reason},
				},
				Action: orderAction(g, func(ctx context.Context, cmd *cli.Command, rt *runtime, id types.OrderID) error {
					o, err := rt.client.Orders().Cancel(ctx, id, reason)
					if err != nil {
						return err
					}
					return rt.out.print(o, func(w io.Writer) {
						_, _ = warnColor.Fprintln(w, "Order cancelled")
						printOrder(w, o)
					})
				}),
			},
			{
				Name:      "status",
				Usage:     "Move an order to another status",
				ArgsUsage: "<order-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "to", Usage: "New status [new|processing|fulfilled|completed|cancelled]", Required: true, Destination: &status},
					&cli.StringFlag{Name: "notes", Usage: "Notes for the status change", Destination: &notes},
				},
				Action: orderAction(g, func(ctx context.Context, cmd *cli.Command, rt *runtime, id types.OrderID) error {
					o, err := rt.client.Orders().UpdateStatus(ctx, id, order.StatusUpdate{
						Status: order.Status(status),
						Notes:  notes,
					})
					if err != nil {
						return err
					}
					return rt.out.print(o, func(w io.Writer) {
						_, _ = successColor.Fprintf(w, "Order is now %s\n", o.Status)
					})
				}),
			},
			{
				Name:      "fulfill",
				Usage:     "Record the shipment of an order",
				ArgsUsage: "<order-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "carrier", Usage: "Shipping carrier", Required: true, Destination: &fulfill.Carrier},
					&cli.StringFlag{Name: "tracking-number", Usage: "Tracking number", Required: true, Destination: &fulfill.TrackingNumber},
					&cli.StringFlag{Name: "notes", Usage: "Notes", Destination: &fulfill.Notes},
				},
				Action: orderAction(g, func(ctx context.Context, cmd *cli.Command, rt *runtime, id types.OrderID) error {
					o, err := rt.client.Orders().Fulfill(ctx, id, fulfill)
					if err != nil {
						return err
					}
					return rt.out.print(o, func(w io.Writer) {
						_, _ = successColor.Fprintln(w, "Order fulfilled")
						printOrder(w, o)
					})
				}),
			},
			{
				Name:      "tracking",
				Usage:     "Show carrier tracking of an order",
				ArgsUsage: "<order-id>",
				Action: orderAction(g, func(ctx context.Context, cmd *cli.Command, rt *runtime, id types.OrderID) error {
					t, err := rt.client.Orders().Tracking(ctx, id)
					if err != nil {
						return err
					}
					return rt.out.print(t, func(w io.Writer) {
						printTracking(w, t)
						for _, ev := range t.Events {
							_, _ = fmt.Fprintf(w, "  %s  %s  %s\n", ev.Date.Format(time.DateTime), ev.Description, ev.Location)
						}
					})
				}),
			},
		},
	}
}
