package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/domain/model/catalog"
	"github.com/m-mizutani/shopdesk/pkg/domain/types"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
	"github.com/urfave/cli/v3"
)

// readJSONInput decodes --data: inline JSON, or @path to read a file
func readJSONInput(value string, v any) error {
	data := []byte(value)
	if path, ok := strings.CutPrefix(value, "@"); ok {
		raw, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return goerr.Wrap(err, "failed to read input file", goerr.V("path", path))
		}
		data = raw
	}

	if err := json.Unmarshal(data, v); err != nil {
		return goerr.Wrap(err, "invalid JSON input", goerr.T(apperr.ErrTagInvalidInput))
	}
	return nil
}

func firstArg(cmd *cli.Command, name string) (string, error) {
	if cmd.Args().Len() < 1 || cmd.Args().First() == "" {
		return "", goerr.Wrap(apperr.ErrEmptyID, "missing argument", goerr.V("argument", name))
	}
	return cmd.Args().First(), nil
}

func productInputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "data", Usage: "Product as JSON, or @file.json"},
		&cli.StringFlag{Name: "sku", Usage: "SKU"},
		&cli.StringFlag{Name: "title", Usage: "Title"},
		&cli.StringFlag{Name: "description", Usage: "Description"},
		&cli.StringFlag{Name: "category", Usage: "Category"},
		&cli.FloatFlag{Name: "price", Usage: "Sale price"},
		&cli.FloatFlag{Name: "cost", Usage: "Purchase cost"},
		&cli.IntFlag{Name: "quantity", Usage: "Stock quantity"},
		&cli.StringFlag{Name: "image-url", Usage: "Image URL"},
		&cli.StringFlag{Name: "source-url", Usage: "Supplier URL"},
		&cli.BoolFlag{Name: "monitored", Usage: "Monitor supplier price and stock"},
	}
}

// productInputFromFlags starts from --data and overrides with given flags
func productInputFromFlags(cmd *cli.Command) (catalog.ProductInput, error) {
	var input catalog.ProductInput
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
	str("sku", &input.SKU)
	str("title", &input.Title)
	str("description", &input.Description)
	str("category", &input.Category)
	str("image-url", &input.ImageURL)
	str("source-url", &input.SourceURL)

	if cmd.IsSet("price") {
		v := cmd.Float("price")
		input.Price = &v
	}
	if cmd.IsSet("cost") {
		v := cmd.Float("cost")
		input.Cost = &v
	}
	if cmd.IsSet("quantity") {
		v := cmd.Int("quantity")
		input.Quantity = &v
	}
	if cmd.IsSet("monitored") {
		v := cmd.Bool("monitored")
		input.IsMonitored = &v
	}
	return input, nil
}

func printProduct(w io.Writer, p *catalog.Product) {
	field(w, "ID", p.ID)
	field(w, "Title", p.Title)
	if p.SKU != "" {
		field(w, "SKU", p.SKU)
	}
	if p.Category != "" {
		field(w, "Category", p.Category)
	}
	field(w, "Price", fmt.Sprintf("%.2f %s", p.Price, p.Currency))
	field(w, "Margin", fmt.Sprintf("%.1f%%", p.Margin()))
	field(w, "Quantity", p.Quantity)
	field(w, "Monitored", p.IsMonitored)
	if p.Status != "" {
		field(w, "Status", p.Status)
	}
}

func cmdProducts(g *globalConfig) *cli.Command {
	var filter catalog.ListFilter

	return &cli.Command{
		Name:  "products",
		Usage: "Manage the product catalog",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List products",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "search", Usage: "Free text search", Destination: &filter.Search},
					&cli.StringFlag{Name: "category", Usage: "Category filter", Destination: &filter.Category},
					&cli.StringFlag{Name: "status", Usage: "Status filter", Destination: &filter.Status},
					&cli.IntFlag{Name: "page", Usage: "Page number", Destination: &filter.Page},
					&cli.IntFlag{Name: "page-size", Usage: "Items per page", Destination: &filter.PageSize},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					rt, err := g.setup(ctx, g.terminalNavigator())
					if err != nil {
						return err
					}
					defer rt.Close()

					page, err := rt.client.Products().List(ctx, filter)
					if err != nil {
						return err
					}

					return rt.out.print(page, func(w io.Writer) {
						rows := make([][]string, 0, len(page.Items))
						for _, p := range page.Items {
							rows = append(rows, []string{
								p.ID.String(),
								p.Title,
								p.Category,
								fmt.Sprintf("%.2f", p.Price),
								fmt.Sprint(p.Quantity),
							})
						}
						table(w, []string{"ID", "TITLE", "CATEGORY", "PRICE", "QTY"}, rows)
						_, _ = fmt.Fprintf(w, "%d of %d products\n", len(page.Items), page.Total)
					})
				},
			},
			{
				Name:      "get",
				Usage:     "Show a product",
				ArgsUsage: "<product-id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := firstArg(cmd, "product-id")
					if err != nil {
						return err
					}
					rt, err := g.setup(ctx, g.terminalNavigator())
					if err != nil {
						return err
					}
					defer rt.Close()

					p, err := rt.client.Products().Get(ctx, types.ProductID(id))
					if err != nil {
						return err
					}
					return rt.out.print(p, func(w io.Writer) { printProduct(w, p) })
				},
			},
			{
				Name:  "create",
				Usage: "Create a product",
				Flags: productInputFlags(),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					input, err := productInputFromFlags(cmd)
					if err != nil {
						return err
					}
					rt, err := g.setup(ctx, g.terminalNavigator())
					if err != nil {
						return err
					}
					defer rt.Close()

					p, err := rt.client.Products().Create(ctx, input)
					if err != nil {
						return err
					}
					return rt.out.print(p, func(w io.Writer) {
						_, _ = successColor.Fprintln(w, "Product created")
						printProduct(w, p)
					})
				},
			},
			{
				Name:      "update",
				Usage:     "Update a product; only given fields are changed",
				ArgsUsage: "<product-id>",
				Flags:     productInputFlags(),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := firstArg(cmd, "product-id")
					if err != nil {
						return err
					}
					input, err := productInputFromFlags(cmd)
					if err != nil {
						return err
					}
					rt, err := g.setup(ctx, g.terminalNavigator())
					if err != nil {
						return err
					}
					defer rt.Close()

					p, err := rt.client.Products().Update(ctx, types.ProductID(id), input)
					if err != nil {
						return err
					}
					return rt.out.print(p, func(w io.Writer) {
						_, _ = successColor.Fprintln(w, "Product updated")
						printProduct(w, p)
					})
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a product",
				ArgsUsage: "<product-id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := firstArg(cmd, "product-id")
					if err != nil {
						return err
					}
					rt, err := g.setup(ctx, g.terminalNavigator())
					if err != nil {
						return err
					}
					defer rt.Close()

					if err := rt.client.Products().Delete(ctx, types.ProductID(id)); err != nil {
						return err
					}
					return rt.out.done("Product deleted", "id", id)
				},
			},
		},
	}
}
