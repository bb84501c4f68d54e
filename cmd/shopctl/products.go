package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/murkotick/storefront-catalog/internal/client"
)

func newListCmd(opts *options) *cobra.Command {
	var (
		params             client.ListParams
		minPrice, maxPrice string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products page by page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := parsePriceRange(&params, minPrice, maxPrice); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			page, err := opts.client().List(ctx, params)
			if err != nil {
				return err
			}
			return printPage(cmd.OutOrStdout(), page)
		},
	}
	cmd.Flags().StringVar(&params.Category, "category", "", "filter by category")
	cmd.Flags().StringVar(&params.Brand, "brand", "", "filter by brand")
	cmd.Flags().StringVar(&minPrice, "min-price", "", "minimum price")
	cmd.Flags().StringVar(&maxPrice, "max-price", "", "maximum price")
	cmd.Flags().IntVar(&params.PageSize, "page-size", 0, "items per page")
	cmd.Flags().StringVar(&params.PagingState, "page", "", "page state returned by a previous call")
	return cmd
}

func newSearchCmd(opts *options) *cobra.Command {
	var params client.ListParams
	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Search names and descriptions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			page, err := opts.client().Search(ctx, strings.Join(args, " "), params)
			if err != nil {
				return err
			}
			return printPage(cmd.OutOrStdout(), page)
		},
	}
	cmd.Flags().StringVar(&params.Category, "category", "", "filter by category")
	cmd.Flags().StringVar(&params.Brand, "brand", "", "filter by brand")
	cmd.Flags().IntVar(&params.PageSize, "page-size", 0, "items per page")
	cmd.Flags().StringVar(&params.PagingState, "page", "", "page state returned by a previous call")
	return cmd
}

func newLatestCmd(opts *options) *cobra.Command {
	return newTopCmd(opts, "latest", "Show the newest products",
		func(ctx context.Context, c *client.Client, limit int) ([]client.Product, error) {
			return c.Latest(ctx, limit)
		})
}

func newFeaturedCmd(opts *options) *cobra.Command {
	return newTopCmd(opts, "featured", "Show in-stock products with the most stock",
		func(ctx context.Context, c *client.Client, limit int) ([]client.Product, error) {
			return c.Featured(ctx, limit)
		})
}

func newTopCmd(opts *options, use, short string, fetch func(context.Context, *client.Client, int) ([]client.Product, error)) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			items, err := fetch(ctx, opts.client(), limit)
			if err != nil {
				return err
			}
			return printProducts(cmd.OutOrStdout(), items)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of products")
	return cmd
}

func newGetCmd(opts *options) *cobra.Command {
	var internal bool
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			c := opts.client()
			var (
				p   *client.Product
				err error
			)
			if internal {
				p, err = c.GetByInternalID(ctx, args[0])
			} else {
				p, err = c.Get(ctx, args[0])
			}
			if client.IsNotFound(err) {
				return fmt.Errorf("no product with id %s", args[0])
			}
			if err != nil {
				return err
			}
			printDetail(cmd.OutOrStdout(), p)
			return nil
		},
	}
	cmd.Flags().BoolVar(&internal, "internal", false, "look the product up by internal id")
	return cmd
}

func newCategoriesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List distinct categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			values, err := opts.client().Categories(ctx)
			if err != nil {
				return err
			}
			return printLines(cmd.OutOrStdout(), values)
		},
	}
}

func newBrandsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "brands",
		Short: "List distinct brands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			values, err := opts.client().Brands(ctx)
			if err != nil {
				return err
			}
			return printLines(cmd.OutOrStdout(), values)
		},
	}
}

func parsePriceRange(p *client.ListParams, minPrice, maxPrice string) error {
	if minPrice != "" {
		d, err := decimal.NewFromString(minPrice)
		if err != nil {
			return fmt.Errorf("invalid --min-price %q", minPrice)
		}
		p.MinPrice = &d
	}
	if maxPrice != "" {
		d, err := decimal.NewFromString(maxPrice)
		if err != nil {
			return fmt.Errorf("invalid --max-price %q", maxPrice)
		}
		p.MaxPrice = &d
	}
	return nil
}

func printPage(w io.Writer, page *client.Page) error {
	if err := printProducts(w, page.Items); err != nil {
		return err
	}
	if page.NextPageState != nil {
		_, err := fmt.Fprintf(w, "\nnext page: --page %s\n", *page.NextPageState)
		return err
	}
	return nil
}

func printProducts(w io.Writer, items []client.Product) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "no products")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tBRAND\tPRICE\tSTOCK\tAVAILABILITY")
	for _, p := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s %s\t%d\t%s\n", p.ID, p.Name, p.Brand, p.Price, p.Currency, p.Stock, p.Availability)
	}
	return tw.Flush()
}

func printDetail(w io.Writer, p *client.Product) {
	fmt.Fprintf(w, "%s (%s)\n", p.Name, p.ID)
	fmt.Fprintf(w, "  internal id:  %s\n", p.InternalID)
	fmt.Fprintf(w, "  brand:        %s\n", p.Brand)
	fmt.Fprintf(w, "  category:     %s\n", p.Category)
	fmt.Fprintf(w, "  price:        %s %s\n", p.Price, p.Currency)
	fmt.Fprintf(w, "  stock:        %d (%s)\n", p.Stock, p.Availability)
	if p.EAN != "" {
		fmt.Fprintf(w, "  ean:          %s\n", p.EAN)
	}
	if p.ShortDescription != "" {
		fmt.Fprintf(w, "\n  %s\n", p.ShortDescription)
	}
}

func printLines(w io.Writer, values []string) error {
	for _, v := range values {
		if _, err := fmt.Fprintln(w, v); err != nil {
			return err
		}
	}
	return nil
}
