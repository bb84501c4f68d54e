package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/murkotick/storefront-catalog/internal/cart"
	"github.com/murkotick/storefront-catalog/internal/client"
)

// productGetter is the part of the API client the cart session needs.
type productGetter interface {
	Get(ctx context.Context, id string) (*client.Product, error)
}

func newCartCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "cart",
		Short: "Start an interactive cart session",
		Long: `Reads commands from stdin:

  add <id> [qty]   add a product by id
  qty <id> <n>     set the quantity of a line (0 removes it)
  rm <id>          remove a line
  show             print the cart
  clear            empty the cart
  quit             leave`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := &cartSession{
				products: opts.client(),
				cart:     cart.New(),
				out:      cmd.OutOrStdout(),
			}
			return s.run(cmd.Context(), cmd.InOrStdin())
		},
	}
}

type cartSession struct {
	products productGetter
	cart     *cart.Cart
	out      io.Writer
}

func (s *cartSession) run(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "cart> ")
		if !sc.Scan() {
			fmt.Fprintln(s.out)
			return sc.Err()
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}
		if err := s.exec(ctx, fields); err != nil {
			fmt.Fprintln(s.out, "error:", err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func (s *cartSession) exec(ctx context.Context, fields []string) error {
	switch fields[0] {
	case "add":
		if len(fields) < 2 {
			return fmt.Errorf("usage: add <id> [qty]")
		}
		qty := 1
		if len(fields) > 2 {
			n, err := strconv.Atoi(fields[2])
			if err != nil || n <= 0 {
				return fmt.Errorf("quantity must be a positive integer")
			}
			qty = n
		}
		p, err := s.products.Get(ctx, fields[1])
		if client.IsNotFound(err) {
			return fmt.Errorf("no product with id %s", fields[1])
		}
		if err != nil {
			return err
		}
		for range qty {
			if err := s.cart.AddProduct(*p); err != nil {
				return err
			}
		}
		fmt.Fprintf(s.out, "added %d x %s\n", qty, p.Name)
	case "qty":
		if len(fields) != 3 {
			return fmt.Errorf("usage: qty <id> <n>")
		}
		n, err := strconv.Atoi(fields[2])
		if err != nil {
			return fmt.Errorf("quantity must be an integer")
		}
		if !s.cart.UpdateQuantity(fields[1], n) {
			return fmt.Errorf("%s is not in the cart", fields[1])
		}
	case "rm":
		if len(fields) != 2 {
			return fmt.Errorf("usage: rm <id>")
		}
		s.cart.Remove(fields[1])
	case "show":
		s.show()
	case "clear":
		s.cart.Clear()
	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
	return nil
}

func (s *cartSession) show() {
	items := s.cart.Items()
	if len(items) == 0 {
		fmt.Fprintln(s.out, "cart is empty")
		return
	}
	tw := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tPRICE\tSUBTOTAL")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s %s\n", it.ProductID, it.Name, it.Quantity, it.Price, it.Subtotal(), it.Currency)
	}
	fmt.Fprintf(tw, "\t\t%d\t\t%s\n", s.cart.ItemCount(), s.cart.Total())
	_ = tw.Flush()
}
