// shopctl is a command-line storefront for the catalog API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/murkotick/storefront-catalog/internal/client"
)

const defaultAPIURL = "http://localhost:8080"

type options struct {
	apiURL  string
	timeout time.Duration
}

func (o *options) client() *client.Client {
	return client.New(o.apiURL)
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "shopctl",
		Short:         "Browse the storefront catalog and build a cart",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	apiURL := os.Getenv("CATALOG_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	root.PersistentFlags().StringVar(&opts.apiURL, "api-url", apiURL, "catalog API base URL")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "per-request timeout")

	root.AddCommand(
		newListCmd(opts),
		newSearchCmd(opts),
		newLatestCmd(opts),
		newFeaturedCmd(opts),
		newGetCmd(opts),
		newCategoriesCmd(opts),
		newBrandsCmd(opts),
		newCartCmd(opts),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
