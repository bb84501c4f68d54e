// Package product wires the catalog read and write sides into an fx module.
package product

import (
	"go.uber.org/fx"

	"github.com/murkotick/storefront-catalog/internal/app/product/contracts"
	"github.com/murkotick/storefront-catalog/internal/app/product/queries"
	"github.com/murkotick/storefront-catalog/internal/app/product/repo"
	"github.com/murkotick/storefront-catalog/internal/app/product/usecases/create_product"
	"github.com/murkotick/storefront-catalog/internal/app/product/usecases/remove_product"
	"github.com/murkotick/storefront-catalog/internal/app/product/usecases/update_product"
	"github.com/murkotick/storefront-catalog/internal/app/product/usecases/update_stock"
	"github.com/murkotick/storefront-catalog/internal/config"
	"github.com/murkotick/storefront-catalog/internal/observability/metrics"
	"github.com/murkotick/storefront-catalog/internal/pkg/clock"
	committer "github.com/murkotick/storefront-catalog/internal/pkg/committer"
	"github.com/murkotick/storefront-catalog/internal/pkg/idgen"
	"github.com/murkotick/storefront-catalog/internal/statement"
	"github.com/murkotick/storefront-catalog/internal/store"
	httpproduct "github.com/murkotick/storefront-catalog/internal/transport/http/product"
)

var Module = fx.Module("product.service",
	fx.Provide(
		fx.Annotate(repo.NewProductRepo, fx.As(new(contracts.ProductRepo))),
		fx.Annotate(committer.NewAdapter, fx.As(new(contracts.Committer))),
		provideClock,
		provideIDGenerator,
		provideReadModel,
		create_product.NewInteractor,
		update_product.NewInteractor,
		update_stock.NewInteractor,
		remove_product.NewInteractor,
		provideHandler,
	),
)

func provideClock() clock.Clock {
	return clock.RealClock{}
}

func provideIDGenerator(cfg config.Config) (idgen.Generator, error) {
	return idgen.NewSnowflake(cfg.App.NodeID)
}

func provideReadModel(exec store.Executor, b *statement.Builder, cfg config.Config) contracts.ReadModel {
	return queries.NewStoreReadModel(exec, b, queries.Options{
		ScanWindow:        cfg.Catalog.ScanWindow,
		DistinctFetchSize: cfg.Catalog.DistinctFetchSize,
	})
}

type handlerParams struct {
	fx.In

	Config      config.Config
	ReadModel   contracts.ReadModel
	Metrics     *metrics.Metrics
	Create      *create_product.Interactor
	Update      *update_product.Interactor
	UpdateStock *update_stock.Interactor
	Remove      *remove_product.Interactor
}

func provideHandler(p handlerParams) *httpproduct.Handler {
	return httpproduct.NewHandler(httpproduct.Commands{
		Create:      p.Create,
		Update:      p.Update,
		UpdateStock: p.UpdateStock,
		Remove:      p.Remove,
	}, p.ReadModel, httpproduct.Options{
		DefaultPageSize: p.Config.Catalog.DefaultPageSize,
		MaxPageSize:     p.Config.Catalog.MaxPageSize,
		Recorder:        p.Metrics,
	})
}
