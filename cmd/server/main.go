package main

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/murkotick/storefront-catalog/internal/app/product"
	"github.com/murkotick/storefront-catalog/internal/config"
	"github.com/murkotick/storefront-catalog/internal/observability"
	"github.com/murkotick/storefront-catalog/internal/server"
	"github.com/murkotick/storefront-catalog/internal/store/driver"
)

func options() fx.Option {
	return fx.Options(
		config.Module,
		observability.Module,
		driver.Module,
		product.Module,
		server.Module,
	)
}

func main() {
	fx.New(
		options(),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
	).Run()
}
