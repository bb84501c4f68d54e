// Package driver opens the store session selected by configuration.
package driver

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/spanner"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/murkotick/storefront-catalog/internal/config"
	"github.com/murkotick/storefront-catalog/internal/models/m_product"
	"github.com/murkotick/storefront-catalog/internal/observability/metrics"
	"github.com/murkotick/storefront-catalog/internal/schema"
	"github.com/murkotick/storefront-catalog/internal/statement"
	"github.com/murkotick/storefront-catalog/internal/store"
	"github.com/murkotick/storefront-catalog/internal/store/memstore"
	"github.com/murkotick/storefront-catalog/internal/store/scylla"
	spannerstore "github.com/murkotick/storefront-catalog/internal/store/spanner"
)

const defaultConnectTimeout = 30 * time.Second

var Module = fx.Module("store.session",
	fx.Provide(
		NewRegistry,
		statement.NewBuilder,
		provideSession,
		provideExecutor,
	),
)

// NewRegistry registers every table descriptor in the process-wide registry
// and freezes it. Later calls return the same frozen registry.
func NewRegistry() (*schema.Registry, error) {
	reg := schema.Default()
	if !reg.Has(m_product.TableName, m_product.ColID) {
		if err := reg.Register(m_product.Descriptor()); err != nil {
			return nil, err
		}
	}
	reg.Freeze()
	return reg, nil
}

// Open connects to the store named by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig, reg *schema.Registry, log *zap.Logger) (store.Session, error) {
	switch cfg.Driver {
	case config.DriverScylla:
		s, err := scylla.Connect(ctx, scylla.Config{
			Hosts:          cfg.Hosts,
			Keyspace:       cfg.Keyspace,
			LocalDC:        cfg.LocalDC,
			Consistency:    cfg.Consistency,
			Timeout:        cfg.Timeout,
			ConnectTimeout: cfg.ConnectTimeout,
			Username:       cfg.Username,
			Password:       cfg.Password,
		}, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverSpanner:
		client, err := spanner.NewClient(ctx, cfg.SpannerDatabase)
		if err != nil {
			return nil, fmt.Errorf("spanner: new client: %w", err)
		}
		return spannerstore.New(client), nil
	case config.DriverMemory:
		return memstore.New(reg), nil
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
}

func provideSession(lc fx.Lifecycle, cfg config.Config, reg *schema.Registry, log *zap.Logger) (store.Session, error) {
	timeout := cfg.Store.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	session, err := Open(ctx, cfg.Store, reg, log)
	if err != nil {
		return nil, err
	}
	log.Info("store session opened", zap.String("driver", cfg.Store.Driver))

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			log.Info("closing store session")
			return session.Close()
		},
	})
	return session, nil
}

func provideExecutor(session store.Session, m *metrics.Metrics, tracer trace.Tracer) store.Executor {
	return store.Instrument(session, m, tracer)
}
