package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/murkotick/storefront-catalog/internal/config"
	obslogger "github.com/murkotick/storefront-catalog/internal/observability/logger"
	obsmetrics "github.com/murkotick/storefront-catalog/internal/observability/metrics"
	obstracing "github.com/murkotick/storefront-catalog/internal/observability/tracing"
	"github.com/murkotick/storefront-catalog/internal/statement"
	"github.com/murkotick/storefront-catalog/internal/store"
	"github.com/murkotick/storefront-catalog/internal/transport/grpc/health"
	"github.com/murkotick/storefront-catalog/internal/transport/http/httpapi"
	"github.com/murkotick/storefront-catalog/internal/transport/http/product"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine, provideHealthServer),
	fx.Invoke(Run, runHealthServer),
)

// EngineParams are the dependencies of the HTTP engine.
type EngineParams struct {
	fx.In

	Config   config.Config
	Metrics  *obsmetrics.Metrics
	Tracer   trace.TracerProvider
	Products *product.Handler
	Gatherer prometheus.Gatherer `optional:"true"`
}

func NewEngine(p EngineParams) *gin.Engine {
	if !p.Config.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           p.Config.Debug(),
		ErrorClassifier: httpapi.ClassifyError,
	}))
	r.Use(obstracing.GinMiddleware(p.Tracer))
	r.Use(p.Metrics.GinMiddleware())
	r.Use(httpapi.ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	gatherer := p.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	p.Products.Register(r)
	return r
}

// Run serves r on the configured address for the lifetime of the fx app.
func Run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("http server listening", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			timeout := cfg.HTTP.ShutdownTimeout
			if timeout <= 0 {
				timeout = 10 * time.Second
			}
			shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

func provideHealthServer(cfg config.Config, exec store.Executor, b *statement.Builder, log *zap.Logger) *health.Server {
	probe := &health.StoreProbe{Exec: exec, Builder: b, Timeout: cfg.Store.Timeout}
	return health.NewServer(probe, 0, log)
}

func runHealthServer(lc fx.Lifecycle, cfg config.Config, s *health.Server) {
	health.Run(lc, cfg.GRPC.Addr, s)
}
