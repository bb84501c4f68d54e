package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"

	"github.com/murkotick/storefront-catalog/internal/config"
	"github.com/murkotick/storefront-catalog/internal/observability/logger"
	"github.com/murkotick/storefront-catalog/internal/observability/metrics"
	"github.com/murkotick/storefront-catalog/internal/observability/tracing"
)

var Module = fx.Module("observability",
	fx.Provide(
		provideLoggerConfig,
		logger.New,
		provideTracingConfig,
		tracing.NewProvider,
		provideTracer,
		provideMetrics,
	),
)

func provideLoggerConfig(cfg config.Config) logger.Config {
	return logger.Config{
		ServiceName:   cfg.App.Name,
		Environment:   cfg.App.Env,
		Version:       cfg.App.Version,
		Level:         cfg.Log.Level,
		Format:        cfg.Log.Format,
		IncludeCaller: cfg.Debug(),
	}
}

func provideTracingConfig(cfg config.Config) tracing.Config {
	return tracing.Config{
		Enabled:       cfg.Otel.Enabled,
		Endpoint:      cfg.Otel.Endpoint,
		SamplingRatio: cfg.Otel.SamplingRatio,
		ServiceName:   cfg.App.Name,
		Version:       cfg.App.Version,
		Environment:   cfg.App.Env,
	}
}

func provideTracer(tp trace.TracerProvider) trace.Tracer {
	return tracing.Tracer(tp)
}

func provideMetrics(cfg config.Config) (*metrics.Metrics, error) {
	return metrics.New(prometheus.DefaultRegisterer, metrics.Config{
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Env,
	})
}
