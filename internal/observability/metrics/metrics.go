package metrics

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/murkotick/storefront-catalog/internal/store"
)

const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeCanceled = "canceled"
)

// Config labels every series with the running service.
type Config struct {
	ServiceName string
	Environment string
}

// Metrics holds the catalog's Prometheus instruments.
type Metrics struct {
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	storeStatements *prometheus.CounterVec
	storeDuration   *prometheus.HistogramVec
	productsWritten *prometheus.CounterVec
}

// New registers the instruments on registerer. A nil registerer uses the default one.
func New(registerer prometheus.Registerer, cfg Config) (*Metrics, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "storefront-catalog"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "catalog_http_requests_total",
			Help:        "HTTP requests by route and status.",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "catalog_http_request_duration_seconds",
			Help:        "HTTP request latency by route.",
			Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			ConstLabels: constLabels,
		}, []string{"method", "route"}),
		storeStatements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "catalog_store_statements_total",
			Help:        "Store statements by kind and outcome.",
			ConstLabels: constLabels,
		}, []string{"kind", "outcome"}),
		storeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "catalog_store_statement_duration_seconds",
			Help:        "Store statement latency by kind.",
			Buckets:     []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			ConstLabels: constLabels,
		}, []string{"kind"}),
		productsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "catalog_products_written_total",
			Help:        "Product writes by operation.",
			ConstLabels: constLabels,
		}, []string{"operation"}),
	}

	for _, c := range []prometheus.Collector{
		m.httpRequests,
		m.httpDuration,
		m.storeStatements,
		m.storeDuration,
		m.productsWritten,
	} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveStatement implements store.Observer.
func (m *Metrics) ObserveStatement(kind store.Kind, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.storeStatements.WithLabelValues(string(kind), Outcome(err)).Inc()
	m.storeDuration.WithLabelValues(string(kind)).Observe(d.Seconds())
}

// RecordProductWrite counts a successful create, update, stock update or remove.
func (m *Metrics) RecordProductWrite(operation string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.productsWritten.WithLabelValues(strings.TrimSpace(operation)).Add(float64(n))
}

// GinMiddleware records one request sample per handled route.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if m == nil {
			return
		}

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.httpRequests.WithLabelValues(c.Request.Method, route, status).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Outcome buckets err into a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	default:
		return OutcomeError
	}
}
