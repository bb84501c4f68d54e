package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/murkotick/storefront-catalog/internal/app/product/queries"
	"github.com/murkotick/storefront-catalog/internal/config"
	"github.com/murkotick/storefront-catalog/internal/models/m_product"
	obsmetrics "github.com/murkotick/storefront-catalog/internal/observability/metrics"
	"github.com/murkotick/storefront-catalog/internal/schema"
	"github.com/murkotick/storefront-catalog/internal/statement"
	"github.com/murkotick/storefront-catalog/internal/store/memstore"
	"github.com/murkotick/storefront-catalog/internal/transport/http/product"
)

func TestNewEngine_HealthMetricsAndProducts(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := obsmetrics.New(registry, obsmetrics.Config{ServiceName: "catalog", Environment: "test"})
	require.NoError(t, err)

	reg := schema.NewRegistry()
	require.NoError(t, reg.Register(m_product.Descriptor()))
	rm := queries.NewStoreReadModel(memstore.New(reg), statement.NewBuilder(reg), queries.Options{ScanWindow: 10, DistinctFetchSize: 10})

	r := NewEngine(EngineParams{
		Config:   config.Config{App: config.AppConfig{Env: "test"}, HTTP: config.HTTPConfig{ShutdownTimeout: time.Second}},
		Metrics:  m,
		Tracer:   noop.NewTracerProvider(),
		Products: product.NewHandler(product.Commands{}, rm, product.Options{}),
		Gatherer: registry,
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/categories", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"categories":[]}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "catalog_http_requests_total")
}
