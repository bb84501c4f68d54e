package product_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/murkotick/storefront-catalog/internal/app/product/queries"
	"github.com/murkotick/storefront-catalog/internal/app/product/repo"
	"github.com/murkotick/storefront-catalog/internal/app/product/usecases/create_product"
	"github.com/murkotick/storefront-catalog/internal/app/product/usecases/remove_product"
	"github.com/murkotick/storefront-catalog/internal/app/product/usecases/update_product"
	"github.com/murkotick/storefront-catalog/internal/app/product/usecases/update_stock"
	"github.com/murkotick/storefront-catalog/internal/models/m_product"
	"github.com/murkotick/storefront-catalog/internal/pkg/clock"
	"github.com/murkotick/storefront-catalog/internal/pkg/committer"
	"github.com/murkotick/storefront-catalog/internal/schema"
	"github.com/murkotick/storefront-catalog/internal/statement"
	"github.com/murkotick/storefront-catalog/internal/store/memstore"
	"github.com/murkotick/storefront-catalog/internal/transport/http/httpapi"
	"github.com/murkotick/storefront-catalog/internal/transport/http/product"
)

type seqIDs struct{ n int }

func (s *seqIDs) NewID() string {
	s.n++
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", s.n)
}

func (s *seqIDs) NextSeq() int64 { return int64(s.n) }

type writeCounter map[string]int

func (w writeCounter) RecordProductWrite(operation string, n int) { w[operation] += n }

type apiFixture struct {
	engine *gin.Engine
	clk    *clock.FakeClock
	writes writeCounter
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := schema.NewRegistry()
	require.NoError(t, reg.Register(m_product.Descriptor()))
	b := statement.NewBuilder(reg)
	exec := memstore.New(reg)
	clk := clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	rm := queries.NewStoreReadModel(exec, b, queries.Options{ScanWindow: 100, DistinctFetchSize: 100})
	pr := repo.NewProductRepo(b)
	cm := committer.NewAdapter(exec, b)
	writes := writeCounter{}

	h := product.NewHandler(product.Commands{
		Create:      create_product.NewInteractor(pr, cm, clk, &seqIDs{}),
		Update:      update_product.NewInteractor(pr, cm, rm),
		UpdateStock: update_stock.NewInteractor(pr, cm, rm),
		Remove:      remove_product.NewInteractor(pr, cm),
	}, rm, product.Options{DefaultPageSize: 2, MaxPageSize: 50, Recorder: writes})

	r := gin.New()
	r.Use(httpapi.ErrorHandlingMiddleware())
	h.Register(r)
	return &apiFixture{engine: r, clk: clk, writes: writes}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func validBody(name, category, brand string, stock int) map[string]any {
	return map[string]any{
		"name":             name,
		"description":      "<p>" + name + "</p>",
		"shortDescription": name,
		"brand":            brand,
		"category":         category,
		"price":            19.99,
		"currency":         "EUR",
		"stock":            stock,
		"ean":              4006381333931,
		"color":            "black",
		"size":             "L",
		"image":            "https://cdn.example.com/" + name + ".png",
	}
}

func (f *apiFixture) create(t *testing.T, body map[string]any) string {
	t.Helper()
	f.clk.Advance(time.Minute)
	w := f.do(t, http.MethodPost, "/products", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[product.CreateResponse](t, w).ID
}

func TestCreateAndGet(t *testing.T) {
	api := newAPI(t)
	id := api.create(t, validBody("Trail Shoe", "shoes", "Acme", 25))

	w := api.do(t, http.MethodGet, "/products/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	got := decode[product.Product](t, w)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, id, got.InternalID)
	assert.Equal(t, "Trail Shoe", got.Name)
	assert.Equal(t, "19.99", got.Price.String())
	assert.Equal(t, "EUR", got.Currency)
	assert.Equal(t, "4006381333931", got.EAN)
	assert.Equal(t, "in_stock", got.Availability)
	assert.Equal(t, 1, api.writes["create"])
}

func TestCreate_Validation(t *testing.T) {
	api := newAPI(t)

	body := validBody("", "shoes", "Acme", 0)
	body["shortDescription"] = "blank name"
	body["price"] = -1
	body["currency"] = "JPY"
	body["ean"] = "40-06"
	body["availability"] = "sold_out"

	w := api.do(t, http.MethodPost, "/products", body)
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decode[httpapi.Response](t, w)
	assert.Equal(t, httpapi.TypeValidation, resp.Error.Type)
	fields := map[string]string{}
	for _, e := range resp.Error.Errors {
		fields[e.Field] = e.Code
	}
	assert.Equal(t, map[string]string{
		"name":         "required",
		"price":        "positive",
		"currency":     "invalid_enum",
		"stock":        "positive",
		"ean":          "numeric",
		"availability": "invalid_enum",
	}, fields)
}

func TestCreate_MalformedJSON(t *testing.T) {
	api := newAPI(t)
	w := api.do(t, http.MethodPost, "/products", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateBatch(t *testing.T) {
	api := newAPI(t)

	w := api.do(t, http.MethodPost, "/products/batch", []map[string]any{
		validBody("A", "shoes", "Acme", 1),
		validBody("B", "hats", "Zed", 30),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Len(t, decode[product.CreateBatchResponse](t, w).IDs, 2)

	bad := validBody("C", "shoes", "Acme", 1)
	delete(bad, "brand")
	w = api.do(t, http.MethodPost, "/products/batch", []map[string]any{validBody("D", "shoes", "Acme", 1), bad})
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[httpapi.Response](t, w)
	require.Len(t, resp.Error.Errors, 1)
	assert.Equal(t, "[1].brand", resp.Error.Errors[0].Field)

	w = api.do(t, http.MethodGet, "/products?pageSize=10", nil)
	assert.Len(t, decode[product.Page](t, w).Items, 2)
}

func TestGet_StatusCodes(t *testing.T) {
	api := newAPI(t)

	w := api.do(t, http.MethodGet, "/products/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodGet, "/products/6f1c2e8a-0000-4000-8000-000000000000", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, httpapi.TypeNotFound, decode[httpapi.Response](t, w).Error.Type)

	w = api.do(t, http.MethodGet, "/products/internal/sku-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetByInternalID(t *testing.T) {
	api := newAPI(t)
	body := validBody("Cap", "hats", "Acme", 5)
	body["internalId"] = "sku-cap"
	id := api.create(t, body)

	w := api.do(t, http.MethodGet, "/products/internal/sku-cap", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, decode[product.Product](t, w).ID)
}

func TestList_PagingAndFilters(t *testing.T) {
	api := newAPI(t)
	api.create(t, validBody("A", "shoes", "Acme", 5))
	api.create(t, validBody("B", "shoes", "Zed", 5))
	api.create(t, validBody("C", "hats", "Acme", 5))

	w := api.do(t, http.MethodGet, "/products", nil)
	require.Equal(t, http.StatusOK, w.Code)
	first := decode[product.Page](t, w)
	assert.Len(t, first.Items, 2)
	assert.Equal(t, 2, first.PageSize)
	require.NotNil(t, first.NextPageState)

	w = api.do(t, http.MethodGet, "/products?pagingState="+*first.NextPageState, nil)
	second := decode[product.Page](t, w)
	assert.Len(t, second.Items, 1)
	assert.Nil(t, second.NextPageState)

	w = api.do(t, http.MethodGet, "/products?limit=10&category=shoes&brand=Acme", nil)
	filtered := decode[product.Page](t, w)
	require.Len(t, filtered.Items, 1)
	assert.Equal(t, "A", filtered.Items[0].Name)
	assert.Equal(t, 10, filtered.PageSize)

	w = api.do(t, http.MethodGet, "/products?minPrice=20", nil)
	assert.Empty(t, decode[product.Page](t, w).Items)
}

func TestList_Validation(t *testing.T) {
	api := newAPI(t)

	for _, q := range []string{"page=0", "pageSize=-1", "limit=x", "minPrice=abc", "pagingState=%25%25"} {
		w := api.do(t, http.MethodGet, "/products?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestSearch(t *testing.T) {
	api := newAPI(t)
	api.create(t, validBody("Running Shoe", "shoes", "Acme", 5))
	api.create(t, validBody("Sun Hat", "hats", "Acme", 5))

	w := api.do(t, http.MethodGet, "/products/search?q=SHOE&pageSize=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[product.Page](t, w)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Running Shoe", page.Items[0].Name)
	assert.Equal(t, "SHOE", page.Query)

	w = api.do(t, http.MethodGet, "/products/search", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTopNRoutes(t *testing.T) {
	api := newAPI(t)
	api.create(t, validBody("Old", "shoes", "Acme", 50))
	api.create(t, validBody("Mid", "hats", "Zed", 5))
	api.create(t, validBody("New", "shoes", "Zed", 30))

	w := api.do(t, http.MethodGet, "/products/latest?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	latest := decode[product.ListResponse](t, w)
	require.Len(t, latest.Items, 2)
	assert.Equal(t, "New", latest.Items[0].Name)
	assert.Equal(t, "Mid", latest.Items[1].Name)

	w = api.do(t, http.MethodGet, "/products/featured", nil)
	featured := decode[product.ListResponse](t, w)
	require.Len(t, featured.Items, 2)
	assert.Equal(t, "Old", featured.Items[0].Name)

	w = api.do(t, http.MethodGet, "/products/category/shoes", nil)
	assert.Len(t, decode[product.ListResponse](t, w).Items, 2)

	w = api.do(t, http.MethodGet, "/products/brand/Zed?limit=1", nil)
	byBrand := decode[product.ListResponse](t, w)
	require.Len(t, byBrand.Items, 1)
	assert.Equal(t, "New", byBrand.Items[0].Name)

	w = api.do(t, http.MethodGet, "/products/latest?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCategoriesAndBrands(t *testing.T) {
	api := newAPI(t)
	api.create(t, validBody("A", "shoes", "Zed", 5))
	api.create(t, validBody("B", "hats", "Acme", 5))
	api.create(t, validBody("C", "shoes", "Acme", 5))

	w := api.do(t, http.MethodGet, "/products/categories", nil)
	assert.JSONEq(t, `{"categories":["hats","shoes"]}`, w.Body.String())

	w = api.do(t, http.MethodGet, "/products/brands", nil)
	assert.JSONEq(t, `{"brands":["Acme","Zed"]}`, w.Body.String())
}

func TestUpdate_KeepsAvailability(t *testing.T) {
	api := newAPI(t)
	id := api.create(t, validBody("Cap", "hats", "Acme", 25))

	w := api.do(t, http.MethodPatch, "/products/"+id, map[string]any{"name": "Wool Cap", "stock": 0, "price": "12.50"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got := decode[product.Product](t, w)
	assert.Equal(t, "Wool Cap", got.Name)
	assert.Equal(t, 0, got.Stock)
	assert.Equal(t, "12.5", got.Price.String())
	assert.Equal(t, "in_stock", got.Availability)

	w = api.do(t, http.MethodPatch, "/products/"+id, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodPatch, "/products/6f1c2e8a-0000-4000-8000-000000000000", map[string]any{"name": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateStock(t *testing.T) {
	api := newAPI(t)
	id := api.create(t, validBody("Cap", "hats", "Acme", 25))

	cases := []struct {
		quantity int
		want     string
	}{
		{0, "out_of_stock"},
		{19, "low_stock"},
		{20, "in_stock"},
	}
	for _, tc := range cases {
		w := api.do(t, http.MethodPatch, "/products/"+id+"/stock", map[string]any{"quantity": tc.quantity})
		require.Equal(t, http.StatusOK, w.Code)
		got := decode[product.Product](t, w)
		assert.Equal(t, tc.quantity, got.Stock)
		assert.Equal(t, tc.want, got.Availability)
	}

	w := api.do(t, http.MethodPatch, "/products/"+id+"/stock", map[string]any{"quantity": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodPatch, "/products/"+id+"/stock", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodPatch, "/products/6f1c2e8a-0000-4000-8000-000000000000/stock", map[string]any{"quantity": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRemove(t *testing.T) {
	api := newAPI(t)
	id := api.create(t, validBody("Cap", "hats", "Acme", 25))

	w := api.do(t, http.MethodDelete, "/products/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(t, http.MethodGet, "/products/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(t, http.MethodDelete, "/products/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 2, api.writes["remove"])
}
