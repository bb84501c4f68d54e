package product

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/murkotick/storefront-catalog/internal/app/product/contracts"
	"github.com/murkotick/storefront-catalog/internal/app/product/dto"
	"github.com/murkotick/storefront-catalog/internal/app/product/usecases/create_product"
	"github.com/murkotick/storefront-catalog/internal/app/product/usecases/remove_product"
	"github.com/murkotick/storefront-catalog/internal/app/product/usecases/update_product"
	"github.com/murkotick/storefront-catalog/internal/app/product/usecases/update_stock"
	"github.com/murkotick/storefront-catalog/internal/transport/http/httpapi"
)

const (
	defaultPageSize = 10
	maxPageSize     = 200
	defaultLimit    = 10
)

// Commands groups write interactors.
type Commands struct {
	Create      *create_product.Interactor
	Update      *update_product.Interactor
	UpdateStock *update_stock.Interactor
	Remove      *remove_product.Interactor
}

// WriteRecorder counts successful writes. *metrics.Metrics satisfies it.
type WriteRecorder interface {
	RecordProductWrite(operation string, n int)
}

type Options struct {
	DefaultPageSize int
	MaxPageSize     int
	Recorder        WriteRecorder
}

// Handler is a thin HTTP adapter: it validates input, maps JSON to
// application requests and delegates to the interactors and the read model.
type Handler struct {
	commands Commands
	queries  contracts.ReadModel
	opts     Options
}

func NewHandler(cmd Commands, qry contracts.ReadModel, opts Options) *Handler {
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = defaultPageSize
	}
	if opts.MaxPageSize < opts.DefaultPageSize {
		opts.MaxPageSize = max(maxPageSize, opts.DefaultPageSize)
	}
	return &Handler{commands: cmd, queries: qry, opts: opts}
}

// Register mounts every product route on r.
func (h *Handler) Register(r gin.IRouter) {
	products := r.Group("/products")
	products.POST("", h.CreateProduct)
	products.POST("/batch", h.CreateProducts)
	products.GET("", h.ListProducts)
	products.GET("/search", h.SearchProducts)
	products.GET("/latest", h.LatestProducts)
	products.GET("/featured", h.FeaturedProducts)
	products.GET("/categories", h.Categories)
	products.GET("/brands", h.Brands)
	products.GET("/category/:category", h.ProductsByCategory)
	products.GET("/brand/:brand", h.ProductsByBrand)
	products.GET("/internal/:id", h.GetProductByInternalID)
	products.GET("/:id", h.GetProduct)
	products.PATCH("/:id", h.UpdateProduct)
	products.PATCH("/:id/stock", h.UpdateStock)
	products.DELETE("/:id", h.RemoveProduct)
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.AbortWithError(c, httpapi.InvalidRequestError())
		return
	}

	var v httpapi.ValidationErrors
	req.validate(&v, "")
	if err := v.OrNil(); err != nil {
		httpapi.AbortWithError(c, err)
		return
	}

	id, err := h.commands.Create.Execute(c.Request.Context(), req.toApp())
	if err != nil {
		httpapi.AbortWithError(c, err)
		return
	}

	h.record("create", 1)
	c.JSON(http.StatusCreated, CreateResponse{ID: id})
}

func (h *Handler) CreateProducts(c *gin.Context) {
	var reqs []createProductRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		httpapi.AbortWithError(c, httpapi.InvalidRequestError())
		return
	}
	if len(reqs) == 0 {
		httpapi.AbortWithError(c, httpapi.NewValidationError("request", "empty_batch", "at least one product is required"))
		return
	}

	var v httpapi.ValidationErrors
	appReqs := make([]create_product.Request, 0, len(reqs))
	for i, req := range reqs {
		req.validate(&v, itemPrefix(i))
		appReqs = append(appReqs, req.toApp())
	}
	if err := v.OrNil(); err != nil {
		httpapi.AbortWithError(c, err)
		return
	}

	ids, err := h.commands.Create.ExecuteMany(c.Request.Context(), appReqs)
	if err != nil {
		httpapi.AbortWithError(c, err)
		return
	}

	h.record("create", len(ids))
	c.JSON(http.StatusCreated, CreateBatchResponse{IDs: ids})
}

func (h *Handler) ListProducts(c *gin.Context) {
	var query struct {
		Page        string `form:"page"`
		Limit       string `form:"limit"`
		PageSize    string `form:"pageSize"`
		PagingState string `form:"pagingState"`
		Category    string `form:"category"`
		Brand       string `form:"brand"`
		MinPrice    string `form:"minPrice"`
		MaxPrice    string `form:"maxPrice"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		httpapi.AbortWithError(c, httpapi.InvalidRequestError())
		return
	}

	var v httpapi.ValidationErrors
	if page, err := parseOptionalInt(query.Page, 1); err != nil || page < 1 {
		v.Add("page", "min", "page must be a positive integer")
	}
	pageReq := h.pageRequest(&v, query.PageSize, query.Limit, query.PagingState)

	filters := dto.Filters{
		Category: optionalString(query.Category),
		Brand:    optionalString(query.Brand),
	}
	var err error
	if filters.MinPrice, err = parseOptionalDecimal(query.MinPrice); err != nil {
		v.Add("minPrice", "invalid", "minPrice must be a decimal number")
	}
	if filters.MaxPrice, err = parseOptionalDecimal(query.MaxPrice); err != nil {
		v.Add("maxPrice", "invalid", "maxPrice must be a decimal number")
	}
	if err := v.OrNil(); err != nil {
		httpapi.AbortWithError(c, err)
		return
	}

	page, err := h.queries.FindAllPaginate(c.Request.Context(), filters, pageReq)
	if err != nil {
		httpapi.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toPage(page))
}

func (h *Handler) SearchProducts(c *gin.Context) {
	var query struct {
		Q           string `form:"q"`
		PageSize    string `form:"pageSize"`
		Limit       string `form:"limit"`
		PagingState string `form:"pagingState"`
		Category    string `form:"category"`
		Brand       string `form:"brand"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		httpapi.AbortWithError(c, httpapi.InvalidRequestError())
		return
	}

	var v httpapi.ValidationErrors
	q := strings.TrimSpace(query.Q)
	if q == "" {
		v.Add("q", "required", "q is required")
	}
	pageReq := h.pageRequest(&v, query.PageSize, query.Limit, query.PagingState)
	if err := v.OrNil(); err != nil {
		httpapi.AbortWithError(c, err)
		return
	}

	filters := dto.Filters{
		Category: optionalString(query.Category),
		Brand:    optionalString(query.Brand),
	}
	page, err := h.queries.Search(c.Request.Context(), q, filters, pageReq)
	if err != nil {
		httpapi.AbortWithError(c, err)
		return
	}

	resp := toPage(page)
	resp.Query = q
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) LatestProducts(c *gin.Context) {
	limit, ok := h.limit(c)
	if !ok {
		return
	}
	products, err := h.queries.FindLatest(c.Request.Context(), limit)
	if err != nil {
		httpapi.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: toProducts(products)})
}

func (h *Handler) FeaturedProducts(c *gin.Context) {
	limit, ok := h.limit(c)
	if !ok {
		return
	}
	products, err := h.queries.FindFeatured(c.Request.Context(), limit)
	if err != nil {
		httpapi.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: toProducts(products)})
}

func (h *Handler) ProductsByCategory(c *gin.Context) {
	limit, ok := h.limit(c)
	if !ok {
		return
	}
	products, err := h.queries.FindByCategory(c.Request.Context(), strings.TrimSpace(c.Param("category")), limit)
	if err != nil {
		httpapi.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: toProducts(products)})
}

func (h *Handler) ProductsByBrand(c *gin.Context) {
	limit, ok := h.limit(c)
	if !ok {
		return
	}
	products, err := h.queries.FindByBrand(c.Request.Context(), strings.TrimSpace(c.Param("brand")), limit)
	if err != nil {
		httpapi.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: toProducts(products)})
}

func (h *Handler) Categories(c *gin.Context) {
	categories, err := h.queries.Categories(c.Request.Context())
	if err != nil {
		httpapi.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *Handler) Brands(c *gin.Context) {
	brands, err := h.queries.Brands(c.Request.Context())
	if err != nil {
		httpapi.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"brands": brands})
}

func (h *Handler) GetProduct(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := validateProductID(id); err != nil {
		httpapi.AbortWithError(c, err)
		return
	}

	p, err := h.queries.FindOne(c.Request.Context(), id)
	if err != nil {
		httpapi.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProduct(p))
}

func (h *Handler) GetProductByInternalID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		httpapi.AbortWithError(c, httpapi.NewValidationError("id", "required", "internal id is required"))
		return
	}

	p, err := h.queries.FindByInternalID(c.Request.Context(), id)
	if err != nil {
		httpapi.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProduct(p))
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := validateProductID(id); err != nil {
		httpapi.AbortWithError(c, err)
		return
	}

	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.AbortWithError(c, httpapi.InvalidRequestError())
		return
	}
	var v httpapi.ValidationErrors
	req.validate(&v)
	if err := v.OrNil(); err != nil {
		httpapi.AbortWithError(c, err)
		return
	}

	p, err := h.commands.Update.Execute(c.Request.Context(), update_product.Request{
		ProductID: id,
		Patch:     req.toPatch(),
	})
	if err != nil {
		httpapi.AbortWithError(c, err)
		return
	}

	h.record("update", 1)
	c.JSON(http.StatusOK, toProduct(p))
}

func (h *Handler) UpdateStock(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := validateProductID(id); err != nil {
		httpapi.AbortWithError(c, err)
		return
	}

	var req updateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.AbortWithError(c, httpapi.InvalidRequestError())
		return
	}
	var v httpapi.ValidationErrors
	req.validate(&v)
	if err := v.OrNil(); err != nil {
		httpapi.AbortWithError(c, err)
		return
	}

	p, err := h.commands.UpdateStock.Execute(c.Request.Context(), update_stock.Request{
		ProductID: id,
		Stock:     *req.Quantity,
	})
	if err != nil {
		httpapi.AbortWithError(c, err)
		return
	}

	h.record("update_stock", 1)
	c.JSON(http.StatusOK, toProduct(p))
}

func (h *Handler) RemoveProduct(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := validateProductID(id); err != nil {
		httpapi.AbortWithError(c, err)
		return
	}

	if err := h.commands.Remove.Execute(c.Request.Context(), id); err != nil {
		httpapi.AbortWithError(c, err)
		return
	}

	h.record("remove", 1)
	c.Status(http.StatusNoContent)
}

// pageRequest resolves pageSize, falling back to limit, then to the default.
func (h *Handler) pageRequest(v *httpapi.ValidationErrors, pageSize, limit, pagingState string) dto.PageRequest {
	raw := pageSize
	field := "pageSize"
	if strings.TrimSpace(raw) == "" {
		raw, field = limit, "limit"
	}

	size, err := parseOptionalInt(raw, h.opts.DefaultPageSize)
	if err != nil || size < 1 {
		v.Add(field, "min", field+" must be a positive integer")
	}
	return dto.PageRequest{
		PageSize:    min(size, h.opts.MaxPageSize),
		PagingState: strings.TrimSpace(pagingState),
	}
}

func (h *Handler) limit(c *gin.Context) (int, bool) {
	limit, err := parseOptionalInt(c.Query("limit"), defaultLimit)
	if err != nil || limit < 1 {
		httpapi.AbortWithError(c, httpapi.NewValidationError("limit", "min", "limit must be a positive integer"))
		return 0, false
	}
	return min(limit, h.opts.MaxPageSize), true
}

func (h *Handler) record(operation string, n int) {
	if h.opts.Recorder != nil {
		h.opts.Recorder.RecordProductWrite(operation, n)
	}
}
