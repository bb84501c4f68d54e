// Package client is a typed HTTP client for the catalog API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/murkotick/storefront-catalog/internal/transport/http/httpapi"
	httpproduct "github.com/murkotick/storefront-catalog/internal/transport/http/product"
)

type (
	Product  = httpproduct.Product
	Page     = httpproduct.Page
	Response = httpproduct.ListResponse
)

// APIError is returned for every non-2xx response.
type APIError struct {
	Status  int
	Type    string
	Message string
	Errors  []httpapi.ValidationError
}

func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		parts := make([]string, 0, len(e.Errors))
		for _, fe := range e.Errors {
			parts = append(parts, fe.Field+": "+fe.Message)
		}
		return fmt.Sprintf("catalog: %d %s: %s", e.Status, e.Type, strings.Join(parts, "; "))
	}
	return fmt.Sprintf("catalog: %d %s: %s", e.Status, e.Type, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// ProductInput is the body of a create request.
type ProductInput struct {
	InternalID       string          `json:"internalId,omitempty"`
	Seq              *int64          `json:"seq,omitempty"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	ShortDescription string          `json:"shortDescription"`
	Brand            string          `json:"brand"`
	Category         string          `json:"category"`
	Price            decimal.Decimal `json:"price"`
	Currency         string          `json:"currency"`
	Stock            int             `json:"stock"`
	EAN              string          `json:"ean"`
	Color            string          `json:"color"`
	Size             string          `json:"size"`
	Availability     string          `json:"availability,omitempty"`
	Image            string          `json:"image"`
}

// ProductPatch is the body of a partial update. Nil fields are not sent.
type ProductPatch struct {
	InternalID       *string          `json:"internalId,omitempty"`
	Seq              *int64           `json:"seq,omitempty"`
	Name             *string          `json:"name,omitempty"`
	Description      *string          `json:"description,omitempty"`
	ShortDescription *string          `json:"shortDescription,omitempty"`
	Brand            *string          `json:"brand,omitempty"`
	Category         *string          `json:"category,omitempty"`
	Price            *decimal.Decimal `json:"price,omitempty"`
	Currency         *string          `json:"currency,omitempty"`
	Stock            *int             `json:"stock,omitempty"`
	EAN              *string          `json:"ean,omitempty"`
	Color            *string          `json:"color,omitempty"`
	Size             *string          `json:"size,omitempty"`
	Availability     *string          `json:"availability,omitempty"`
	Image            *string          `json:"image,omitempty"`
}

// ListParams are the optional listing filters. Zero values are omitted.
type ListParams struct {
	Category    string
	Brand       string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	PageSize    int
	PagingState string
}

func (p ListParams) values() url.Values {
	v := url.Values{}
	setIf(v, "category", p.Category)
	setIf(v, "brand", p.Brand)
	if p.MinPrice != nil {
		v.Set("minPrice", p.MinPrice.String())
	}
	if p.MaxPrice != nil {
		v.Set("maxPrice", p.MaxPrice.String())
	}
	if p.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(p.PageSize))
	}
	setIf(v, "pagingState", p.PagingState)
	return v
}

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Create(ctx context.Context, in ProductInput) (string, error) {
	var out httpproduct.CreateResponse
	if err := c.do(ctx, http.MethodPost, "/products", nil, in, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) CreateBatch(ctx context.Context, in []ProductInput) ([]string, error) {
	var out httpproduct.CreateBatchResponse
	if err := c.do(ctx, http.MethodPost, "/products/batch", nil, in, &out); err != nil {
		return nil, err
	}
	return out.IDs, nil
}

func (c *Client) List(ctx context.Context, p ListParams) (*Page, error) {
	var out Page
	if err := c.do(ctx, http.MethodGet, "/products", p.values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search matches q against name and descriptions. Only Category, Brand and
// paging of p are used.
func (c *Client) Search(ctx context.Context, q string, p ListParams) (*Page, error) {
	v := ListParams{Category: p.Category, Brand: p.Brand, PageSize: p.PageSize, PagingState: p.PagingState}.values()
	v.Set("q", q)

	var out Page
	if err := c.do(ctx, http.MethodGet, "/products/search", v, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Latest(ctx context.Context, limit int) ([]Product, error) {
	return c.items(ctx, "/products/latest", limit)
}

func (c *Client) Featured(ctx context.Context, limit int) ([]Product, error) {
	return c.items(ctx, "/products/featured", limit)
}

func (c *Client) ByCategory(ctx context.Context, category string, limit int) ([]Product, error) {
	return c.items(ctx, "/products/category/"+url.PathEscape(category), limit)
}

func (c *Client) ByBrand(ctx context.Context, brand string, limit int) ([]Product, error) {
	return c.items(ctx, "/products/brand/"+url.PathEscape(brand), limit)
}

func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var out struct {
		Categories []string `json:"categories"`
	}
	if err := c.do(ctx, http.MethodGet, "/products/categories", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

func (c *Client) Brands(ctx context.Context) ([]string, error) {
	var out struct {
		Brands []string `json:"brands"`
	}
	if err := c.do(ctx, http.MethodGet, "/products/brands", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Brands, nil
}

func (c *Client) Get(ctx context.Context, id string) (*Product, error) {
	var out Product
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetByInternalID(ctx context.Context, internalID string) (*Product, error) {
	var out Product
	if err := c.do(ctx, http.MethodGet, "/products/internal/"+url.PathEscape(internalID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Update(ctx context.Context, id string, patch ProductPatch) (*Product, error) {
	var out Product
	if err := c.do(ctx, http.MethodPatch, "/products/"+url.PathEscape(id), nil, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateStock(ctx context.Context, id string, quantity int) (*Product, error) {
	var out Product
	body := map[string]int{"quantity": quantity}
	if err := c.do(ctx, http.MethodPatch, "/products/"+url.PathEscape(id)+"/stock", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Remove(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

func (c *Client) items(ctx context.Context, path string, limit int) ([]Product, error) {
	v := url.Values{}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	var out Response
	if err := c.do(ctx, http.MethodGet, path, v, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("catalog: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("catalog: decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Type: "http_error", Message: resp.Status}

	var payload httpapi.Response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error.Type != "" {
		apiErr.Type = payload.Error.Type
		apiErr.Message = payload.Error.Message
		apiErr.Errors = payload.Error.Errors
	}
	return apiErr
}

func setIf(v url.Values, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		v.Set(key, value)
	}
}
