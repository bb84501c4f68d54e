package product

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/murkotick/storefront-catalog/internal/app/product/domain"
	"github.com/murkotick/storefront-catalog/internal/app/product/dto"
	"github.com/murkotick/storefront-catalog/internal/app/product/usecases/create_product"
)

// Product is the JSON representation of a catalog product.
type Product struct {
	ID               string      `json:"id"`
	InternalID       string      `json:"internalId"`
	Seq              int64       `json:"seq"`
	Name             string      `json:"name"`
	Description      string      `json:"description"`
	ShortDescription string      `json:"shortDescription"`
	Brand            string      `json:"brand"`
	Category         string      `json:"category"`
	Price            json.Number `json:"price"`
	Currency         string      `json:"currency"`
	Stock            int         `json:"stock"`
	EAN              string      `json:"ean"`
	Color            string      `json:"color"`
	Size             string      `json:"size"`
	Availability     string      `json:"availability"`
	Image            string      `json:"image"`
	CreatedAt        time.Time   `json:"createdAt"`
}

type Page struct {
	Items         []Product `json:"items"`
	PageSize      int       `json:"pageSize"`
	NextPageState *string   `json:"nextPageState"`
	Query         string    `json:"query,omitempty"`
}

type ListResponse struct {
	Items []Product `json:"items"`
}

type CreateResponse struct {
	ID string `json:"id"`
}

type CreateBatchResponse struct {
	IDs []string `json:"ids"`
}

func toProduct(p *domain.Product) Product {
	return Product{
		ID:               p.ID,
		InternalID:       p.InternalID,
		Seq:              p.Seq,
		Name:             p.Name,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		Brand:            p.Brand,
		Category:         p.Category,
		Price:            json.Number(p.Price.String()),
		Currency:         string(p.Currency),
		Stock:            p.Stock,
		EAN:              p.EAN,
		Color:            p.Color,
		Size:             p.Size,
		Availability:     string(p.Availability),
		Image:            p.Image,
		CreatedAt:        p.CreatedAt,
	}
}

func toProducts(in []*domain.Product) []Product {
	out := make([]Product, 0, len(in))
	for _, p := range in {
		out = append(out, toProduct(p))
	}
	return out
}

func toPage(page *dto.Page) Page {
	out := Page{
		Items:    toProducts(page.Items),
		PageSize: page.PageSize,
	}
	if page.NextPageState != "" {
		next := page.NextPageState
		out.NextPageState = &next
	}
	return out
}

// flexString accepts a JSON string or number. EANs arrive both ways.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

func (r createProductRequest) toApp() create_product.Request {
	req := create_product.Request{
		InternalID:       r.InternalID,
		Name:             r.Name,
		Description:      r.Description,
		ShortDescription: r.ShortDescription,
		Brand:            r.Brand,
		Category:         r.Category,
		Price:            mustDecimal(r.Price),
		Currency:         r.Currency,
		EAN:              string(r.EAN),
		Color:            r.Color,
		Size:             r.Size,
		Availability:     r.Availability,
		Image:            r.Image,
	}
	if r.Seq != nil {
		req.Seq = *r.Seq
	}
	if r.Stock != nil {
		req.Stock = *r.Stock
	}
	return req
}

func (r updateProductRequest) toPatch() domain.Patch {
	patch := domain.Patch{
		InternalID:       r.InternalID,
		Seq:              r.Seq,
		Name:             r.Name,
		Description:      r.Description,
		ShortDescription: r.ShortDescription,
		Brand:            r.Brand,
		Category:         r.Category,
		Currency:         r.Currency,
		Stock:            r.Stock,
		Color:            r.Color,
		Size:             r.Size,
		Availability:     r.Availability,
		Image:            r.Image,
	}
	if r.Price != nil {
		price := mustDecimal(*r.Price)
		patch.Price = &price
	}
	if r.EAN != nil {
		ean := string(*r.EAN)
		patch.EAN = &ean
	}
	return patch
}

// mustDecimal is only called on values that already passed validation.
func mustDecimal(n json.Number) decimal.Decimal {
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}
