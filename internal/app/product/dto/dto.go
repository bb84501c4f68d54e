package dto

import (
	"github.com/shopspring/decimal"

	"github.com/murkotick/storefront-catalog/internal/app/product/domain"
)

// Filters are the optional store-level predicates of a listing. Nil means "not set".
type Filters struct {
	Category *string
	Brand    *string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

func (f Filters) IsEmpty() bool {
	return f.Category == nil && f.Brand == nil && f.MinPrice == nil && f.MaxPrice == nil
}

// PageRequest asks for one page. PagingState is the opaque token of a previous Page.
type PageRequest struct {
	PageSize    int
	PagingState string
}

// Page is one page of products. NextPageState is empty once the listing is exhausted.
type Page struct {
	Items         []*domain.Product
	PageSize      int
	NextPageState string
}
