package contracts

import (
	"context"

	"github.com/murkotick/storefront-catalog/internal/app/product/domain"
	"github.com/murkotick/storefront-catalog/internal/app/product/dto"
)

type ReadModel interface {
	FindOne(ctx context.Context, id string) (*domain.Product, error)
	FindByInternalID(ctx context.Context, internalID string) (*domain.Product, error)

	FindAllPaginate(ctx context.Context, filters dto.Filters, page dto.PageRequest) (*dto.Page, error)
	Search(ctx context.Context, query string, filters dto.Filters, page dto.PageRequest) (*dto.Page, error)

	FindLatest(ctx context.Context, limit int) ([]*domain.Product, error)
	FindFeatured(ctx context.Context, limit int) ([]*domain.Product, error)
	FindByCategory(ctx context.Context, category string, limit int) ([]*domain.Product, error)
	FindByBrand(ctx context.Context, brand string, limit int) ([]*domain.Product, error)

	Categories(ctx context.Context) ([]string, error)
	Brands(ctx context.Context) ([]string, error)
}
