package queries

import (
	"context"

	"github.com/murkotick/storefront-catalog/internal/app/product/domain"
	"github.com/murkotick/storefront-catalog/internal/app/product/dto"
	"github.com/murkotick/storefront-catalog/internal/app/product/queries/distinct_values"
	"github.com/murkotick/storefront-catalog/internal/app/product/queries/get_product"
	"github.com/murkotick/storefront-catalog/internal/app/product/queries/list_products"
	"github.com/murkotick/storefront-catalog/internal/app/product/queries/top_products"
	"github.com/murkotick/storefront-catalog/internal/statement"
	"github.com/murkotick/storefront-catalog/internal/store"
)

// Options size the oversized scans behind top-N and distinct reads.
type Options struct {
	ScanWindow        int
	DistinctFetchSize int
}

// StoreReadModel satisfies contracts.ReadModel on top of any store.Executor.
// It composes the individual query implementations.
type StoreReadModel struct {
	getQ      *get_product.StoreGetProductQuery
	listQ     *list_products.StoreListProductsQuery
	topQ      *top_products.StoreTopProductsQuery
	distinctQ *distinct_values.StoreDistinctValuesQuery
}

func NewStoreReadModel(exec store.Executor, builder *statement.Builder, opts Options) *StoreReadModel {
	return &StoreReadModel{
		getQ:      get_product.NewStoreGetProductQuery(exec, builder),
		listQ:     list_products.NewStoreListProductsQuery(exec, builder),
		topQ:      top_products.NewStoreTopProductsQuery(exec, builder, opts.ScanWindow),
		distinctQ: distinct_values.NewStoreDistinctValuesQuery(exec, builder, opts.DistinctFetchSize),
	}
}

func (rm *StoreReadModel) FindOne(ctx context.Context, id string) (*domain.Product, error) {
	return rm.getQ.FindOne(ctx, id)
}

func (rm *StoreReadModel) FindByInternalID(ctx context.Context, internalID string) (*domain.Product, error) {
	return rm.getQ.FindByInternalID(ctx, internalID)
}

func (rm *StoreReadModel) FindAllPaginate(ctx context.Context, filters dto.Filters, page dto.PageRequest) (*dto.Page, error) {
	return rm.listQ.FindAllPaginate(ctx, filters, page)
}

func (rm *StoreReadModel) Search(ctx context.Context, query string, filters dto.Filters, page dto.PageRequest) (*dto.Page, error) {
	return rm.listQ.Search(ctx, query, filters, page)
}

func (rm *StoreReadModel) FindLatest(ctx context.Context, limit int) ([]*domain.Product, error) {
	return rm.topQ.Latest(ctx, limit)
}

func (rm *StoreReadModel) FindFeatured(ctx context.Context, limit int) ([]*domain.Product, error) {
	return rm.topQ.Featured(ctx, limit)
}

func (rm *StoreReadModel) FindByCategory(ctx context.Context, category string, limit int) ([]*domain.Product, error) {
	return rm.topQ.ByCategory(ctx, category, limit)
}

func (rm *StoreReadModel) FindByBrand(ctx context.Context, brand string, limit int) ([]*domain.Product, error) {
	return rm.topQ.ByBrand(ctx, brand, limit)
}

func (rm *StoreReadModel) Categories(ctx context.Context) ([]string, error) {
	return rm.distinctQ.Categories(ctx)
}

func (rm *StoreReadModel) Brands(ctx context.Context) ([]string, error) {
	return rm.distinctQ.Brands(ctx)
}
