package top_products

import (
	"context"
	"slices"

	"github.com/murkotick/storefront-catalog/internal/app/product/domain"
	"github.com/murkotick/storefront-catalog/internal/models/m_product"
	"github.com/murkotick/storefront-catalog/internal/statement"
	"github.com/murkotick/storefront-catalog/internal/store"
)

// StoreTopProductsQuery answers "top N" reads. The store cannot order by
// non-key columns, so it fetches a window of rows and sorts them here.
// Rows outside the window are never considered.
type StoreTopProductsQuery struct {
	Exec    store.Executor
	Builder *statement.Builder
	Window  int
}

func NewStoreTopProductsQuery(exec store.Executor, builder *statement.Builder, window int) *StoreTopProductsQuery {
	return &StoreTopProductsQuery{Exec: exec, Builder: builder, Window: window}
}

// Latest returns the newest products.
func (q *StoreTopProductsQuery) Latest(ctx context.Context, limit int) ([]*domain.Product, error) {
	return q.top(ctx, nil, limit, newestFirst)
}

func (q *StoreTopProductsQuery) ByCategory(ctx context.Context, category string, limit int) ([]*domain.Product, error) {
	return q.top(ctx, []statement.Cond{statement.Eq(m_product.ColCategory, category)}, limit, newestFirst)
}

func (q *StoreTopProductsQuery) ByBrand(ctx context.Context, brand string, limit int) ([]*domain.Product, error) {
	return q.top(ctx, []statement.Cond{statement.Eq(m_product.ColBrand, brand)}, limit, newestFirst)
}

// Featured returns in-stock products with the most stock, newest first on ties.
func (q *StoreTopProductsQuery) Featured(ctx context.Context, limit int) ([]*domain.Product, error) {
	where := []statement.Cond{statement.Eq(m_product.ColAvailability, string(domain.InStock))}
	return q.top(ctx, where, limit, func(a, b *domain.Product) int {
		if a.Stock != b.Stock {
			return b.Stock - a.Stock
		}
		return newestFirst(a, b)
	})
}

func (q *StoreTopProductsQuery) top(ctx context.Context, where []statement.Cond, limit int, cmp func(a, b *domain.Product) int) ([]*domain.Product, error) {
	if limit <= 0 {
		return []*domain.Product{}, nil
	}

	st, err := q.Builder.Select(m_product.TableName, nil, where, len(where) > 0)
	if err != nil {
		return nil, err
	}

	rs, err := q.Exec.Execute(ctx, st.Query, st.Params, store.QueryOptions{FetchSize: q.window(limit)})
	if err != nil {
		return nil, err
	}

	items, err := m_product.FromRows(rs.Rows)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(items, cmp)
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (q *StoreTopProductsQuery) window(limit int) int {
	if q.Window < limit {
		return limit
	}
	return q.Window
}

func newestFirst(a, b *domain.Product) int {
	return b.CreatedAt.Compare(a.CreatedAt)
}
