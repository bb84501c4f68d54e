package get_product

import (
	"context"
	"fmt"

	"github.com/murkotick/storefront-catalog/internal/app/product/domain"
	"github.com/murkotick/storefront-catalog/internal/models/m_product"
	"github.com/murkotick/storefront-catalog/internal/statement"
	"github.com/murkotick/storefront-catalog/internal/store"
)

// lookupFetchSize bounds each page of a filtering lookup. Filtering reads may
// return short or empty pages that still carry a page state.
const lookupFetchSize = 100

// StoreGetProductQuery loads single products.
type StoreGetProductQuery struct {
	Exec    store.Executor
	Builder *statement.Builder
}

func NewStoreGetProductQuery(exec store.Executor, builder *statement.Builder) *StoreGetProductQuery {
	return &StoreGetProductQuery{Exec: exec, Builder: builder}
}

// FindOne is a primary key lookup.
func (q *StoreGetProductQuery) FindOne(ctx context.Context, id string) (*domain.Product, error) {
	return q.first(ctx, []statement.Cond{statement.Eq(m_product.ColID, id)}, false, id)
}

// FindByInternalID filters on the catalog code, which is not part of the key.
func (q *StoreGetProductQuery) FindByInternalID(ctx context.Context, internalID string) (*domain.Product, error) {
	return q.first(ctx, []statement.Cond{statement.Eq(m_product.ColInternalID, internalID)}, true, internalID)
}

func (q *StoreGetProductQuery) first(ctx context.Context, where []statement.Cond, allowFiltering bool, ref string) (*domain.Product, error) {
	st, err := q.Builder.Select(m_product.TableName, nil, where, allowFiltering)
	if err != nil {
		return nil, err
	}

	opts := store.QueryOptions{FetchSize: lookupFetchSize}
	for {
		rs, err := q.Exec.Execute(ctx, st.Query, st.Params, opts)
		if err != nil {
			return nil, err
		}
		if len(rs.Rows) > 0 {
			return m_product.FromRow(rs.Rows[0])
		}
		if rs.PageState == "" {
			return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, ref)
		}
		opts.PageState = rs.PageState
	}
}
