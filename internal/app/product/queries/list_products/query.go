package list_products

import (
	"context"
	"strings"

	"github.com/murkotick/storefront-catalog/internal/app/product/domain"
	"github.com/murkotick/storefront-catalog/internal/app/product/dto"
	"github.com/murkotick/storefront-catalog/internal/models/m_product"
	"github.com/murkotick/storefront-catalog/internal/statement"
	"github.com/murkotick/storefront-catalog/internal/store"
)

// StoreListProductsQuery serves paginated listings and text search.
type StoreListProductsQuery struct {
	Exec    store.Executor
	Builder *statement.Builder
}

func NewStoreListProductsQuery(exec store.Executor, builder *statement.Builder) *StoreListProductsQuery {
	return &StoreListProductsQuery{Exec: exec, Builder: builder}
}

// FindAllPaginate returns one page of products matching every present filter.
// The paging token is handed to the store untouched.
func (q *StoreListProductsQuery) FindAllPaginate(ctx context.Context, filters dto.Filters, page dto.PageRequest) (*dto.Page, error) {
	where := make([]statement.Cond, 0, 4)
	if filters.Category != nil {
		where = append(where, statement.Eq(m_product.ColCategory, *filters.Category))
	}
	if filters.Brand != nil {
		where = append(where, statement.Eq(m_product.ColBrand, *filters.Brand))
	}
	if filters.MinPrice != nil {
		where = append(where, statement.Gte(m_product.ColPrice, filters.MinPrice.InexactFloat64()))
	}
	if filters.MaxPrice != nil {
		where = append(where, statement.Lte(m_product.ColPrice, filters.MaxPrice.InexactFloat64()))
	}

	st, err := q.Builder.Select(m_product.TableName, nil, where, !filters.IsEmpty())
	if err != nil {
		return nil, err
	}

	rs, err := q.Exec.Execute(ctx, st.Query, st.Params, store.QueryOptions{
		FetchSize: page.PageSize,
		PageState: page.PagingState,
	})
	if err != nil {
		return nil, err
	}

	items, err := m_product.FromRows(rs.Rows)
	if err != nil {
		return nil, err
	}

	return &dto.Page{
		Items:         items,
		PageSize:      page.PageSize,
		NextPageState: rs.PageState,
	}, nil
}

// Search fetches one page with the category/brand filters and keeps the rows whose
// name, description or short description contain text, ignoring case.
// Only the fetched page is searched, so a page can come back short or empty
// while NextPageState still points at more rows.
func (q *StoreListProductsQuery) Search(ctx context.Context, text string, filters dto.Filters, page dto.PageRequest) (*dto.Page, error) {
	structured := dto.Filters{Category: filters.Category, Brand: filters.Brand}

	res, err := q.FindAllPaginate(ctx, structured, page)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(text))
	matched := make([]*domain.Product, 0, len(res.Items))
	for _, p := range res.Items {
		if matches(p, needle) {
			matched = append(matched, p)
		}
	}
	res.Items = matched
	return res, nil
}

func matches(p *domain.Product, needle string) bool {
	if needle == "" {
		return true
	}
	for _, field := range []string{p.Name, p.Description, p.ShortDescription} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
