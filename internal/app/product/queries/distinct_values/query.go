package distinct_values

import (
	"context"
	"fmt"
	"slices"

	"github.com/murkotick/storefront-catalog/internal/models/m_product"
	"github.com/murkotick/storefront-catalog/internal/statement"
	"github.com/murkotick/storefront-catalog/internal/store"
)

// StoreDistinctValuesQuery lists the distinct values of a single column.
// The scan stops after FetchSize rows.
type StoreDistinctValuesQuery struct {
	Exec      store.Executor
	Builder   *statement.Builder
	FetchSize int
}

func NewStoreDistinctValuesQuery(exec store.Executor, builder *statement.Builder, fetchSize int) *StoreDistinctValuesQuery {
	return &StoreDistinctValuesQuery{Exec: exec, Builder: builder, FetchSize: fetchSize}
}

func (q *StoreDistinctValuesQuery) Categories(ctx context.Context) ([]string, error) {
	return q.distinct(ctx, m_product.ColCategory)
}

func (q *StoreDistinctValuesQuery) Brands(ctx context.Context) ([]string, error) {
	return q.distinct(ctx, m_product.ColBrand)
}

func (q *StoreDistinctValuesQuery) distinct(ctx context.Context, column string) ([]string, error) {
	st, err := q.Builder.Select(m_product.TableName, []string{column}, nil, false)
	if err != nil {
		return nil, err
	}

	rs, err := q.Exec.Execute(ctx, st.Query, st.Params, store.QueryOptions{FetchSize: q.FetchSize})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, row := range rs.Rows {
		raw := row[column]
		if raw == nil {
			continue
		}
		v, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("distinct %s: unexpected type %T", column, raw)
		}
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	slices.Sort(out)
	return out, nil
}
