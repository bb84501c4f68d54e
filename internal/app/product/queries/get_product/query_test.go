package get_product

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/murkotick/storefront-catalog/internal/app/product/domain"
	"github.com/murkotick/storefront-catalog/internal/models/m_product"
	"github.com/murkotick/storefront-catalog/internal/schema"
	"github.com/murkotick/storefront-catalog/internal/statement"
	"github.com/murkotick/storefront-catalog/internal/store"
)

const byInternalID = "SELECT * FROM products WHERE internal_id = ? ALLOW FILTERING"

type executorMock struct {
	mock.Mock
}

func (m *executorMock) Execute(ctx context.Context, query string, params []any, opts store.QueryOptions) (*store.ResultSet, error) {
	args := m.Called(ctx, query, params, opts)
	rs, _ := args.Get(0).(*store.ResultSet)
	return rs, args.Error(1)
}

func (m *executorMock) Batch(ctx context.Context, stmts []store.Statement) error {
	return m.Called(ctx, stmts).Error(0)
}

func newQuery(t *testing.T, exec store.Executor) *StoreGetProductQuery {
	reg := schema.NewRegistry()
	require.NoError(t, reg.Register(m_product.Descriptor()))
	return NewStoreGetProductQuery(exec, statement.NewBuilder(reg))
}

func productRow(t *testing.T) store.Row {
	t.Helper()
	p, err := domain.NewProduct("7c1f0a4e-3f7e-4a59-9d1c-2f3a4b5c6d7e", domain.Draft{
		InternalID:       "SKU-1",
		Seq:              3,
		Name:             "Desk Lamp",
		Description:      "LED desk lamp",
		ShortDescription: "Lamp",
		Brand:            "Lumo",
		Category:         "home",
		Price:            decimal.RequireFromString("19.99"),
		Currency:         "EUR",
		Stock:            7,
		EAN:              "5901234123457",
		Color:            "black",
		Size:             "M",
		Image:            "lamp.png",
	}, time.Date(2025, 5, 4, 3, 2, 1, 0, time.UTC))
	require.NoError(t, err)
	return store.Row(m_product.Values(p))
}

func TestFindByInternalID_FollowsEmptyPages(t *testing.T) {
	exec := &executorMock{}
	exec.On("Execute", mock.Anything, byInternalID, []any{"SKU-1"}, store.QueryOptions{FetchSize: lookupFetchSize}).
		Return(&store.ResultSet{PageState: "bmV4dA"}, nil).Once()
	exec.On("Execute", mock.Anything, byInternalID, []any{"SKU-1"}, store.QueryOptions{FetchSize: lookupFetchSize, PageState: "bmV4dA"}).
		Return(&store.ResultSet{Rows: []store.Row{productRow(t)}}, nil).Once()

	p, err := newQuery(t, exec).FindByInternalID(context.Background(), "SKU-1")
	require.NoError(t, err)
	assert.Equal(t, "SKU-1", p.InternalID)
	assert.Equal(t, "Desk Lamp", p.Name)
	exec.AssertExpectations(t)
}

func TestFindByInternalID_NotFoundWhenExhausted(t *testing.T) {
	exec := &executorMock{}
	exec.On("Execute", mock.Anything, byInternalID, []any{"SKU-9"}, store.QueryOptions{FetchSize: lookupFetchSize}).
		Return(&store.ResultSet{PageState: "cDI"}, nil).Once()
	exec.On("Execute", mock.Anything, byInternalID, []any{"SKU-9"}, store.QueryOptions{FetchSize: lookupFetchSize, PageState: "cDI"}).
		Return(&store.ResultSet{}, nil).Once()

	_, err := newQuery(t, exec).FindByInternalID(context.Background(), "SKU-9")
	require.ErrorIs(t, err, domain.ErrProductNotFound)
	exec.AssertExpectations(t)
}

func TestFindOne_StoreErrorPropagates(t *testing.T) {
	boom := errors.New("unavailable")
	exec := &executorMock{}
	exec.On("Execute", mock.Anything, "SELECT * FROM products WHERE id = ?", []any{"abc"}, store.QueryOptions{FetchSize: lookupFetchSize}).
		Return(nil, boom).Once()

	_, err := newQuery(t, exec).FindOne(context.Background(), "abc")
	require.ErrorIs(t, err, boom)
	exec.AssertExpectations(t)
}
