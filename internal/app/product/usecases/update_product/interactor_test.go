package update_product_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/murkotick/storefront-catalog/internal/app/product/domain"
	"github.com/murkotick/storefront-catalog/internal/app/product/queries"
	"github.com/murkotick/storefront-catalog/internal/app/product/repo"
	"github.com/murkotick/storefront-catalog/internal/app/product/usecases/update_product"
	"github.com/murkotick/storefront-catalog/internal/models/m_product"
	"github.com/murkotick/storefront-catalog/internal/pkg/committer"
	"github.com/murkotick/storefront-catalog/internal/schema"
	"github.com/murkotick/storefront-catalog/internal/statement"
	"github.com/murkotick/storefront-catalog/internal/store"
	"github.com/murkotick/storefront-catalog/internal/store/memstore"
)

func setup(t *testing.T) (*update_product.Interactor, *queries.StoreReadModel) {
	t.Helper()
	reg := schema.NewRegistry()
	require.NoError(t, reg.Register(m_product.Descriptor()))
	b := statement.NewBuilder(reg)
	exec := memstore.New(reg)
	r := repo.NewProductRepo(b)

	p, err := domain.NewProduct("p1", domain.Draft{
		Name: "Scarf", Description: "Wool scarf", ShortDescription: "Scarf", Brand: "Knit", Category: "apparel",
		Price: decimal.RequireFromString("25.00"), Currency: "GBP", Stock: 30, EAN: "456", Color: "grey",
		Size: "One", Image: "scarf.png",
	}, time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	st, err := r.InsertStmt(p)
	require.NoError(t, err)
	_, err = exec.Execute(context.Background(), st.Query, st.Params, store.QueryOptions{})
	require.NoError(t, err)

	rm := queries.NewStoreReadModel(exec, b, queries.Options{ScanWindow: 10, DistinctFetchSize: 10})
	return update_product.NewInteractor(r, committer.NewAdapter(exec, b), rm), rm
}

func TestUpdate_MergesAndPersists(t *testing.T) {
	ctx := context.Background()
	it, rm := setup(t)

	name := "Cashmere Scarf"
	price := decimal.RequireFromString("79.50")
	out, err := it.Execute(ctx, update_product.Request{ProductID: "p1", Patch: domain.Patch{Name: &name, Price: &price}})
	require.NoError(t, err)
	assert.Equal(t, "Cashmere Scarf", out.Name)

	stored, err := rm.FindOne(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Cashmere Scarf", stored.Name)
	assert.True(t, stored.Price.Equal(price))
	assert.Equal(t, "Knit", stored.Brand)
	assert.Equal(t, time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC), stored.CreatedAt)
}

func TestUpdate_StockDoesNotRecomputeAvailability(t *testing.T) {
	ctx := context.Background()
	it, rm := setup(t)

	stock := 0
	_, err := it.Execute(ctx, update_product.Request{ProductID: "p1", Patch: domain.Patch{Stock: &stock}})
	require.NoError(t, err)

	stored, err := rm.FindOne(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Stock)
	assert.Equal(t, domain.InStock, stored.Availability)
}

func TestUpdate_NotFoundAndInvalid(t *testing.T) {
	ctx := context.Background()
	it, rm := setup(t)

	name := "x"
	_, err := it.Execute(ctx, update_product.Request{ProductID: "ghost", Patch: domain.Patch{Name: &name}})
	require.ErrorIs(t, err, domain.ErrProductNotFound)

	bad := "ABC"
	_, err = it.Execute(ctx, update_product.Request{ProductID: "p1", Patch: domain.Patch{EAN: &bad}})
	require.ErrorIs(t, err, domain.ErrInvalidEAN)

	stored, err := rm.FindOne(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "456", stored.EAN)
}
