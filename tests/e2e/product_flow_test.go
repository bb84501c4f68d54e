package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/murkotick/storefront-catalog/internal/app/product/domain"
	"github.com/murkotick/storefront-catalog/internal/app/product/dto"
	"github.com/murkotick/storefront-catalog/internal/app/product/usecases/create_product"
	"github.com/murkotick/storefront-catalog/internal/app/product/usecases/update_product"
	"github.com/murkotick/storefront-catalog/internal/app/product/usecases/update_stock"
	"github.com/murkotick/storefront-catalog/internal/client"
)

func newRequest(name, brand, category string, stock int) create_product.Request {
	return create_product.Request{
		Name:             name,
		Description:      name + " description",
		ShortDescription: name,
		Brand:            brand,
		Category:         category,
		Price:            decimal.RequireFromString("19.99"),
		Currency:         "EUR",
		Stock:            stock,
		EAN:              "4006381333931",
		Color:            "black",
		Size:             "M",
		Image:            "https://cdn.example.com/" + name + ".png",
	}
}

func TestProductCreationFlow(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	id, err := createUC.Execute(ctx, newRequest("Trail Runner", "Acme", "shoes", 5))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	p, err := readModel.FindOne(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Trail Runner", p.Name)
	assert.Equal(t, id, p.InternalID)
	assert.Equal(t, domain.LowStock, p.Availability)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("19.99")))
	assert.Positive(t, p.Seq)

	byInternal, err := readModel.FindByInternalID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, byInternal.ID)
}

func TestUpdateFlows(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	id, err := createUC.Execute(ctx, newRequest("Rain Jacket", "Northwind", "outerwear", 50))
	require.NoError(t, err)

	name := "Storm Jacket"
	updated, err := updateUC.Execute(ctx, update_product.Request{
		ProductID: id,
		Patch:     domain.Patch{Name: &name},
	})
	require.NoError(t, err)
	assert.Equal(t, "Storm Jacket", updated.Name)
	assert.Equal(t, "Northwind", updated.Brand)

	_, err = stockUC.Execute(ctx, update_stock.Request{ProductID: id, Stock: 0})
	require.NoError(t, err)

	p, err := readModel.FindOne(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Storm Jacket", p.Name)
	assert.Equal(t, 0, p.Stock)
	assert.Equal(t, domain.OutOfStock, p.Availability)
}

func TestRemoveFlow(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	id, err := createUC.Execute(ctx, newRequest("Old Stock", "Acme", "clearance", 1))
	require.NoError(t, err)

	require.NoError(t, removeUC.Execute(ctx, id))

	_, err = readModel.FindOne(ctx, id)
	require.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestPagingAndFilters(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	reqs := make([]create_product.Request, 0, 7)
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		reqs = append(reqs, newRequest("paged-"+name, "Pager", "paging", 30))
	}
	ids, err := createUC.ExecuteMany(ctx, reqs)
	require.NoError(t, err)
	require.Len(t, ids, 7)

	category := "paging"
	filters := dto.Filters{Category: &category}

	seen := map[string]bool{}
	page := dto.PageRequest{PageSize: 3}
	for range 10 {
		res, err := readModel.FindAllPaginate(ctx, filters, page)
		require.NoError(t, err)
		for _, p := range res.Items {
			assert.Equal(t, "paging", p.Category)
			seen[p.ID] = true
		}
		if res.NextPageState == "" {
			break
		}
		page.PagingState = res.NextPageState
	}
	assert.Len(t, seen, 7)

	categories, err := readModel.Categories(ctx)
	require.NoError(t, err)
	assert.Contains(t, categories, "paging")
}

func TestHTTPClientFlow(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	id, err := api.Create(ctx, client.ProductInput{
		Name:             "Desk Lamp",
		Description:      "Warm light",
		ShortDescription: "Lamp",
		Brand:            "Lumen",
		Category:         "lighting",
		Price:            decimal.RequireFromString("39.50"),
		Currency:         "USD",
		Stock:            25,
		EAN:              "5901234123457",
		Color:            "white",
		Size:             "S",
		Image:            "https://cdn.example.com/lamp.png",
	})
	require.NoError(t, err)

	p, err := api.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Desk Lamp", p.Name)
	assert.Equal(t, "in_stock", p.Availability)

	p, err = api.UpdateStock(ctx, id, 3)
	require.NoError(t, err)
	assert.Equal(t, "low_stock", p.Availability)

	require.NoError(t, api.Remove(ctx, id))
	_, err = api.Get(ctx, id)
	assert.True(t, client.IsNotFound(err))
}
