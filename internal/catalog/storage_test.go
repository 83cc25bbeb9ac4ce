package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/mserebryaakov/aggregator-storefront/internal/catalog"
	"github.com/mserebryaakov/aggregator-storefront/internal/order"
	"github.com/mserebryaakov/aggregator-storefront/internal/schema"
	"github.com/mserebryaakov/aggregator-storefront/internal/storetest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newCatalog(t *testing.T) (catalog.CatalogService, *storetest.Provider) {
	db := storetest.NewDB(t, schema.Models()...)
	pool := &storetest.Provider{Conn: db}
	return catalog.NewService(catalog.NewStorage(pool), storetest.Log()), pool
}

func TestCreateProductWithDiscount(t *testing.T) {
	svc, _ := newCatalog(t)
	ctx := context.Background()
	now := time.Now().UTC()

	created, err := svc.CreateProduct(ctx, catalog.NewProduct{
		Name:          "  Kettle ",
		Price:         decimal.NewFromInt(500),
		StockQuantity: 7,
		Category:      "Kitchen",
		Discount: &catalog.NewDiscount{
			Price:    decimal.NewFromInt(400),
			StartsAt: now.Add(-time.Hour),
			EndsAt:   now.Add(time.Hour),
		},
	})
	require.NoError(t, err)
	require.Equal(t, "Kettle", created.Name)

	view, err := svc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Kitchen", view.Category)
	require.True(t, view.DiscountPrice.Equal(decimal.NewFromInt(400)))
	require.NotNil(t, view.DiscountStart)
	require.Equal(t, 0, view.PiecesSold)

	products, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
}

func TestCreateProductValidation(t *testing.T) {
	svc, _ := newCatalog(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, catalog.NewProduct{Name: "", Price: decimal.NewFromInt(1)})
	require.Error(t, err)

	_, err = svc.CreateProduct(ctx, catalog.NewProduct{Name: "Cup", Price: decimal.Zero})
	require.Error(t, err)

	_, err = svc.CreateProduct(ctx, catalog.NewProduct{Name: "Cup", Price: decimal.NewFromInt(5), StockQuantity: -1})
	require.Error(t, err)
}

func TestGetMissingProduct(t *testing.T) {
	svc, _ := newCatalog(t)

	_, err := svc.GetProduct(context.Background(), 99)
	require.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestDeleteProductKeepsOrderSnapshot(t *testing.T) {
	svc, pool := newCatalog(t)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, catalog.NewProduct{Name: "Mug", Price: decimal.NewFromInt(20), StockQuantity: 3})
	require.NoError(t, err)

	productID := p.ID
	require.NoError(t, pool.Conn.Create(&order.Item{
		OrderID:     1,
		ProductID:   &productID,
		ProductName: "Mug",
		Quantity:    1,
		Subtotal:    decimal.NewFromInt(20),
	}).Error)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	require.ErrorIs(t, svc.DeleteProduct(ctx, p.ID), catalog.ErrProductNotFound)

	var item order.Item
	require.NoError(t, pool.Conn.First(&item).Error)
	require.Nil(t, item.ProductID)
	require.Equal(t, "Mug", item.ProductName)
}

func TestProductsWorkbook(t *testing.T) {
	file, err := catalog.ProductsWorkbook([]catalog.Product{
		{ID: 1, Name: "Lamp", Price: decimal.RequireFromString("12.5"), Category: &catalog.Category{Name: "Home"}},
	})
	require.NoError(t, err)

	sheet := file.Sheets[0]
	require.Len(t, sheet.Rows, 2)
	require.Equal(t, "Name", sheet.Rows[0].Cells[1].String())
	require.Equal(t, "Lamp", sheet.Rows[1].Cells[1].String())
	require.Equal(t, "Home", sheet.Rows[1].Cells[2].String())
	require.Equal(t, "12.50", sheet.Rows[1].Cells[3].String())
}
