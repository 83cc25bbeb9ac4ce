package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/mserebryaakov/aggregator-storefront/internal/catalog"
	"github.com/mserebryaakov/aggregator-storefront/internal/inventory"
	"github.com/mserebryaakov/aggregator-storefront/internal/schema"
	"github.com/mserebryaakov/aggregator-storefront/internal/storetest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestAddStockWritesLedger(t *testing.T) {
	db := storetest.NewDB(t, schema.Models()...)
	svc := inventory.NewService(inventory.NewStorage(storetest.Provider{Conn: db}), storetest.Log())
	ctx := context.Background()

	p := catalog.Product{Name: "Tripod", Price: decimal.NewFromInt(45), StockQuantity: 2}
	require.NoError(t, db.Create(&p).Error)

	adminID := uint(1)
	stock, err := svc.AddStock(ctx, p.ID, 5, &adminID)
	require.NoError(t, err)
	require.Equal(t, 7, stock)

	_, err = svc.AddStock(ctx, p.ID, 0, nil)
	require.Error(t, err)
	_, err = svc.AddStock(ctx, 404, 1, nil)
	require.ErrorIs(t, err, catalog.ErrProductNotFound)

	entries, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "Tripod", entries[0].ProductName)
	require.Equal(t, 5, entries[0].StockAdded)
	require.Equal(t, &adminID, entries[0].AdminID)
}

func TestReserveIsConditional(t *testing.T) {
	db := storetest.NewDB(t, schema.Models()...)
	p := catalog.Product{Name: "Lens", Price: decimal.NewFromInt(300), StockQuantity: 2}
	require.NoError(t, db.Create(&p).Error)

	ok, err := inventory.ReserveTx(db, p.ID, 3)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = inventory.ReserveTx(db, p.ID, 2)
	require.NoError(t, err)
	require.True(t, ok)

	var stored catalog.Product
	require.NoError(t, db.First(&stored, p.ID).Error)
	require.Zero(t, stored.StockQuantity)
}

func TestWorkbook(t *testing.T) {
	orderID := uint(12)
	file, err := inventory.Workbook([]inventory.Entry{
		{Log: inventory.Log{ID: 1, StockRemoved: 2, OrderID: &orderID, Note: "order", CreatedAt: time.Date(2024, 2, 1, 8, 30, 0, 0, time.UTC)}, ProductName: "Lens"},
	})
	require.NoError(t, err)

	rows := file.Sheets[0].Rows
	require.Len(t, rows, 2)
	require.Equal(t, "Product", rows[0].Cells[1].String())
	require.Equal(t, "Lens", rows[1].Cells[1].String())
	require.Equal(t, "order", rows[1].Cells[5].String())
	require.Equal(t, "2024-02-01 08:30:00", rows[1].Cells[6].String())
}
