package cart_test

import (
	"context"
	"testing"
	"time"

	"github.com/mserebryaakov/aggregator-storefront/internal/cart"
	"github.com/mserebryaakov/aggregator-storefront/internal/catalog"
	"github.com/mserebryaakov/aggregator-storefront/internal/schema"
	"github.com/mserebryaakov/aggregator-storefront/internal/storetest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCart(t *testing.T) (cart.CartService, *gorm.DB) {
	db := storetest.NewDB(t, schema.Models()...)
	return cart.NewService(cart.NewStorage(storetest.Provider{Conn: db}), storetest.Log()), db
}

func createProduct(t *testing.T, db *gorm.DB, price int64, discounts ...catalog.Discount) uint {
	p := catalog.Product{Name: "Notebook", Price: decimal.NewFromInt(price), StockQuantity: 10, Discounts: discounts}
	require.NoError(t, db.Create(&p).Error)
	return p.ID
}

func TestAddMergesQuantities(t *testing.T) {
	svc, db := newCart(t)
	ctx := context.Background()
	productID := createProduct(t, db, 30)

	first, err := svc.Add(ctx, 1, productID, 2, nil)
	require.NoError(t, err)
	second, err := svc.Add(ctx, 1, productID, 3, nil)
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 5, second.Quantity)

	lines, err := svc.Snapshot(ctx, 1)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.True(t, lines[0].Total().Equal(decimal.NewFromInt(150)))
}

func TestAddRejectsBadInput(t *testing.T) {
	svc, db := newCart(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, 1, createProduct(t, db, 10), 0, nil)
	require.Error(t, err)

	_, err = svc.Add(ctx, 1, 404, 1, nil)
	require.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	svc, db := newCart(t)
	ctx := context.Background()

	item, err := svc.Add(ctx, 1, createProduct(t, db, 10), 1, nil)
	require.NoError(t, err)

	require.NoError(t, svc.UpdateQuantity(ctx, 1, item.ID, 4))
	lines, err := svc.Snapshot(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 4, lines[0].Quantity)

	require.NoError(t, svc.UpdateQuantity(ctx, 1, item.ID, 0))
	lines, err = svc.Snapshot(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, lines)

	require.Error(t, svc.UpdateQuantity(ctx, 1, item.ID, -1))
}

func TestOtherUsersCannotTouchLine(t *testing.T) {
	svc, db := newCart(t)
	ctx := context.Background()

	item, err := svc.Add(ctx, 1, createProduct(t, db, 10), 1, nil)
	require.NoError(t, err)

	require.Error(t, svc.UpdateQuantity(ctx, 2, item.ID, 3))
	require.Error(t, svc.Remove(ctx, 2, item.ID))

	_, err = svc.SelectedLines(ctx, 2, []uint{item.ID})
	require.ErrorIs(t, err, cart.ErrItemsMismatch)

	require.NoError(t, svc.Remove(ctx, 1, item.ID))
}

func TestSelectedLinesUseDiscountPrice(t *testing.T) {
	svc, db := newCart(t)
	ctx := context.Background()
	now := time.Now().UTC()

	productID := createProduct(t, db, 500, catalog.Discount{
		Price:    decimal.NewFromInt(400),
		StartsAt: now.Add(-time.Hour),
		EndsAt:   now.Add(time.Hour),
	})
	item, err := svc.Add(ctx, 1, productID, 2, nil)
	require.NoError(t, err)

	lines, err := svc.SelectedLines(ctx, 1, []uint{item.ID})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.True(t, lines[0].UnitPrice.Equal(decimal.NewFromInt(400)))
	require.True(t, lines[0].DiscountPrice.Valid)
	require.True(t, cart.Subtotal(lines).Equal(decimal.NewFromInt(800)))
}

func TestSelectedLinesRejectsRepeatedIDs(t *testing.T) {
	svc, db := newCart(t)
	ctx := context.Background()

	item, err := svc.Add(ctx, 1, createProduct(t, db, 10), 1, nil)
	require.NoError(t, err)

	_, err = svc.SelectedLines(ctx, 1, []uint{item.ID, item.ID})
	require.ErrorIs(t, err, cart.ErrItemsMismatch)
}

func TestUnique(t *testing.T) {
	require.Equal(t, []uint{3, 1, 2}, cart.Unique([]uint{3, 1, 3, 2, 1}))
	require.Empty(t, cart.Unique(nil))
}
