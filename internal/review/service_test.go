package review_test

import (
	"context"
	"testing"

	"github.com/mserebryaakov/aggregator-storefront/internal/catalog"
	"github.com/mserebryaakov/aggregator-storefront/internal/review"
	"github.com/mserebryaakov/aggregator-storefront/internal/schema"
	"github.com/mserebryaakov/aggregator-storefront/internal/storetest"
	"github.com/mserebryaakov/aggregator-storefront/internal/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) (review.ReviewService, *gorm.DB, uint) {
	db := storetest.NewDB(t, schema.Models()...)
	p := catalog.Product{Name: "Headphones", Price: decimal.NewFromInt(90), StockQuantity: 3, Link: "/p/headphones"}
	require.NoError(t, db.Create(&p).Error)
	return review.NewService(review.NewStorage(storetest.Provider{Conn: db}), storetest.Log()), db, p.ID
}

func rating(t *testing.T, db *gorm.DB, productID uint) float64 {
	var stats catalog.Stats
	require.NoError(t, db.Where("product_id = ?", productID).First(&stats).Error)
	return stats.Rating
}

func TestRatingFollowsReviews(t *testing.T) {
	svc, db, productID := setup(t)
	ctx := context.Background()

	var ids []uint
	for userID, stars := range []int{5, 3, 4} {
		r, _, err := svc.Submit(ctx, uint(userID+1), productID, stars, "ok")
		require.NoError(t, err)
		ids = append(ids, r.ID)
	}
	require.InDelta(t, 4.0, rating(t, db, productID), 1e-9)

	summary, err := svc.Delete(ctx, ids[1], 2, false)
	require.NoError(t, err)
	require.InDelta(t, 4.5, summary.Rating, 1e-9)
	require.InDelta(t, 4.5, rating(t, db, productID), 1e-9)

	_, err = svc.Delete(ctx, ids[0], 1, false)
	require.NoError(t, err)
	_, err = svc.Delete(ctx, ids[2], 99, true)
	require.NoError(t, err)
	require.Zero(t, rating(t, db, productID))
}

func TestSubmitTwiceUpdates(t *testing.T) {
	svc, db, productID := setup(t)
	ctx := context.Background()

	first, _, err := svc.Submit(ctx, 1, productID, 2, "meh")
	require.NoError(t, err)
	second, summary, err := svc.Submit(ctx, 1, productID, 5, "grew on me")
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
	require.Equal(t, int64(1), summary.Reviews)
	require.InDelta(t, 5.0, rating(t, db, productID), 1e-9)

	var count int64
	require.NoError(t, db.Model(&review.Review{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestSubmitValidation(t *testing.T) {
	svc, _, productID := setup(t)
	ctx := context.Background()

	_, _, err := svc.Submit(ctx, 1, productID, 0, "")
	require.Error(t, err)
	_, _, err = svc.Submit(ctx, 1, productID, 6, "")
	require.Error(t, err)
	_, _, err = svc.Submit(ctx, 1, 404, 3, "")
	require.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestOnlyAuthorOrAdminDeletes(t *testing.T) {
	svc, _, productID := setup(t)
	ctx := context.Background()

	r, _, err := svc.Submit(ctx, 1, productID, 4, "")
	require.NoError(t, err)

	_, err = svc.Delete(ctx, r.ID, 2, false)
	require.Error(t, err)
	_, err = svc.Delete(ctx, r.ID, 2, true)
	require.NoError(t, err)
	_, err = svc.Delete(ctx, r.ID, 1, false)
	require.Error(t, err)
}

func TestListingsCarryNames(t *testing.T) {
	svc, db, productID := setup(t)
	ctx := context.Background()

	u := user.User{Name: "Sara", Email: "sara@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&u).Error)

	_, _, err := svc.Submit(ctx, u.ID, productID, 5, "great")
	require.NoError(t, err)

	byProduct, err := svc.ForProduct(ctx, productID)
	require.NoError(t, err)
	require.Len(t, byProduct, 1)
	require.Equal(t, "Sara", byProduct[0].UserName)
	require.Equal(t, "great", byProduct[0].Text)

	byUser, err := svc.ForUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	require.Equal(t, "Headphones", byUser[0].ProductName)
	require.Equal(t, "/p/headphones", byUser[0].ProductLink)

	all, err := svc.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}
