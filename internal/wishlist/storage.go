package wishlist

import (
	"context"
	"time"

	"github.com/mserebryaakov/aggregator-storefront/internal/catalog"
	"github.com/mserebryaakov/aggregator-storefront/pkg/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Storage interface {
	Items(ctx context.Context, userID uint) ([]Item, error)
	Add(ctx context.Context, userID, productID uint, at time.Time) error
	Contains(ctx context.Context, userID, productID uint) (bool, error)
	Remove(ctx context.Context, userID, productID uint) error
}

type WishlistStorage struct {
	pool postgres.Provider
}

func NewStorage(pool postgres.Provider) Storage {
	return &WishlistStorage{
		pool: pool,
	}
}

const ownedWishlist = "wishlist_id IN (SELECT id FROM wishlists WHERE user_id = ?)"

func (s *WishlistStorage) Items(ctx context.Context, userID uint) ([]Item, error) {
	var items []Item
	err := s.pool.DB(ctx).
		Joins("JOIN products ON products.id = wishlist_items.product_id").
		Where("wishlist_items."+ownedWishlist, userID).
		Preload("Product.Discounts", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("wishlist_items.added_at DESC, wishlist_items.id DESC").
		Find(&items).Error
	return items, err
}

// Add is idempotent: a product already on the list is left as it is.
func (s *WishlistStorage) Add(ctx context.Context, userID, productID uint, at time.Time) error {
	return s.pool.DB(ctx).Transaction(func(tx *gorm.DB) error {
		var products int64
		if err := tx.Model(&catalog.Product{}).Where("id = ?", productID).Count(&products).Error; err != nil {
			return err
		}
		if products == 0 {
			return catalog.ErrProductNotFound
		}

		list := Wishlist{UserID: userID, CreatedAt: at}
		if err := tx.Where(Wishlist{UserID: userID}).FirstOrCreate(&list).Error; err != nil {
			return err
		}

		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&Item{
			WishlistID: list.ID,
			ProductID:  productID,
			AddedAt:    at,
		}).Error
	})
}

func (s *WishlistStorage) Contains(ctx context.Context, userID, productID uint) (bool, error) {
	var count int64
	err := s.pool.DB(ctx).
		Model(&Item{}).
		Where(ownedWishlist+" AND product_id = ?", userID, productID).
		Count(&count).Error
	return count > 0, err
}

func (s *WishlistStorage) Remove(ctx context.Context, userID, productID uint) error {
	result := s.pool.DB(ctx).
		Where(ownedWishlist+" AND product_id = ?", userID, productID).
		Delete(&Item{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errItemNotFound
	}
	return nil
}
