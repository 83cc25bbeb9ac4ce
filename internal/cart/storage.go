package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mserebryaakov/aggregator-storefront/internal/catalog"
	"github.com/mserebryaakov/aggregator-storefront/pkg/postgres"
	"gorm.io/gorm"
)

type Storage interface {
	ItemsByUser(ctx context.Context, userID uint) ([]Item, error)
	SelectedItems(ctx context.Context, userID uint, cartItemIDs []uint) ([]Item, error)
	AddItem(ctx context.Context, userID, productID uint, quantity int, voucherID *uint) (*Item, error)
	UpdateQuantity(ctx context.Context, userID, cartItemID uint, quantity int) error
	RemoveItem(ctx context.Context, userID, cartItemID uint) error
}

type CartStorage struct {
	pool postgres.Provider
}

func NewStorage(pool postgres.Provider) Storage {
	return &CartStorage{
		pool: pool,
	}
}

func ownedBy(userID uint) (string, uint) {
	return "cart_items.cart_id IN (SELECT id FROM carts WHERE user_id = ?)", userID
}

func (s *CartStorage) ItemsByUser(ctx context.Context, userID uint) ([]Item, error) {
	var items []Item
	query, arg := ownedBy(userID)
	err := s.pool.DB(ctx).
		Joins("JOIN products ON products.id = cart_items.product_id").
		Where(query, arg).
		Preload("Product.Discounts", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("cart_items.added_at DESC, cart_items.id DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load cart - %w", err)
	}
	return items, nil
}

func (s *CartStorage) SelectedItems(ctx context.Context, userID uint, cartItemIDs []uint) ([]Item, error) {
	return SelectedItemsTx(s.pool.DB(ctx), userID, cartItemIDs)
}

// SelectedItemsTx loads the requested lines that belong to the user and still
// point at an existing product.
func SelectedItemsTx(tx *gorm.DB, userID uint, cartItemIDs []uint) ([]Item, error) {
	var items []Item
	query, arg := ownedBy(userID)
	err := tx.
		Joins("JOIN products ON products.id = cart_items.product_id").
		Where(query, arg).
		Where("cart_items.id IN ?", cartItemIDs).
		Preload("Product.Discounts", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("cart_items.id").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load cart items - %w", err)
	}
	return items, nil
}

// AddItem puts the product into the user's cart, creating the cart on first
// use. Adding a product that is already there increases its quantity.
func (s *CartStorage) AddItem(ctx context.Context, userID, productID uint, quantity int, voucherID *uint) (*Item, error) {
	var item Item
	err := s.pool.DB(ctx).Transaction(func(tx *gorm.DB) error {
		var products int64
		if err := tx.Model(&catalog.Product{}).Where("id = ?", productID).Count(&products).Error; err != nil {
			return err
		}
		if products == 0 {
			return catalog.ErrProductNotFound
		}

		var cart Cart
		if err := tx.Where(Cart{UserID: userID}).FirstOrCreate(&cart).Error; err != nil {
			return fmt.Errorf("failed to resolve cart - %w", err)
		}

		err := tx.Where("cart_id = ? AND product_id = ?", cart.ID, productID).First(&item).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = Item{
				CartID:    cart.ID,
				ProductID: productID,
				Quantity:  quantity,
				VoucherID: voucherID,
				AddedAt:   time.Now().UTC(),
			}
			return tx.Omit("Cart", "Product").Create(&item).Error
		case err != nil:
			return err
		}

		updates := map[string]interface{}{
			"quantity": gorm.Expr("quantity + ?", quantity),
		}
		if voucherID != nil {
			updates["voucher_id"] = *voucherID
		}
		if err := tx.Model(&Item{}).Where("id = ?", item.ID).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&item, item.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateQuantity sets a line's quantity. Zero removes the line.
func (s *CartStorage) UpdateQuantity(ctx context.Context, userID, cartItemID uint, quantity int) error {
	if quantity == 0 {
		return s.RemoveItem(ctx, userID, cartItemID)
	}

	query, arg := ownedBy(userID)
	result := s.pool.DB(ctx).Model(&Item{}).
		Where("cart_items.id = ?", cartItemID).
		Where(query, arg).
		Update("quantity", quantity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errCartItemNotFound
	}
	return nil
}

func (s *CartStorage) RemoveItem(ctx context.Context, userID, cartItemID uint) error {
	query, arg := ownedBy(userID)
	result := s.pool.DB(ctx).
		Where("cart_items.id = ?", cartItemID).
		Where(query, arg).
		Delete(&Item{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errCartItemNotFound
	}
	return nil
}

// DeleteItemsTx drops checked out lines.
func DeleteItemsTx(tx *gorm.DB, cartItemIDs []uint) error {
	if len(cartItemIDs) == 0 {
		return nil
	}
	return tx.Where("id IN ?", cartItemIDs).Delete(&Item{}).Error
}
