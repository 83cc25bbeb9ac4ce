package inventory

import (
	"context"
	"fmt"

	"github.com/mserebryaakov/aggregator-storefront/internal/catalog"
	"github.com/mserebryaakov/aggregator-storefront/pkg/postgres"
	"gorm.io/gorm"
)

type Storage interface {
	AddStock(ctx context.Context, productID uint, quantity int, adminID *uint) (int, error)
	ListEntries(ctx context.Context) ([]Entry, error)
}

type InventoryStorage struct {
	pool postgres.Provider
}

func NewStorage(pool postgres.Provider) Storage {
	return &InventoryStorage{
		pool: pool,
	}
}

// AddStock raises the product's stock and records the movement in the same
// transaction. It returns the new stock level.
func (s *InventoryStorage) AddStock(ctx context.Context, productID uint, quantity int, adminID *uint) (int, error) {
	var stock int
	err := s.pool.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := RestockTx(tx, productID, quantity); err != nil {
			return err
		}

		if err := AppendTx(tx, []Log{{
			ProductID:  &productID,
			StockAdded: quantity,
			AdminID:    adminID,
			Note:       "restock",
		}}); err != nil {
			return err
		}

		return tx.Model(&catalog.Product{}).Where("id = ?", productID).Select("stock_quantity").Scan(&stock).Error
	})
	return stock, err
}

func (s *InventoryStorage) ListEntries(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	err := s.pool.DB(ctx).
		Table("inventory_logs").
		Select("inventory_logs.*, COALESCE(products.name, '') AS product_name").
		Joins("LEFT JOIN products ON products.id = inventory_logs.product_id").
		Order("inventory_logs.created_at DESC, inventory_logs.id DESC").
		Scan(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory - %w", err)
	}
	return entries, nil
}

// RestockTx adds quantity to the product's stock.
func RestockTx(tx *gorm.DB, productID uint, quantity int) error {
	result := tx.Model(&catalog.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}

// ReserveTx takes quantity out of stock only if that much is there. It
// reports false when the stock was short.
func ReserveTx(tx *gorm.DB, productID uint, quantity int) (bool, error) {
	result := tx.Model(&catalog.Product{}).
		Where("id = ? AND stock_quantity >= ?", productID, quantity).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func AppendTx(tx *gorm.DB, logs []Log) error {
	if len(logs) == 0 {
		return nil
	}
	return tx.Create(&logs).Error
}
