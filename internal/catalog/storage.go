package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/mserebryaakov/aggregator-storefront/pkg/postgres"
	"gorm.io/gorm"
)

type Storage interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, productID uint) (*Product, error)
	ReviewCounts(ctx context.Context) (map[uint]int64, error)
	CreateProduct(ctx context.Context, np NewProduct) (*Product, error)
	AddDiscount(ctx context.Context, discount *Discount) error
	DeleteProduct(ctx context.Context, productID uint) error
}

type CatalogStorage struct {
	pool postgres.Provider
}

func NewStorage(pool postgres.Provider) Storage {
	return &CatalogStorage{
		pool: pool,
	}
}

func (s *CatalogStorage) ListProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	err := s.pool.DB(ctx).
		Preload("Category").
		Preload("Stats").
		Preload("Discounts", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("created_at DESC, id DESC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products - %w", err)
	}
	return products, nil
}

func (s *CatalogStorage) GetProduct(ctx context.Context, productID uint) (*Product, error) {
	var product Product
	err := s.pool.DB(ctx).
		Preload("Category").
		Preload("Stats").
		Preload("Discounts", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&product, productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (s *CatalogStorage) ReviewCounts(ctx context.Context) (map[uint]int64, error) {
	var rows []struct {
		ProductID uint
		Total     int64
	}
	err := s.pool.DB(ctx).
		Table("reviews").
		Select("product_id, COUNT(*) AS total").
		Group("product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.ProductID] = r.Total
	}
	return counts, nil
}

// CreateProduct stores the product with its stats row, its category (found
// or created by name) and an optional discount window in one transaction.
func (s *CatalogStorage) CreateProduct(ctx context.Context, np NewProduct) (*Product, error) {
	product := Product{
		Name:          np.Name,
		Description:   np.Description,
		Price:         np.Price,
		StockQuantity: np.StockQuantity,
		Link:          np.Link,
		AdminID:       np.AdminID,
	}

	err := s.pool.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if np.Category != "" {
			var category Category
			if err := tx.Where(Category{Name: np.Category}).FirstOrCreate(&category).Error; err != nil {
				return fmt.Errorf("failed to resolve category - %w", err)
			}
			product.CategoryID = &category.ID
		}

		if err := tx.Omit("Category", "Stats", "Discounts").Create(&product).Error; err != nil {
			return fmt.Errorf("failed to create product - %w", err)
		}

		if err := tx.Create(&Stats{ProductID: product.ID}).Error; err != nil {
			return fmt.Errorf("failed to create product stats - %w", err)
		}

		if np.Discount != nil {
			discount := Discount{
				ProductID: product.ID,
				Price:     np.Discount.Price,
				StartsAt:  np.Discount.StartsAt,
				EndsAt:    np.Discount.EndsAt,
			}
			if err := tx.Create(&discount).Error; err != nil {
				return fmt.Errorf("failed to create product discount - %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (s *CatalogStorage) AddDiscount(ctx context.Context, discount *Discount) error {
	db := s.pool.DB(ctx)

	var count int64
	if err := db.Model(&Product{}).Where("id = ?", discount.ProductID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrProductNotFound
	}

	return db.Create(discount).Error
}

// DeleteProduct removes the product and the rows that only make sense with
// it. Order lines and ledger rows keep their snapshot and lose the link.
func (s *CatalogStorage) DeleteProduct(ctx context.Context, productID uint) error {
	return s.pool.DB(ctx).Transaction(func(tx *gorm.DB) error {
		cleanup := []string{
			"DELETE FROM cart_items WHERE product_id = ?",
			"DELETE FROM wishlist_items WHERE product_id = ?",
			"DELETE FROM reviews WHERE product_id = ?",
			"UPDATE order_items SET product_id = NULL WHERE product_id = ?",
			"UPDATE inventory_logs SET product_id = NULL WHERE product_id = ?",
			"DELETE FROM product_discounts WHERE product_id = ?",
			"DELETE FROM product_stats WHERE product_id = ?",
		}
		for _, stmt := range cleanup {
			if err := tx.Exec(stmt, productID).Error; err != nil {
				return err
			}
		}

		result := tx.Delete(&Product{}, productID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrProductNotFound
		}
		return nil
	})
}
