package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/mserebryaakov/aggregator-storefront/internal/catalog"
	"github.com/mserebryaakov/aggregator-storefront/pkg/postgres"
	"gorm.io/gorm"
)

type Storage interface {
	Upsert(ctx context.Context, r *Review) (*Summary, error)
	GetReview(ctx context.Context, reviewID uint) (*Review, error)
	DeleteReview(ctx context.Context, reviewID uint) (*Summary, error)
	ByProduct(ctx context.Context, productID uint) ([]Entry, error)
	ByUser(ctx context.Context, userID uint) ([]Entry, error)
	All(ctx context.Context) ([]Entry, error)
}

type ReviewStorage struct {
	pool postgres.Provider
}

func NewStorage(pool postgres.Provider) Storage {
	return &ReviewStorage{
		pool: pool,
	}
}

// Upsert writes the review and refreshes the product rating in the same
// transaction.
func (s *ReviewStorage) Upsert(ctx context.Context, r *Review) (*Summary, error) {
	var summary *Summary
	err := s.pool.DB(ctx).Transaction(func(tx *gorm.DB) error {
		var products int64
		if err := tx.Model(&catalog.Product{}).Where("id = ?", r.ProductID).Count(&products).Error; err != nil {
			return err
		}
		if products == 0 {
			return catalog.ErrProductNotFound
		}

		var existing Review
		err := tx.Where("user_id = ? AND product_id = ?", r.UserID, r.ProductID).First(&existing).Error
		switch {
		case err == nil:
			existing.Rating = r.Rating
			existing.Text = r.Text
			existing.UpdatedAt = r.UpdatedAt
			if err := tx.Save(&existing).Error; err != nil {
				return fmt.Errorf("failed to update review - %w", err)
			}
			*r = existing
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(r).Error; err != nil {
				return fmt.Errorf("failed to create review - %w", err)
			}
		default:
			return err
		}

		summary, err = RecomputeTx(tx, r.ProductID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *ReviewStorage) GetReview(ctx context.Context, reviewID uint) (*Review, error) {
	var r Review
	if err := s.pool.DB(ctx).First(&r, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errReviewNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (s *ReviewStorage) DeleteReview(ctx context.Context, reviewID uint) (*Summary, error) {
	var summary *Summary
	err := s.pool.DB(ctx).Transaction(func(tx *gorm.DB) error {
		var r Review
		if err := tx.First(&r, reviewID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errReviewNotFound
			}
			return err
		}
		if err := tx.Delete(&r).Error; err != nil {
			return err
		}

		var err error
		summary, err = RecomputeTx(tx, r.ProductID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// RecomputeTx stores the mean of the product's current ratings, 0 when it
// has none.
func RecomputeTx(tx *gorm.DB, productID uint) (*Summary, error) {
	var agg struct {
		Average float64
		Total   int64
	}
	err := tx.Model(&Review{}).
		Select("COALESCE(AVG(rating * 1.0), 0) AS average, COUNT(*) AS total").
		Where("product_id = ?", productID).
		Scan(&agg).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ratings - %w", err)
	}

	result := tx.Model(&catalog.Stats{}).
		Where("product_id = ?", productID).
		UpdateColumn("rating", agg.Average)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if err := tx.Create(&catalog.Stats{ProductID: productID, Rating: agg.Average}).Error; err != nil {
			return nil, err
		}
	}

	return &Summary{ProductID: productID, Rating: agg.Average, Reviews: agg.Total}, nil
}

func (s *ReviewStorage) ByProduct(ctx context.Context, productID uint) ([]Entry, error) {
	var entries []Entry
	err := s.entries(ctx).
		Where("reviews.product_id = ?", productID).
		Scan(&entries).Error
	return entries, err
}

func (s *ReviewStorage) ByUser(ctx context.Context, userID uint) ([]Entry, error) {
	var entries []Entry
	err := s.entries(ctx).
		Where("reviews.user_id = ?", userID).
		Scan(&entries).Error
	return entries, err
}

func (s *ReviewStorage) All(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	err := s.entries(ctx).Scan(&entries).Error
	return entries, err
}

func (s *ReviewStorage) entries(ctx context.Context) *gorm.DB {
	return s.pool.DB(ctx).
		Model(&Review{}).
		Select(`reviews.*, COALESCE(users.name, '') AS user_name,
			COALESCE(products.name, '') AS product_name, COALESCE(products.product_link, '') AS product_link`).
		Joins("LEFT JOIN users ON users.id = reviews.user_id").
		Joins("LEFT JOIN products ON products.id = reviews.product_id").
		Order("reviews.updated_at DESC, reviews.id DESC")
}
