package wishlist

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

type WishlistService interface {
	List(ctx context.Context, userID uint) ([]Entry, error)
	Add(ctx context.Context, userID, productID uint) error
	Contains(ctx context.Context, userID, productID uint) (bool, error)
	Remove(ctx context.Context, userID, productID uint) error
}

type wishlistService struct {
	storage Storage
	logger  *logrus.Entry
	now     func() time.Time
}

func NewService(storage Storage, log *logrus.Entry) WishlistService {
	return &wishlistService{
		storage: storage,
		logger:  log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *wishlistService) List(ctx context.Context, userID uint) ([]Entry, error) {
	items, err := s.storage.Items(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		price, _ := item.Product.EffectivePrice(now)
		entries = append(entries, Entry{
			WishlistItemID: item.ID,
			ProductID:      item.ProductID,
			ProductName:    item.Product.Name,
			ProductLink:    item.Product.Link,
			Price:          item.Product.Price,
			DiscountPrice:  price,
			StockQuantity:  item.Product.StockQuantity,
			AddedAt:        item.AddedAt,
		})
	}
	return entries, nil
}

func (s *wishlistService) Add(ctx context.Context, userID, productID uint) error {
	return s.storage.Add(ctx, userID, productID, s.now())
}

func (s *wishlistService) Contains(ctx context.Context, userID, productID uint) (bool, error) {
	return s.storage.Contains(ctx, userID, productID)
}

func (s *wishlistService) Remove(ctx context.Context, userID, productID uint) error {
	return s.storage.Remove(ctx, userID, productID)
}
