package inventory

import (
	"context"

	"github.com/sirupsen/logrus"
)

type InventoryService interface {
	AddStock(ctx context.Context, productID uint, quantity int, adminID *uint) (int, error)
	List(ctx context.Context) ([]Entry, error)
}

type inventoryService struct {
	storage Storage
	logger  *logrus.Entry
}

func NewService(storage Storage, log *logrus.Entry) InventoryService {
	return &inventoryService{
		storage: storage,
		logger:  log,
	}
}

func (s *inventoryService) AddStock(ctx context.Context, productID uint, quantity int, adminID *uint) (int, error) {
	if quantity <= 0 {
		return 0, errInvalidQuantity
	}

	stock, err := s.storage.AddStock(ctx, productID, quantity, adminID)
	if err != nil {
		return 0, err
	}

	s.logger.WithField("product_id", productID).Infof("stock +%d, now %d", quantity, stock)
	return stock, nil
}

func (s *inventoryService) List(ctx context.Context) ([]Entry, error) {
	return s.storage.ListEntries(ctx)
}
