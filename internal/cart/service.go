package cart

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

type CartService interface {
	Snapshot(ctx context.Context, userID uint) ([]Line, error)
	SelectedLines(ctx context.Context, userID uint, cartItemIDs []uint) ([]Line, error)
	Add(ctx context.Context, userID, productID uint, quantity int, voucherID *uint) (*Item, error)
	UpdateQuantity(ctx context.Context, userID, cartItemID uint, quantity int) error
	Remove(ctx context.Context, userID, cartItemID uint) error
}

type cartService struct {
	storage Storage
	logger  *logrus.Entry
	now     func() time.Time
}

func NewService(storage Storage, log *logrus.Entry) CartService {
	return &cartService{
		storage: storage,
		logger:  log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Snapshot prices every line of the user's cart. A user without a cart gets
// an empty list.
func (s *cartService) Snapshot(ctx context.Context, userID uint) ([]Line, error) {
	items, err := s.storage.ItemsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Lines(items, s.now()), nil
}

// SelectedLines fails with ErrItemsMismatch unless the matched lines of the
// user's cart are exactly as many as the ids asked for. A repeated id counts
// twice and so never matches.
func (s *cartService) SelectedLines(ctx context.Context, userID uint, cartItemIDs []uint) ([]Line, error) {
	items, err := s.storage.SelectedItems(ctx, userID, Unique(cartItemIDs))
	if err != nil {
		return nil, err
	}
	if len(items) != len(cartItemIDs) {
		return nil, ErrItemsMismatch
	}
	return Lines(items, s.now()), nil
}

func (s *cartService) Add(ctx context.Context, userID, productID uint, quantity int, voucherID *uint) (*Item, error) {
	if quantity <= 0 {
		return nil, errInvalidQuantity
	}

	item, err := s.storage.AddItem(ctx, userID, productID, quantity, voucherID)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"product_id": productID,
	}).Debugf("cart line %d now has quantity %d", item.ID, item.Quantity)
	return item, nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, userID, cartItemID uint, quantity int) error {
	if quantity < 0 {
		return errNegativeQuantity
	}
	return s.storage.UpdateQuantity(ctx, userID, cartItemID, quantity)
}

func (s *cartService) Remove(ctx context.Context, userID, cartItemID uint) error {
	return s.storage.RemoveItem(ctx, userID, cartItemID)
}

func Lines(items []Item, now time.Time) []Line {
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, toLine(item, now))
	}
	return lines
}

// Unique drops repeated ids and keeps the first occurrence order.
func Unique(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
