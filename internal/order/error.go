package order

import (
	"errors"
	"fmt"
)

var (
	errMissingUser          = errors.New("user ID is required")
	errNoItemsSelected      = errors.New("no items selected for checkout")
	errInvalidPaymentMethod = errors.New("payment method must be cod or card")
	errVoucherConflict      = errors.New("voucher was consumed by another checkout, retry without it")
	errOrderNotFound        = errors.New("order not found")
	errInvalidStatus        = errors.New("unknown order status")
	errOrderCancelled       = errors.New("order is already cancelled")
)

type Shortage struct {
	CartItemID  uint   `json:"cart_item_id"`
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
}

// StockShortageError lists the lines that cannot be filled. The caller can
// fix its cart and retry.
type StockShortageError struct {
	Items []Shortage
}

func (e *StockShortageError) Error() string {
	if len(e.Items) == 1 {
		s := e.Items[0]
		return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", s.ProductName, s.Requested, s.Available)
	}
	return fmt.Sprintf("insufficient stock for %d items", len(e.Items))
}
