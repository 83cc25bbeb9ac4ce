package cart

import "errors"

var (
	ErrItemsMismatch = errors.New("some items don't exist or don't belong to your cart")

	errCartItemNotFound = errors.New("cart item not found")
	errInvalidQuantity  = errors.New("quantity must be greater than zero")
	errNegativeQuantity = errors.New("quantity must not be negative")
)
