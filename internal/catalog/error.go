package catalog

import "errors"

var (
	errInvalidDiscount  = errors.New("discount window must end after it starts and cost less than the list price")
	errInvalidStock     = errors.New("stock quantity must not be negative")
	errInvalidPrice     = errors.New("price must be greater than zero")
	errEmptyProductName = errors.New("product name is required")
)

// ErrProductNotFound is shared with the domains that look products up.
var ErrProductNotFound = errors.New("product not found")
