package inventory

import "errors"

var errInvalidQuantity = errors.New("quantity must be greater than zero")
