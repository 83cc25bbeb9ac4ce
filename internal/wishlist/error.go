package wishlist

import "errors"

var errItemNotFound = errors.New("product is not in the wishlist")
