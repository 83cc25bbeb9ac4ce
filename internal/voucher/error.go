package voucher

import "errors"

var (
	ErrVoucherNotFound = errors.New("voucher not found or expired")
	ErrClaimNotFound   = errors.New("user voucher not found")
	ErrClaimUsed       = errors.New("voucher has already been used")
	ErrMinimumNotMet   = errors.New("order total does not meet the voucher minimum")

	errDuplicateCode = errors.New("voucher code already exists")
	errInvalidValue  = errors.New("discount amount must be greater than zero")
	errInvalidKind   = errors.New("discount type must be percentage or fixed")
	errPercentRange  = errors.New("percentage discount must not exceed 100")
	errEmptyCode     = errors.New("voucher code is required")
	errNoCartItems   = errors.New("no cart items selected")
)
