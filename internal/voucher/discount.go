package voucher

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Discount is the pricing rule a voucher carries.
type Discount struct {
	Kind  Kind
	Value decimal.Decimal
	// Cap bounds percentage discounts. Zero means no cap.
	Cap decimal.Decimal
}

// Amount is what the rule takes off subtotal. It never exceeds subtotal and
// is never negative.
func (d Discount) Amount(subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() || !d.Value.IsPositive() {
		return decimal.Zero
	}

	var amount decimal.Decimal
	switch d.Kind {
	case KindPercentage:
		amount = subtotal.Mul(d.Value).Div(hundred)
		if d.Cap.IsPositive() && amount.GreaterThan(d.Cap) {
			amount = d.Cap
		}
	case KindFixed:
		amount = d.Value
	default:
		return decimal.Zero
	}

	if amount.GreaterThan(subtotal) {
		amount = subtotal
	}
	return amount.Round(2)
}

// InferKind reads the legacy single-number encoding where values up to 100
// are percentages. Only used when a voucher is created without a kind.
func InferKind(value decimal.Decimal) Kind {
	if value.LessThanOrEqual(hundred) {
		return KindPercentage
	}
	return KindFixed
}

// Discount builds the rule for v. defaultCap applies to percentage vouchers
// that have no cap of their own.
func (v Voucher) Discount(defaultCap decimal.Decimal) Discount {
	d := Discount{Kind: v.Kind, Value: v.Value}
	if v.Kind == KindPercentage {
		d.Cap = defaultCap
		if v.MaxDiscount.Valid {
			d.Cap = v.MaxDiscount.Decimal
		}
	}
	return d
}

// Usable reports whether v can be redeemed at now: status active and not
// past its expiry.
func (v Voucher) Usable(now time.Time) bool {
	return v.Status == StatusActive && v.unexpired(now)
}

// Listed is the looser rule of the eligibility list, where a voucher with
// no status at all still shows up.
func (v Voucher) Listed(now time.Time) bool {
	return (v.Status == "" || v.Status == StatusActive) && v.unexpired(now)
}

func (v Voucher) unexpired(now time.Time) bool {
	return v.ExpiresAt == nil || now.Before(*v.ExpiresAt)
}

func (v Voucher) Qualifies(subtotal decimal.Decimal, now time.Time) bool {
	return v.Usable(now) && subtotal.GreaterThanOrEqual(v.MinOrderValue)
}
