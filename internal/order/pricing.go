package order

import (
	"time"

	"github.com/mserebryaakov/aggregator-storefront/internal/cart"
	"github.com/mserebryaakov/aggregator-storefront/internal/voucher"
	"github.com/shopspring/decimal"
)

type Quote struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
	// Voucher is set only when it qualified and took something off.
	Voucher *voucher.Voucher
}

// PriceLines computes the order amounts. v may be nil. A voucher that does
// not qualify simply gives no discount.
func PriceLines(lines []cart.Line, v *voucher.Voucher, percentageCap decimal.Decimal, now time.Time) Quote {
	q := Quote{
		Subtotal: cart.Subtotal(lines),
		Discount: decimal.Zero,
	}

	if v != nil && v.Qualifies(q.Subtotal, now) {
		q.Discount = v.Discount(percentageCap).Amount(q.Subtotal)
		if q.Discount.IsPositive() {
			q.Voucher = v
		}
	}

	q.Total = q.Subtotal.Sub(q.Discount)
	if q.Total.IsNegative() {
		q.Total = decimal.Zero
	}
	return q
}

// Shortages compares each line with the stock recorded when it was read.
func Shortages(lines []cart.Line) []Shortage {
	var short []Shortage
	for _, l := range lines {
		if l.Quantity > l.StockQuantity {
			short = append(short, Shortage{
				CartItemID:  l.CartItemID,
				ProductID:   l.ProductID,
				ProductName: l.ProductName,
				Requested:   l.Quantity,
				Available:   l.StockQuantity,
			})
		}
	}
	return short
}
