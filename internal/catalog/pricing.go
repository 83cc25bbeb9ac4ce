package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// ActiveDiscount returns the window applied at now. Overlapping windows are
// not merged; the last active one in slice order wins.
func ActiveDiscount(discounts []Discount, now time.Time) *Discount {
	var active *Discount
	for i := range discounts {
		if discounts[i].ActiveAt(now) {
			active = &discounts[i]
		}
	}
	return active
}

// EffectivePrice is the unit price a buyer pays at now.
func EffectivePrice(list decimal.Decimal, discounts []Discount, now time.Time) (decimal.Decimal, bool) {
	if d := ActiveDiscount(discounts, now); d != nil {
		return d.Price, true
	}
	return list, false
}

func (p Product) EffectivePrice(now time.Time) (decimal.Decimal, bool) {
	return EffectivePrice(p.Price, p.Discounts, now)
}
