package order

import (
	"testing"
	"time"

	"github.com/mserebryaakov/aggregator-storefront/internal/cart"
	"github.com/mserebryaakov/aggregator-storefront/internal/voucher"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestPriceLines(t *testing.T) {
	lines := []cart.Line{line(1, 400, 2, 5), line(2, 100, 2, 5)}
	percent := &voucher.Voucher{ID: 1, Kind: voucher.KindPercentage, Value: decimal.NewFromInt(20), Status: voucher.StatusActive}
	large := &voucher.Voucher{ID: 2, Kind: voucher.KindFixed, Value: decimal.NewFromInt(1500), Status: voucher.StatusActive}
	unset := &voucher.Voucher{ID: 4, Kind: voucher.KindFixed, Value: decimal.NewFromInt(100)}
	expired := fixedVoucher(3, 100, 0)
	past := testNow.Add(-time.Hour)
	expired.ExpiresAt = &past

	tests := []struct {
		name     string
		voucher  *voucher.Voucher
		discount int64
		total    int64
		applied  bool
	}{
		{name: "no voucher", total: 1000},
		{name: "percentage", voucher: percent, discount: 200, total: 800, applied: true},
		{name: "fixed larger than subtotal", voucher: large, discount: 1000, total: 0, applied: true},
		{name: "expired", voucher: expired, total: 1000},
		{name: "no status", voucher: unset, total: 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := PriceLines(lines, tt.voucher, decimal.NewFromInt(1000), testNow)

			require.True(t, q.Subtotal.Equal(decimal.NewFromInt(1000)))
			require.True(t, q.Discount.Equal(decimal.NewFromInt(tt.discount)), q.Discount.String())
			require.True(t, q.Total.Equal(decimal.NewFromInt(tt.total)), q.Total.String())
			require.Equal(t, tt.applied, q.Voucher != nil)
		})
	}
}

func TestShortages(t *testing.T) {
	short := Shortages([]cart.Line{line(1, 10, 1, 1), line(2, 10, 4, 3)})
	require.Equal(t, []Shortage{{CartItemID: 2, ProductID: 20, ProductName: "product", Requested: 4, Available: 3}}, short)
}
