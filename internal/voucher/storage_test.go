package voucher

import (
	"context"
	"testing"

	"github.com/mserebryaakov/aggregator-storefront/internal/storetest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCreateVoucherRejectsDuplicateCode(t *testing.T) {
	db := storetest.NewDB(t, &Voucher{}, &Claim{})
	storage := NewStorage(storetest.Provider{Conn: db})
	ctx := context.Background()

	first := &Voucher{Code: "SPRING", Kind: KindPercentage, Value: decimal.NewFromInt(10), Status: StatusActive}
	require.NoError(t, storage.CreateVoucher(ctx, first))

	second := &Voucher{Code: "SPRING", Kind: KindFixed, Value: decimal.NewFromInt(50), Status: StatusActive}
	require.ErrorIs(t, storage.CreateVoucher(ctx, second), errDuplicateCode)

	var count int64
	require.NoError(t, db.Model(&Voucher{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}
