package order

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/mserebryaakov/aggregator-storefront/internal/cart"
	"github.com/mserebryaakov/aggregator-storefront/internal/voucher"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fakeCarts struct {
	lines []cart.Line
	err   error
}

func (f *fakeCarts) SelectedLines(ctx context.Context, userID uint, ids []uint) ([]cart.Line, error) {
	return f.lines, f.err
}

type fakeVouchers struct {
	vouchers map[uint]*voucher.Voucher
	claims   map[uint]*voucher.Claim
}

func (f *fakeVouchers) GetVoucher(ctx context.Context, id uint) (*voucher.Voucher, error) {
	if v, ok := f.vouchers[id]; ok {
		return v, nil
	}
	return nil, voucher.ErrVoucherNotFound
}

func (f *fakeVouchers) GetClaim(ctx context.Context, id uint) (*voucher.Claim, error) {
	if c, ok := f.claims[id]; ok {
		return c, nil
	}
	return nil, voucher.ErrClaimNotFound
}

func (f *fakeVouchers) FindClaim(ctx context.Context, userID, voucherID uint) (*voucher.Claim, error) {
	for _, c := range f.claims {
		if c.UserID == userID && c.VoucherID == voucherID {
			return c, nil
		}
	}
	return nil, voucher.ErrClaimNotFound
}

// recordingStorage captures the placement and fails every other call.
type recordingStorage struct {
	Storage
	placed *Placement
}

func (s *recordingStorage) PlaceOrder(ctx context.Context, p Placement) (*Order, error) {
	s.placed = &p
	return &Order{ID: 7, Reference: p.Reference}, nil
}

func newTestService(lines []cart.Line, vouchers *fakeVouchers) (*orderService, *recordingStorage) {
	l := logrus.New()
	l.SetOutput(io.Discard)

	storage := &recordingStorage{}
	if vouchers == nil {
		vouchers = &fakeVouchers{}
	}
	svc := NewService(storage, &fakeCarts{lines: lines}, vouchers, decimal.NewFromInt(1000), logrus.NewEntry(l)).(*orderService)
	svc.now = func() time.Time { return testNow }
	return svc, storage
}

func line(id uint, unit int64, qty, stock int) cart.Line {
	return cart.Line{
		CartItemID:    id,
		ProductID:     id * 10,
		ProductName:   "product",
		Quantity:      qty,
		UnitPrice:     decimal.NewFromInt(unit),
		StockQuantity: stock,
	}
}

func ptr(v uint) *uint { return &v }

func fixedVoucher(id uint, value, min int64) *voucher.Voucher {
	expires := testNow.Add(24 * time.Hour)
	return &voucher.Voucher{
		ID:            id,
		Code:          "TEST",
		Kind:          voucher.KindFixed,
		Value:         decimal.NewFromInt(value),
		MinOrderValue: decimal.NewFromInt(min),
		ExpiresAt:     &expires,
		Status:        voucher.StatusActive,
	}
}

func TestCheckoutValidation(t *testing.T) {
	svc, _ := newTestService([]cart.Line{line(1, 100, 1, 5)}, nil)
	ctx := context.Background()

	_, err := svc.Checkout(ctx, CheckoutRequest{CartItemIDs: []uint{1}})
	require.ErrorIs(t, err, errMissingUser)

	_, err = svc.Checkout(ctx, CheckoutRequest{UserID: 1})
	require.ErrorIs(t, err, errNoItemsSelected)

	_, err = svc.Checkout(ctx, CheckoutRequest{UserID: 1, CartItemIDs: []uint{1}, PaymentMethod: "paypal"})
	require.ErrorIs(t, err, errInvalidPaymentMethod)
}

func TestCheckoutReportsShortagesBeforeWriting(t *testing.T) {
	svc, storage := newTestService([]cart.Line{line(1, 100, 3, 2), line(2, 100, 1, 5)}, nil)

	_, err := svc.Checkout(context.Background(), CheckoutRequest{UserID: 1, CartItemIDs: []uint{1, 2}})

	var shortage *StockShortageError
	require.ErrorAs(t, err, &shortage)
	require.Len(t, shortage.Items, 1)
	require.Equal(t, uint(1), shortage.Items[0].CartItemID)
	require.Equal(t, 3, shortage.Items[0].Requested)
	require.Equal(t, 2, shortage.Items[0].Available)
	require.Nil(t, storage.placed)
}

func TestCheckoutDefaultsToCashOnDelivery(t *testing.T) {
	svc, storage := newTestService([]cart.Line{line(1, 400, 2, 5)}, nil)

	receipt, err := svc.Checkout(context.Background(), CheckoutRequest{UserID: 1, CartItemIDs: []uint{1, 1}})
	require.NoError(t, err)

	require.Equal(t, MethodCOD, receipt.PaymentMethod)
	require.Equal(t, PaymentPending, receipt.PaymentStatus)
	require.True(t, receipt.FinalTotal.Equal(decimal.NewFromInt(800)))
	require.Nil(t, receipt.VoucherApplied)
	require.NotEmpty(t, storage.placed.Reference)
	require.Equal(t, testNow, storage.placed.At)
}

func TestCheckoutCardIsCompleted(t *testing.T) {
	svc, _ := newTestService([]cart.Line{line(1, 400, 1, 5)}, nil)

	receipt, err := svc.Checkout(context.Background(), CheckoutRequest{UserID: 1, CartItemIDs: []uint{1}, PaymentMethod: "CARD"})
	require.NoError(t, err)
	require.Equal(t, MethodCard, receipt.PaymentMethod)
	require.Equal(t, PaymentCompleted, receipt.PaymentStatus)
}

func TestCheckoutVoucherClaims(t *testing.T) {
	lines := []cart.Line{line(1, 500, 2, 5)}

	tests := []struct {
		name        string
		claims      map[uint]*voucher.Claim
		claimID     *uint
		min         int64
		wantApplied bool
		wantClaim   *uint
	}{
		{
			name:        "no claim yet",
			wantApplied: true,
		},
		{
			name:        "unused claim found by user",
			claims:      map[uint]*voucher.Claim{3: {ID: 3, UserID: 1, VoucherID: 9}},
			wantApplied: true,
			wantClaim:   ptr(3),
		},
		{
			name:   "used claim blocks the voucher",
			claims: map[uint]*voucher.Claim{3: {ID: 3, UserID: 1, VoucherID: 9, Used: true}},
		},
		{
			name:    "explicit claim of another user",
			claims:  map[uint]*voucher.Claim{4: {ID: 4, UserID: 2, VoucherID: 9}},
			claimID: ptr(4),
		},
		{
			name:        "explicit claim",
			claims:      map[uint]*voucher.Claim{4: {ID: 4, UserID: 1, VoucherID: 9}},
			claimID:     ptr(4),
			wantApplied: true,
			wantClaim:   ptr(4),
		},
		{
			name: "minimum not met",
			min:  5000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vouchers := &fakeVouchers{
				vouchers: map[uint]*voucher.Voucher{9: fixedVoucher(9, 100, tt.min)},
				claims:   tt.claims,
			}
			svc, storage := newTestService(lines, vouchers)

			receipt, err := svc.Checkout(context.Background(), CheckoutRequest{
				UserID:        1,
				CartItemIDs:   []uint{1},
				VoucherID:     ptr(9),
				UserVoucherID: tt.claimID,
			})
			require.NoError(t, err)

			if !tt.wantApplied {
				require.Nil(t, receipt.VoucherApplied)
				require.True(t, receipt.Discount.IsZero())
				require.True(t, receipt.FinalTotal.Equal(decimal.NewFromInt(1000)))
				require.Nil(t, storage.placed.Quote.Voucher)
				require.Nil(t, storage.placed.ClaimID)
				return
			}

			require.NotNil(t, receipt.VoucherApplied)
			require.Equal(t, uint(9), receipt.VoucherApplied.VoucherID)
			require.True(t, receipt.FinalTotal.Equal(decimal.NewFromInt(900)))
			require.Equal(t, tt.wantClaim, storage.placed.ClaimID)
		})
	}
}

func TestCheckoutUnknownVoucherIsIgnored(t *testing.T) {
	svc, _ := newTestService([]cart.Line{line(1, 500, 1, 5)}, nil)

	receipt, err := svc.Checkout(context.Background(), CheckoutRequest{UserID: 1, CartItemIDs: []uint{1}, VoucherID: ptr(42)})
	require.NoError(t, err)
	require.Nil(t, receipt.VoucherApplied)
	require.True(t, receipt.FinalTotal.Equal(decimal.NewFromInt(500)))
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	svc, _ := newTestService(nil, nil)
	require.ErrorIs(t, svc.UpdateStatus(context.Background(), 1, Status("lost"), nil), errInvalidStatus)
}
