package voucher

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/mserebryaakov/aggregator-storefront/internal/cart"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// CartReader resolves the priced cart lines a preview is computed on.
type CartReader interface {
	SelectedLines(ctx context.Context, userID uint, cartItemIDs []uint) ([]cart.Line, error)
}

type Settings struct {
	PercentageCap decimal.Decimal
	WelcomeCode   string
	WelcomeAmount decimal.Decimal
	WelcomeMin    decimal.Decimal
	WelcomeMonths int
}

type VoucherService interface {
	Eligible(ctx context.Context, userID uint) ([]Offer, error)
	Use(ctx context.Context, userID, voucherID, claimID uint) error
	Preview(ctx context.Context, userID, voucherID uint, cartItemIDs []uint) (*Preview, error)
	Seed(ctx context.Context) (*Voucher, error)
	WelcomeVoucher() *Voucher

	List(ctx context.Context) ([]Usage, error)
	Create(ctx context.Context, nv NewVoucher) (*Voucher, error)
	Delete(ctx context.Context, voucherID uint) error
}

type voucherService struct {
	storage  Storage
	carts    CartReader
	settings Settings
	logger   *logrus.Entry
	now      func() time.Time
}

func NewService(storage Storage, carts CartReader, settings Settings, log *logrus.Entry) VoucherService {
	return &voucherService{
		storage:  storage,
		carts:    carts,
		settings: settings,
		logger:   log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Eligible lists vouchers the user may still redeem: usable ones that are
// either unclaimed by the user or claimed and unused. It has no side effects.
func (s *voucherService) Eligible(ctx context.Context, userID uint) ([]Offer, error) {
	vouchers, err := s.storage.ListVouchers(ctx)
	if err != nil {
		return nil, err
	}

	claims, err := s.storage.ClaimsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	byVoucher := make(map[uint]Claim, len(claims))
	for _, c := range claims {
		byVoucher[c.VoucherID] = c
	}

	now := s.now()
	offers := make([]Offer, 0, len(vouchers))
	for _, v := range vouchers {
		if !v.Listed(now) {
			continue
		}

		offer := Offer{Voucher: v, VoucherType: "global"}
		if c, ok := byVoucher[v.ID]; ok {
			if c.Used {
				continue
			}
			id, claimedAt := c.ID, c.ClaimedAt
			offer.VoucherType = "user_specific"
			offer.UserVoucherID = &id
			offer.ClaimedAt = &claimedAt
		}
		if v.Kind == KindPercentage && !v.MaxDiscount.Valid {
			offer.MaxDiscount = decimal.NewNullDecimal(s.settings.PercentageCap)
		}
		offers = append(offers, offer)
	}

	sort.SliceStable(offers, func(i, j int) bool { return offers[i].ID < offers[j].ID })
	return offers, nil
}

func (s *voucherService) Use(ctx context.Context, userID, voucherID, claimID uint) error {
	claim, err := s.storage.GetClaim(ctx, claimID)
	if err != nil {
		return err
	}
	if claim.UserID != userID || claim.VoucherID != voucherID {
		return ErrClaimNotFound
	}
	if claim.Used {
		return ErrClaimUsed
	}

	if err := s.storage.MarkUsed(ctx, claimID, s.now()); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{"user_id": userID, "voucher_id": voucherID}).Info("voucher marked used")
	return nil
}

// Preview prices the selected cart lines with the voucher. Unlike checkout it
// reports an unmet minimum as an error.
func (s *voucherService) Preview(ctx context.Context, userID, voucherID uint, cartItemIDs []uint) (*Preview, error) {
	if len(cartItemIDs) == 0 {
		return nil, errNoCartItems
	}

	v, err := s.storage.GetVoucher(ctx, voucherID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !v.Usable(now) {
		return nil, ErrVoucherNotFound
	}

	lines, err := s.carts.SelectedLines(ctx, userID, cartItemIDs)
	if err != nil {
		return nil, err
	}

	subtotal := cart.Subtotal(lines)
	if subtotal.LessThan(v.MinOrderValue) {
		return nil, ErrMinimumNotMet
	}

	amount := v.Discount(s.settings.PercentageCap).Amount(subtotal)
	preview := &Preview{
		VoucherID:      v.ID,
		VoucherCode:    v.Code,
		OriginalAmount: subtotal,
		DiscountAmount: amount,
		FinalAmount:    subtotal.Sub(amount),
		IsPercentage:   v.Kind == KindPercentage,
		DiscountValue:  v.Value,
	}

	claim, err := s.storage.FindClaim(ctx, userID, voucherID)
	switch {
	case err == nil:
		if claim.Used {
			return nil, ErrClaimUsed
		}
		preview.UserVoucherID = &claim.ID
	case !errors.Is(err, ErrClaimNotFound):
		return nil, err
	}

	return preview, nil
}

// WelcomeVoucher describes the voucher every new account receives.
func (s *voucherService) WelcomeVoucher() *Voucher {
	expires := s.now().AddDate(0, s.settings.WelcomeMonths, 0)
	return &Voucher{
		Code:          s.settings.WelcomeCode,
		Kind:          KindFixed,
		Value:         s.settings.WelcomeAmount,
		MinOrderValue: s.settings.WelcomeMin,
		ExpiresAt:     &expires,
		UsageLimit:    1,
		Status:        StatusActive,
	}
}

// Seed makes sure the welcome voucher exists. Running it again is a no-op.
func (s *voucherService) Seed(ctx context.Context) (*Voucher, error) {
	v, err := s.storage.EnsureVoucher(ctx, s.WelcomeVoucher())
	if err != nil {
		return nil, err
	}
	s.logger.WithField("voucher_id", v.ID).Debugf("welcome voucher %s in place", v.Code)
	return v, nil
}

func (s *voucherService) List(ctx context.Context) ([]Usage, error) {
	vouchers, err := s.storage.ListVouchers(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.storage.UsageCounts(ctx)
	if err != nil {
		return nil, err
	}

	usage := make([]Usage, 0, len(vouchers))
	for _, v := range vouchers {
		u := counts[v.ID]
		u.Voucher = v
		usage = append(usage, u)
	}
	return usage, nil
}

func (s *voucherService) Create(ctx context.Context, nv NewVoucher) (*Voucher, error) {
	code := strings.ToUpper(strings.TrimSpace(nv.Code))
	if code == "" {
		return nil, errEmptyCode
	}
	if !nv.Value.IsPositive() {
		return nil, errInvalidValue
	}

	kind := nv.Kind
	switch kind {
	case "":
		kind = InferKind(nv.Value)
	case KindPercentage, KindFixed:
	default:
		return nil, errInvalidKind
	}
	if kind == KindPercentage && nv.Value.GreaterThan(hundred) {
		return nil, errPercentRange
	}

	v := &Voucher{
		Code:          code,
		AdminID:       nv.AdminID,
		Kind:          kind,
		Value:         nv.Value,
		MinOrderValue: nv.MinOrderValue,
		ExpiresAt:     nv.ExpiresAt,
		UsageLimit:    nv.UsageLimit,
		Status:        StatusActive,
	}
	if nv.MaxDiscount != nil {
		v.MaxDiscount = decimal.NewNullDecimal(*nv.MaxDiscount)
	}
	if v.UsageLimit <= 0 {
		v.UsageLimit = 1
	}
	if v.ExpiresAt != nil {
		utc := v.ExpiresAt.UTC()
		v.ExpiresAt = &utc
	}

	if err := s.storage.CreateVoucher(ctx, v); err != nil {
		return nil, err
	}

	s.logger.WithField("voucher_id", v.ID).Infof("voucher %s created as %s %s", v.Code, v.Kind, v.Value)
	return v, nil
}

func (s *voucherService) Delete(ctx context.Context, voucherID uint) error {
	return s.storage.DeleteVoucher(ctx, voucherID)
}
