package voucher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mserebryaakov/aggregator-storefront/pkg/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Storage interface {
	GetVoucher(ctx context.Context, voucherID uint) (*Voucher, error)
	ListVouchers(ctx context.Context) ([]Voucher, error)
	UsageCounts(ctx context.Context) (map[uint]Usage, error)
	CreateVoucher(ctx context.Context, v *Voucher) error
	DeleteVoucher(ctx context.Context, voucherID uint) error
	EnsureVoucher(ctx context.Context, v *Voucher) (*Voucher, error)

	ClaimsByUser(ctx context.Context, userID uint) ([]Claim, error)
	GetClaim(ctx context.Context, claimID uint) (*Claim, error)
	FindClaim(ctx context.Context, userID, voucherID uint) (*Claim, error)
	MarkUsed(ctx context.Context, claimID uint, at time.Time) error
}

type VoucherStorage struct {
	pool postgres.Provider
}

func NewStorage(pool postgres.Provider) Storage {
	return &VoucherStorage{
		pool: pool,
	}
}

func (s *VoucherStorage) GetVoucher(ctx context.Context, voucherID uint) (*Voucher, error) {
	return GetVoucherTx(s.pool.DB(ctx), voucherID)
}

func (s *VoucherStorage) ListVouchers(ctx context.Context) ([]Voucher, error) {
	var vouchers []Voucher
	if err := s.pool.DB(ctx).Order("created_at DESC, id DESC").Find(&vouchers).Error; err != nil {
		return nil, fmt.Errorf("failed to list vouchers - %w", err)
	}
	return vouchers, nil
}

func (s *VoucherStorage) UsageCounts(ctx context.Context) (map[uint]Usage, error) {
	var rows []struct {
		VoucherID uint
		Claimed   int64
		Used      int64
	}
	err := s.pool.DB(ctx).
		Model(&Claim{}).
		Select("voucher_id, COUNT(*) AS claimed, SUM(CASE WHEN used THEN 1 ELSE 0 END) AS used").
		Group("voucher_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]Usage, len(rows))
	for _, r := range rows {
		counts[r.VoucherID] = Usage{TimesClaimed: r.Claimed, TimesUsed: r.Used}
	}
	return counts, nil
}

// CreateVoucher relies on the unique code index, so two concurrent creates
// of one code cannot both succeed.
func (s *VoucherStorage) CreateVoucher(ctx context.Context, v *Voucher) error {
	if err := s.pool.DB(ctx).Create(v).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errDuplicateCode
		}
		return fmt.Errorf("failed to create voucher - %w", err)
	}
	return nil
}

func (s *VoucherStorage) DeleteVoucher(ctx context.Context, voucherID uint) error {
	return s.pool.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("voucher_id = ?", voucherID).Delete(&Claim{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("UPDATE cart_items SET voucher_id = NULL WHERE voucher_id = ?", voucherID).Error; err != nil {
			return err
		}

		result := tx.Delete(&Voucher{}, voucherID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrVoucherNotFound
		}
		return nil
	})
}

// EnsureVoucher inserts v unless a voucher with the same code exists and
// returns whichever row is stored.
func (s *VoucherStorage) EnsureVoucher(ctx context.Context, v *Voucher) (*Voucher, error) {
	db := s.pool.DB(ctx)

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoNothing: true,
	}).Create(v).Error
	if err != nil {
		return nil, fmt.Errorf("failed to seed voucher %s - %w", v.Code, err)
	}

	var stored Voucher
	if err := db.Where("code = ?", v.Code).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *VoucherStorage) ClaimsByUser(ctx context.Context, userID uint) ([]Claim, error) {
	var claims []Claim
	if err := s.pool.DB(ctx).Where("user_id = ?", userID).Find(&claims).Error; err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *VoucherStorage) GetClaim(ctx context.Context, claimID uint) (*Claim, error) {
	var claim Claim
	if err := s.pool.DB(ctx).First(&claim, claimID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClaimNotFound
		}
		return nil, err
	}
	return &claim, nil
}

func (s *VoucherStorage) FindClaim(ctx context.Context, userID, voucherID uint) (*Claim, error) {
	return FindClaimTx(s.pool.DB(ctx), userID, voucherID)
}

func (s *VoucherStorage) MarkUsed(ctx context.Context, claimID uint, at time.Time) error {
	return MarkUsedTx(s.pool.DB(ctx), claimID, at)
}

// The helpers below run on a caller supplied handle so other domains can
// include voucher writes in their own transactions.

func GetVoucherTx(tx *gorm.DB, voucherID uint) (*Voucher, error) {
	var v Voucher
	if err := tx.First(&v, voucherID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVoucherNotFound
		}
		return nil, err
	}
	return &v, nil
}

func GetVoucherByCodeTx(tx *gorm.DB, code string) (*Voucher, error) {
	var v Voucher
	if err := tx.Where("code = ?", code).First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVoucherNotFound
		}
		return nil, err
	}
	return &v, nil
}

func FindClaimTx(tx *gorm.DB, userID, voucherID uint) (*Claim, error) {
	var claim Claim
	err := tx.Where("user_id = ? AND voucher_id = ?", userID, voucherID).First(&claim).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClaimNotFound
		}
		return nil, err
	}
	return &claim, nil
}

// ClaimTx gives the user an unused claim on the voucher. An existing claim is
// left untouched.
func ClaimTx(tx *gorm.DB, userID, voucherID uint, at time.Time) error {
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&Claim{
		UserID:    userID,
		VoucherID: voucherID,
		ClaimedAt: at,
	}).Error
}

// ConsumeNewClaimTx records a first and only use of the voucher by the user.
func ConsumeNewClaimTx(tx *gorm.DB, userID, voucherID uint, at time.Time) (*Claim, error) {
	claim := Claim{
		UserID:    userID,
		VoucherID: voucherID,
		Used:      true,
		UsedAt:    &at,
		ClaimedAt: at,
	}
	result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&claim)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrClaimUsed
	}
	return &claim, nil
}

// MarkUsedTx flips an unused claim to used. A claim that is already used or
// missing yields ErrClaimUsed.
func MarkUsedTx(tx *gorm.DB, claimID uint, at time.Time) error {
	result := tx.Model(&Claim{}).
		Where("id = ? AND used = ?", claimID, false).
		Updates(map[string]interface{}{"used": true, "used_at": at})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrClaimUsed
	}
	return nil
}
