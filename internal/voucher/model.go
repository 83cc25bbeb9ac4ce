package voucher

import (
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindPercentage Kind = "percentage"
	KindFixed      Kind = "fixed"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusExpired  Status = "expired"
	StatusDisabled Status = "disabled"
)

type Voucher struct {
	ID            uint                `gorm:"primaryKey" json:"voucherId"`
	Code          string              `gorm:"size:50;uniqueIndex;not null" json:"code"`
	AdminID       *uint               `json:"adminId"`
	Kind          Kind                `gorm:"size:20;not null" json:"discountType"`
	Value         decimal.Decimal     `gorm:"column:discount_amount;type:numeric(10,2);not null" json:"discountValue"`
	MaxDiscount   decimal.NullDecimal `gorm:"type:numeric(10,2)" json:"maxDiscount"`
	MinOrderValue decimal.Decimal     `gorm:"type:numeric(10,2);not null;default:0" json:"minimumOrderValue"`
	ExpiresAt     *time.Time          `gorm:"column:expiry_date" json:"expiryDate"`
	UsageLimit    int                 `gorm:"not null;default:1" json:"usageLimit"`
	Status        Status              `gorm:"size:10" json:"status"`
	CreatedAt     time.Time           `json:"createdAt"`
}

// Claim binds a voucher to a user. Used only ever moves from false to true.
type Claim struct {
	ID        uint       `gorm:"primaryKey" json:"userVoucherId"`
	UserID    uint       `gorm:"not null;uniqueIndex:idx_user_vouchers_user_voucher" json:"userId"`
	VoucherID uint       `gorm:"not null;uniqueIndex:idx_user_vouchers_user_voucher" json:"voucherId"`
	Used      bool       `gorm:"not null;default:false" json:"used"`
	UsedAt    *time.Time `json:"usedAt"`
	ClaimedAt time.Time  `gorm:"not null" json:"claimedAt"`
}

func (Claim) TableName() string { return "user_vouchers" }

// Offer is one row of the eligibility list a user sees.
type Offer struct {
	Voucher
	VoucherType   string     `json:"voucherType"`
	UserVoucherID *uint      `json:"userVoucherId"`
	ClaimedAt     *time.Time `json:"claimedAt"`
}

// Usage is a voucher as the back office sees it.
type Usage struct {
	Voucher
	TimesClaimed int64 `json:"timesClaimed"`
	TimesUsed    int64 `json:"timesUsed"`
}

// Preview is the discount a voucher would give on a set of cart lines.
type Preview struct {
	VoucherID      uint            `json:"voucherId"`
	VoucherCode    string          `json:"voucherCode"`
	UserVoucherID  *uint           `json:"userVoucherId"`
	OriginalAmount decimal.Decimal `json:"originalAmount"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	FinalAmount    decimal.Decimal `json:"finalAmount"`
	IsPercentage   bool            `json:"isPercentage"`
	DiscountValue  decimal.Decimal `json:"discountValue"`
}

type NewVoucher struct {
	Code          string
	AdminID       *uint
	Kind          Kind
	Value         decimal.Decimal
	MaxDiscount   *decimal.Decimal
	MinOrderValue decimal.Decimal
	ExpiresAt     *time.Time
	UsageLimit    int
}
