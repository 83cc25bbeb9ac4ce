package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

const (
	MethodCOD  = "cod"
	MethodCard = "card"

	PaymentPending   = "pending"
	PaymentCompleted = "completed"
)

// Order keeps the amounts it was placed with. TotalPrice is the subtotal
// before any voucher, Total is what the customer pays.
type Order struct {
	ID         uint            `gorm:"primaryKey"`
	UserID     uint            `gorm:"index;not null"`
	Reference  string          `gorm:"size:36;uniqueIndex;not null"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Discount   decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	Total      decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Status     Status          `gorm:"column:order_status;size:20;not null"`
	OrderDate  time.Time       `gorm:"not null"`

	Items   []Item   `gorm:"foreignKey:OrderID"`
	Payment *Payment `gorm:"foreignKey:OrderID"`
}

// Item snapshots the product name and the discounted line total.
type Item struct {
	ID          uint            `gorm:"primaryKey"`
	OrderID     uint            `gorm:"index;not null"`
	ProductID   *uint           `gorm:"index"`
	ProductName string          `gorm:"size:200;not null"`
	Quantity    int             `gorm:"not null;check:quantity > 0"`
	Subtotal    decimal.Decimal `gorm:"type:numeric(10,2);not null"`
}

func (Item) TableName() string { return "order_items" }

func (i Item) UnitPrice() decimal.Decimal {
	if i.Quantity == 0 {
		return decimal.Zero
	}
	return i.Subtotal.Div(decimal.NewFromInt(int64(i.Quantity))).Round(2)
}

type Payment struct {
	ID        uint            `gorm:"primaryKey"`
	OrderID   uint            `gorm:"uniqueIndex;not null"`
	Method    string          `gorm:"column:payment_method;size:20;not null"`
	Status    string          `gorm:"column:payment_status;size:20;not null"`
	Amount    decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	CreatedAt time.Time
}

// VoucherLink records which voucher discounted an order.
type VoucherLink struct {
	ID            uint `gorm:"primaryKey"`
	OrderID       uint `gorm:"not null;uniqueIndex:idx_order_vouchers_order_voucher"`
	VoucherID     uint `gorm:"not null;uniqueIndex:idx_order_vouchers_order_voucher"`
	UserVoucherID *uint
	Discount      decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	AppliedAt     time.Time       `gorm:"not null"`
}

func (VoucherLink) TableName() string { return "order_vouchers" }

type CheckoutRequest struct {
	UserID        uint
	CartItemIDs   []uint
	VoucherID     *uint
	UserVoucherID *uint
	PaymentMethod string
}

type AppliedVoucher struct {
	VoucherID      uint            `json:"voucherId"`
	Code           string          `json:"code"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	UserVoucherID  *uint           `json:"userVoucherId,omitempty"`
}

type Receipt struct {
	Success             bool            `json:"success"`
	OrderID             uint            `json:"orderId"`
	Reference           string          `json:"reference"`
	TotalBeforeDiscount decimal.Decimal `json:"totalBeforeDiscount"`
	Discount            decimal.Decimal `json:"discount"`
	FinalTotal          decimal.Decimal `json:"finalTotal"`
	PaymentMethod       string          `json:"paymentMethod"`
	PaymentStatus       string          `json:"paymentStatus"`
	VoucherApplied      *AppliedVoucher `json:"voucherApplied"`
}

type ItemView struct {
	OrderItemID uint            `json:"orderItemId"`
	ProductID   *uint           `json:"productId"`
	ProductName string          `json:"productName"`
	ProductLink string          `json:"productLink"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

type View struct {
	OrderID         uint            `json:"orderId"`
	Reference       string          `json:"reference"`
	UserID          uint            `json:"userId"`
	UserName        string          `json:"userName,omitempty"`
	UserEmail       string          `json:"userEmail,omitempty"`
	UserPhone       string          `json:"userPhone,omitempty"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	Discount        decimal.Decimal `json:"discount"`
	FinalTotal      decimal.Decimal `json:"finalTotal"`
	OrderDate       time.Time       `json:"orderDate"`
	OrderStatus     Status          `json:"orderStatus"`
	ShippingAddress string          `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	PaymentStatus   string          `json:"paymentStatus"`
	Items           []ItemView      `json:"items"`
}

type PurchaseHistory struct {
	HasPurchased  bool  `json:"hasPurchased"`
	PurchaseCount int64 `json:"purchaseCount"`
}
