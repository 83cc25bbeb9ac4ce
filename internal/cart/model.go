package cart

import (
	"time"

	"github.com/mserebryaakov/aggregator-storefront/internal/catalog"
	"github.com/shopspring/decimal"
)

type Cart struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
}

type Item struct {
	ID        uint `gorm:"primaryKey"`
	CartID    uint `gorm:"index;not null"`
	ProductID uint `gorm:"index;not null"`
	Quantity  int  `gorm:"not null;check:quantity > 0"`
	VoucherID *uint
	AddedAt   time.Time `gorm:"not null"`

	Cart    *Cart `gorm:"constraint:OnDelete:CASCADE"`
	Product catalog.Product
}

func (Item) TableName() string { return "cart_items" }

// Line is a cart item priced at a given moment.
type Line struct {
	CartItemID    uint                `json:"cartItemId"`
	CartID        uint                `json:"cartId"`
	ProductID     uint                `json:"productId"`
	ProductName   string              `json:"productName"`
	ProductLink   string              `json:"productLink"`
	Quantity      int                 `json:"quantity"`
	Price         decimal.Decimal     `json:"price"`
	DiscountPrice decimal.NullDecimal `json:"discountPrice"`
	UnitPrice     decimal.Decimal     `json:"unitPrice"`
	StockQuantity int                 `json:"stockQuantity"`
	VoucherID     *uint               `json:"voucherId"`
}

func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Total())
	}
	return sum
}

func toLine(item Item, now time.Time) Line {
	unit, discounted := item.Product.EffectivePrice(now)
	line := Line{
		CartItemID:    item.ID,
		CartID:        item.CartID,
		ProductID:     item.ProductID,
		ProductName:   item.Product.Name,
		ProductLink:   item.Product.Link,
		Quantity:      item.Quantity,
		Price:         item.Product.Price,
		UnitPrice:     unit,
		StockQuantity: item.Product.StockQuantity,
		VoucherID:     item.VoucherID,
	}
	if discounted {
		line.DiscountPrice = decimal.NewNullDecimal(unit)
	}
	return line
}
