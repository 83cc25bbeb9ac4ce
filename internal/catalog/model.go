package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"categoryId"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"categoryName"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Category) TableName() string { return "product_categories" }

type Product struct {
	ID            uint            `gorm:"primaryKey" json:"productId"`
	Name          string          `gorm:"size:200;not null" json:"productName"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	StockQuantity int             `gorm:"not null;default:0" json:"stockQuantity"`
	Link          string          `gorm:"column:product_link" json:"productLink"`
	CategoryID    *uint           `gorm:"index" json:"categoryId"`
	AdminID       *uint           `json:"adminId"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`

	Category  *Category  `json:"-"`
	Stats     *Stats     `gorm:"foreignKey:ProductID" json:"-"`
	Discounts []Discount `gorm:"foreignKey:ProductID" json:"-"`
}

// Discount is a time-boxed override price. It is active on [StartsAt, EndsAt).
type Discount struct {
	ID        uint            `gorm:"primaryKey" json:"discountId"`
	ProductID uint            `gorm:"index;not null" json:"productId"`
	Price     decimal.Decimal `gorm:"column:discount_price;type:numeric(10,2);not null" json:"discountPrice"`
	StartsAt  time.Time       `gorm:"column:discount_start;not null" json:"discountStart"`
	EndsAt    time.Time       `gorm:"column:discount_end;not null" json:"discountEnd"`
}

func (Discount) TableName() string { return "product_discounts" }

func (d Discount) ActiveAt(t time.Time) bool {
	return !t.Before(d.StartsAt) && t.Before(d.EndsAt)
}

type Stats struct {
	ID         uint    `gorm:"primaryKey" json:"-"`
	ProductID  uint    `gorm:"uniqueIndex;not null" json:"productId"`
	PiecesSold int     `gorm:"not null;default:0" json:"piecesSold"`
	Rating     float64 `gorm:"not null;default:0" json:"rating"`
}

func (Stats) TableName() string { return "product_stats" }

// View is what the storefront shows for a product.
type View struct {
	ProductID     uint            `json:"productId"`
	Name          string          `json:"productName"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
	Link          string          `json:"productLink"`
	Category      string          `json:"category"`
	PiecesSold    int             `json:"piecesSold"`
	Rating        float64         `json:"rating"`
	DiscountPrice decimal.Decimal `json:"discountPrice"`
	DiscountStart *time.Time      `json:"discountStart"`
	DiscountEnd   *time.Time      `json:"discountEnd"`
	ReviewCount   int64           `json:"reviewCount"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type NewProduct struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity int
	Link          string
	Category      string
	AdminID       *uint
	Discount      *NewDiscount
}

type NewDiscount struct {
	Price    decimal.Decimal
	StartsAt time.Time
	EndsAt   time.Time
}
