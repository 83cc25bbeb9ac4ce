package wishlist

import (
	"time"

	"github.com/mserebryaakov/aggregator-storefront/internal/catalog"
	"github.com/shopspring/decimal"
)

type Wishlist struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
}

type Item struct {
	ID         uint            `gorm:"primaryKey"`
	WishlistID uint            `gorm:"not null;uniqueIndex:idx_wishlist_items_wishlist_product"`
	ProductID  uint            `gorm:"not null;uniqueIndex:idx_wishlist_items_wishlist_product"`
	AddedAt    time.Time       `gorm:"not null"`
	Product    catalog.Product `gorm:"foreignKey:ProductID"`
}

func (Item) TableName() string { return "wishlist_items" }

type Entry struct {
	WishlistItemID uint            `json:"wishlistItemId"`
	ProductID      uint            `json:"productId"`
	ProductName    string          `json:"productName"`
	ProductLink    string          `json:"productLink"`
	Price          decimal.Decimal `json:"price"`
	DiscountPrice  decimal.Decimal `json:"discountPrice"`
	StockQuantity  int             `json:"stockQuantity"`
	AddedAt        time.Time       `json:"addedAt"`
}
