package review

import "time"

// Review is unique per (user, product). Writing again replaces the rating
// and text.
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"reviewId"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_reviews_user_product" json:"userId"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_reviews_user_product;index" json:"productId"`
	Rating    int       `gorm:"not null;check:rating BETWEEN 1 AND 5" json:"rating"`
	Text      string    `gorm:"column:review_text" json:"reviewText"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Entry is a review with the names the listing pages need.
type Entry struct {
	Review
	UserName    string `json:"userName"`
	ProductName string `json:"productName,omitempty"`
	ProductLink string `json:"productLink,omitempty"`
}

type Summary struct {
	ProductID uint    `json:"productId"`
	Rating    float64 `json:"rating"`
	Reviews   int64   `json:"reviewCount"`
}
