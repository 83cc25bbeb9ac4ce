package inventory

import "time"

// Log is an append-only stock movement. Product.StockQuantity stays the
// source of truth; these rows are the audit trail.
type Log struct {
	ID           uint      `gorm:"primaryKey" json:"logId"`
	ProductID    *uint     `gorm:"index" json:"productId"`
	StockAdded   int       `gorm:"not null;default:0" json:"stockAdded"`
	StockRemoved int       `gorm:"not null;default:0" json:"stockRemoved"`
	OrderID      *uint     `gorm:"index" json:"orderId"`
	AdminID      *uint     `json:"adminId"`
	Note         string    `gorm:"size:255" json:"note"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (Log) TableName() string { return "inventory_logs" }

type Entry struct {
	Log
	ProductName string `json:"productName"`
}
