package user

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey" json:"userId"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`

	Address *Address       `json:"address,omitempty"`
	Phones  []ContactPhone `json:"phones,omitempty"`
}

type Address struct {
	ID        uint   `gorm:"primaryKey" json:"-"`
	UserID    uint   `gorm:"uniqueIndex;not null" json:"-"`
	StreetNo  int    `json:"streetNo"`
	HouseNo   int    `json:"houseNo"`
	BlockName string `gorm:"size:100" json:"blockName"`
	Society   string `gorm:"size:100" json:"society"`
	City      string `gorm:"size:100;not null" json:"city"`
	Country   string `gorm:"size:100;not null" json:"country"`
}

func (Address) TableName() string { return "users_address" }

type ContactPhone struct {
	ID     uint   `gorm:"primaryKey" json:"-"`
	UserID uint   `gorm:"index;not null" json:"-"`
	Phone  string `gorm:"size:20;uniqueIndex;not null" json:"phone"`
}

func (ContactPhone) TableName() string { return "users_contact_info" }

// Admin is a back-office account. It is not related to storefront users.
type Admin struct {
	ID           uint      `gorm:"primaryKey" json:"adminId"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Registration struct {
	Name      string
	Email     string
	Password  string
	Phone     string
	StreetNo  int
	HouseNo   int
	BlockName string
	Society   string
	City      string
	Country   string
}

type Session struct {
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
	Token    string `json:"token"`
}
