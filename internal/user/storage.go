package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mserebryaakov/aggregator-storefront/internal/review"
	"github.com/mserebryaakov/aggregator-storefront/internal/voucher"
	"github.com/mserebryaakov/aggregator-storefront/pkg/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Storage interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	PhoneExists(ctx context.Context, phone string) (bool, error)
	CreateUser(ctx context.Context, u *User, welcomeCode string) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	GetUser(ctx context.Context, userID uint) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	DeleteUser(ctx context.Context, userID uint) error

	FindAdminByEmail(ctx context.Context, email string) (*Admin, error)
	GetAdmin(ctx context.Context, adminID uint) (*Admin, error)
	UpdateAdminPassword(ctx context.Context, adminID uint, hash string) error
	EnsureAdmin(ctx context.Context, a *Admin) error
}

type UserStorage struct {
	pool postgres.Provider
}

func NewStorage(pool postgres.Provider) Storage {
	return &UserStorage{
		pool: pool,
	}
}

func (s *UserStorage) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := s.pool.DB(ctx).Model(&User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (s *UserStorage) PhoneExists(ctx context.Context, phone string) (bool, error) {
	var count int64
	err := s.pool.DB(ctx).Model(&ContactPhone{}).Where("phone = ?", phone).Count(&count).Error
	return count > 0, err
}

// CreateUser stores the account, its address and phones, and claims the
// welcome voucher for it, all in one transaction.
func (s *UserStorage) CreateUser(ctx context.Context, u *User, welcomeCode string) error {
	return s.pool.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(u).Error; err != nil {
			return fmt.Errorf("failed to create user - %w", err)
		}

		if u.Address != nil {
			u.Address.UserID = u.ID
			if err := tx.Create(u.Address).Error; err != nil {
				return fmt.Errorf("failed to create address - %w", err)
			}
		}

		for i := range u.Phones {
			u.Phones[i].UserID = u.ID
		}
		if len(u.Phones) > 0 {
			if err := tx.Create(&u.Phones).Error; err != nil {
				return fmt.Errorf("failed to create contact info - %w", err)
			}
		}

		if welcomeCode == "" {
			return nil
		}
		welcome, err := voucher.GetVoucherByCodeTx(tx, welcomeCode)
		if errors.Is(err, voucher.ErrVoucherNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return voucher.ClaimTx(tx, u.ID, welcome.ID, time.Now().UTC())
	})
}

func (s *UserStorage) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	if err := s.pool.DB(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *UserStorage) GetUser(ctx context.Context, userID uint) (*User, error) {
	var u User
	if err := s.pool.DB(ctx).Preload("Address").Preload("Phones").First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *UserStorage) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	err := s.pool.DB(ctx).
		Preload("Address").
		Preload("Phones").
		Order("created_at DESC, id DESC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users - %w", err)
	}
	return users, nil
}

// DeleteUser removes an account without order history together with its
// carts, claims, reviews and wishlist.
func (s *UserStorage) DeleteUser(ctx context.Context, userID uint) error {
	return s.pool.DB(ctx).Transaction(func(tx *gorm.DB) error {
		var orders int64
		if err := tx.Table("orders").Where("user_id = ?", userID).Count(&orders).Error; err != nil {
			return err
		}
		if orders > 0 {
			return errUserHasOrders
		}

		var reviewed []uint
		if err := tx.Table("reviews").Where("user_id = ?", userID).Pluck("product_id", &reviewed).Error; err != nil {
			return err
		}

		cleanup := []string{
			"DELETE FROM cart_items WHERE cart_id IN (SELECT id FROM carts WHERE user_id = ?)",
			"DELETE FROM carts WHERE user_id = ?",
			"DELETE FROM wishlist_items WHERE wishlist_id IN (SELECT id FROM wishlists WHERE user_id = ?)",
			"DELETE FROM wishlists WHERE user_id = ?",
			"DELETE FROM user_vouchers WHERE user_id = ?",
			"DELETE FROM reviews WHERE user_id = ?",
			"DELETE FROM users_contact_info WHERE user_id = ?",
			"DELETE FROM users_address WHERE user_id = ?",
		}
		for _, stmt := range cleanup {
			if err := tx.Exec(stmt, userID).Error; err != nil {
				return err
			}
		}

		for _, productID := range reviewed {
			if _, err := review.RecomputeTx(tx, productID); err != nil {
				return err
			}
		}

		result := tx.Delete(&User{}, userID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

func (s *UserStorage) FindAdminByEmail(ctx context.Context, email string) (*Admin, error) {
	var a Admin
	if err := s.pool.DB(ctx).Where("email = ?", email).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errAdminNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (s *UserStorage) GetAdmin(ctx context.Context, adminID uint) (*Admin, error) {
	var a Admin
	if err := s.pool.DB(ctx).First(&a, adminID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errAdminNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (s *UserStorage) UpdateAdminPassword(ctx context.Context, adminID uint, hash string) error {
	result := s.pool.DB(ctx).Model(&Admin{}).Where("id = ?", adminID).Update("password_hash", hash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errAdminNotFound
	}
	return nil
}

func (s *UserStorage) EnsureAdmin(ctx context.Context, a *Admin) error {
	return s.pool.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(a).Error
}
