// Package schema creates the storefront tables and the rows the
// application cannot start without.
package schema

import (
	"context"
	"fmt"

	"github.com/mserebryaakov/aggregator-storefront/internal/cart"
	"github.com/mserebryaakov/aggregator-storefront/internal/catalog"
	"github.com/mserebryaakov/aggregator-storefront/internal/inventory"
	"github.com/mserebryaakov/aggregator-storefront/internal/order"
	"github.com/mserebryaakov/aggregator-storefront/internal/review"
	"github.com/mserebryaakov/aggregator-storefront/internal/user"
	"github.com/mserebryaakov/aggregator-storefront/internal/voucher"
	"github.com/mserebryaakov/aggregator-storefront/internal/wishlist"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func Models() []any {
	return []any{
		&user.User{},
		&user.Address{},
		&user.ContactPhone{},
		&user.Admin{},
		&catalog.Category{},
		&catalog.Product{},
		&catalog.Discount{},
		&catalog.Stats{},
		&voucher.Voucher{},
		&voucher.Claim{},
		&cart.Cart{},
		&cart.Item{},
		&order.Order{},
		&order.Item{},
		&order.Payment{},
		&order.VoucherLink{},
		&inventory.Log{},
		&review.Review{},
		&wishlist.Wishlist{},
		&wishlist.Item{},
	}
}

// RunSchemaMigration is safe to run on every start.
func RunSchemaMigration(db *gorm.DB) error {
	for _, model := range Models() {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T - %w", model, err)
		}
	}
	return nil
}

type VoucherSeeder interface {
	Seed(ctx context.Context) (*voucher.Voucher, error)
}

type AdminSeeder interface {
	EnsureAdmin(ctx context.Context, name, email, password string) error
}

type AdminAccount struct {
	Name     string
	Email    string
	Password string
}

// Seed puts the welcome voucher and the bootstrap admin in place. An admin
// without an email is skipped.
func Seed(ctx context.Context, vouchers VoucherSeeder, admins AdminSeeder, admin AdminAccount, log *logrus.Entry) error {
	v, err := vouchers.Seed(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed welcome voucher - %w", err)
	}
	log.Infof("welcome voucher %s ready", v.Code)

	if admin.Email == "" {
		log.Warn("ADMIN_EMAIL is not set, skipping admin bootstrap")
		return nil
	}
	if err := admins.EnsureAdmin(ctx, admin.Name, admin.Email, admin.Password); err != nil {
		return fmt.Errorf("failed to seed admin - %w", err)
	}
	return nil
}
