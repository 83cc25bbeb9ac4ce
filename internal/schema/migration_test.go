package schema

import (
	"context"
	"errors"
	"testing"

	"github.com/mserebryaakov/aggregator-storefront/internal/storetest"
	"github.com/mserebryaakov/aggregator-storefront/internal/voucher"
	"github.com/stretchr/testify/require"
)

func TestRunSchemaMigrationIsRepeatable(t *testing.T) {
	db := storetest.NewDB(t)

	require.NoError(t, RunSchemaMigration(db))
	require.NoError(t, RunSchemaMigration(db))

	for _, table := range []string{
		"users", "users_address", "users_contact_info", "admins",
		"product_categories", "products", "product_discounts", "product_stats",
		"vouchers", "user_vouchers", "carts", "cart_items",
		"orders", "order_items", "payments", "order_vouchers",
		"inventory_logs", "reviews", "wishlists", "wishlist_items",
	} {
		require.True(t, db.Migrator().HasTable(table), table)
	}
}

type fakeVouchers struct{ err error }

func (f fakeVouchers) Seed(ctx context.Context) (*voucher.Voucher, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &voucher.Voucher{ID: 1, Code: "WELCOME10"}, nil
}

type fakeAdmins struct{ emails []string }

func (f *fakeAdmins) EnsureAdmin(ctx context.Context, name, email, password string) error {
	f.emails = append(f.emails, email)
	return nil
}

func TestSeed(t *testing.T) {
	ctx := context.Background()

	admins := &fakeAdmins{}
	require.NoError(t, Seed(ctx, fakeVouchers{}, admins, AdminAccount{Email: "root@example.com", Password: "pw"}, storetest.Log()))
	require.Equal(t, []string{"root@example.com"}, admins.emails)

	admins = &fakeAdmins{}
	require.NoError(t, Seed(ctx, fakeVouchers{}, admins, AdminAccount{}, storetest.Log()))
	require.Empty(t, admins.emails)

	require.Error(t, Seed(ctx, fakeVouchers{err: errors.New("down")}, admins, AdminAccount{}, storetest.Log()))
}
