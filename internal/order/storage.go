package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mserebryaakov/aggregator-storefront/internal/cart"
	"github.com/mserebryaakov/aggregator-storefront/internal/catalog"
	"github.com/mserebryaakov/aggregator-storefront/internal/inventory"
	"github.com/mserebryaakov/aggregator-storefront/internal/voucher"
	"github.com/mserebryaakov/aggregator-storefront/pkg/postgres"
	"gorm.io/gorm"
)

// Placement is everything needed to write an order once pricing is done.
type Placement struct {
	UserID        uint
	Reference     string
	Lines         []cart.Line
	Quote         Quote
	PaymentMethod string
	PaymentStatus string
	// ClaimID is the unused claim to consume. Nil with a voucher means the
	// user has no claim yet and one is recorded as used.
	ClaimID *uint
	At      time.Time
}

type Customer struct {
	UserID  uint
	Name    string
	Email   string
	Phone   string
	Address string
}

type Storage interface {
	PlaceOrder(ctx context.Context, p Placement) (*Order, error)
	OrdersByUser(ctx context.Context, userID uint) ([]Order, error)
	AllOrders(ctx context.Context) ([]Order, error)
	ProductLinks(ctx context.Context, productIDs []uint) (map[uint]string, error)
	Customers(ctx context.Context, userIDs []uint) (map[uint]Customer, error)
	PurchaseCount(ctx context.Context, userID, productID uint) (int64, error)
	UpdateStatus(ctx context.Context, orderID uint, status Status) error
	Cancel(ctx context.Context, orderID uint, adminID *uint) error
	DeleteOrder(ctx context.Context, orderID uint) error
}

type OrderStorage struct {
	pool postgres.Provider
}

func NewStorage(pool postgres.Provider) Storage {
	return &OrderStorage{
		pool: pool,
	}
}

// PlaceOrder writes the order and all of its side effects in one
// transaction. Any failure leaves stock, cart, claims and orders untouched.
func (s *OrderStorage) PlaceOrder(ctx context.Context, p Placement) (*Order, error) {
	order := Order{
		UserID:     p.UserID,
		Reference:  p.Reference,
		TotalPrice: p.Quote.Subtotal,
		Discount:   p.Quote.Discount,
		Total:      p.Quote.Total,
		Status:     StatusProcessing,
		OrderDate:  p.At,
	}

	err := s.pool.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items", "Payment").Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order - %w", err)
		}

		if v := p.Quote.Voucher; v != nil {
			link := VoucherLink{
				OrderID:       order.ID,
				VoucherID:     v.ID,
				UserVoucherID: p.ClaimID,
				Discount:      p.Quote.Discount,
				AppliedAt:     p.At,
			}
			if err := tx.Create(&link).Error; err != nil {
				return fmt.Errorf("failed to link voucher - %w", err)
			}
		}

		logs := make([]inventory.Log, 0, len(p.Lines))
		cartItemIDs := make([]uint, 0, len(p.Lines))
		for _, line := range p.Lines {
			productID := line.ProductID
			item := Item{
				OrderID:     order.ID,
				ProductID:   &productID,
				ProductName: line.ProductName,
				Quantity:    line.Quantity,
				Subtotal:    line.Total(),
			}
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("failed to create order item - %w", err)
			}

			reserved, err := inventory.ReserveTx(tx, productID, line.Quantity)
			if err != nil {
				return fmt.Errorf("failed to update stock - %w", err)
			}
			if !reserved {
				return shortageTx(tx, line)
			}

			if err := addPiecesSoldTx(tx, productID, line.Quantity); err != nil {
				return err
			}

			orderID := order.ID
			logs = append(logs, inventory.Log{
				ProductID:    &productID,
				StockRemoved: line.Quantity,
				OrderID:      &orderID,
				Note:         "order " + order.Reference,
			})
			cartItemIDs = append(cartItemIDs, line.CartItemID)
		}

		if err := inventory.AppendTx(tx, logs); err != nil {
			return fmt.Errorf("failed to write inventory log - %w", err)
		}

		payment := Payment{
			OrderID: order.ID,
			Method:  p.PaymentMethod,
			Status:  p.PaymentStatus,
			Amount:  p.Quote.Total,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("failed to create payment - %w", err)
		}
		order.Payment = &payment

		if v := p.Quote.Voucher; v != nil {
			if err := consumeClaimTx(tx, p, v.ID); err != nil {
				return err
			}
		}

		if err := cart.DeleteItemsTx(tx, cartItemIDs); err != nil {
			return fmt.Errorf("failed to clear cart items - %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func consumeClaimTx(tx *gorm.DB, p Placement, voucherID uint) error {
	var err error
	if p.ClaimID != nil {
		err = voucher.MarkUsedTx(tx, *p.ClaimID, p.At)
	} else {
		_, err = voucher.ConsumeNewClaimTx(tx, p.UserID, voucherID, p.At)
	}
	if errors.Is(err, voucher.ErrClaimUsed) {
		return errVoucherConflict
	}
	return err
}

func shortageTx(tx *gorm.DB, line cart.Line) error {
	var available int
	if err := tx.Model(&catalog.Product{}).
		Where("id = ?", line.ProductID).
		Select("stock_quantity").
		Scan(&available).Error; err != nil {
		return err
	}
	return &StockShortageError{Items: []Shortage{{
		CartItemID:  line.CartItemID,
		ProductID:   line.ProductID,
		ProductName: line.ProductName,
		Requested:   line.Quantity,
		Available:   available,
	}}}
}

func addPiecesSoldTx(tx *gorm.DB, productID uint, quantity int) error {
	result := tx.Model(&catalog.Stats{}).
		Where("product_id = ?", productID).
		UpdateColumn("pieces_sold", gorm.Expr("pieces_sold + ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("failed to update product stats - %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}
	if err := tx.Create(&catalog.Stats{ProductID: productID, PiecesSold: quantity}).Error; err != nil {
		return fmt.Errorf("failed to create product stats - %w", err)
	}
	return nil
}

func (s *OrderStorage) OrdersByUser(ctx context.Context, userID uint) ([]Order, error) {
	var orders []Order
	err := s.pool.DB(ctx).
		Where("user_id = ?", userID).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Payment").
		Order("order_date DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load orders - %w", err)
	}
	return orders, nil
}

func (s *OrderStorage) AllOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	err := s.pool.DB(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Payment").
		Order("order_date DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load orders - %w", err)
	}
	return orders, nil
}

func (s *OrderStorage) ProductLinks(ctx context.Context, productIDs []uint) (map[uint]string, error) {
	links := make(map[uint]string, len(productIDs))
	if len(productIDs) == 0 {
		return links, nil
	}

	var products []catalog.Product
	if err := s.pool.DB(ctx).Select("id", "product_link").Where("id IN ?", productIDs).Find(&products).Error; err != nil {
		return nil, err
	}
	for _, p := range products {
		links[p.ID] = p.Link
	}
	return links, nil
}

func (s *OrderStorage) Customers(ctx context.Context, userIDs []uint) (map[uint]Customer, error) {
	customers := make(map[uint]Customer, len(userIDs))
	if len(userIDs) == 0 {
		return customers, nil
	}

	var rows []struct {
		UserID    uint
		Name      string
		Email     string
		Phone     *string
		StreetNo  *int
		HouseNo   *int
		BlockName *string
		Society   *string
		City      *string
		Country   *string
	}
	err := s.pool.DB(ctx).
		Table("users").
		Select(`users.id AS user_id, users.name, users.email, users_contact_info.phone,
			users_address.street_no, users_address.house_no, users_address.block_name,
			users_address.society, users_address.city, users_address.country`).
		Joins("LEFT JOIN users_contact_info ON users_contact_info.user_id = users.id").
		Joins("LEFT JOIN users_address ON users_address.user_id = users.id").
		Where("users.id IN ?", userIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		if _, seen := customers[r.UserID]; seen {
			continue
		}
		c := Customer{UserID: r.UserID, Name: r.Name, Email: r.Email}
		if r.Phone != nil {
			c.Phone = *r.Phone
		}
		c.Address = formatAddress(r.StreetNo, r.HouseNo, r.BlockName, r.Society, r.City, r.Country)
		customers[r.UserID] = c
	}
	return customers, nil
}

func (s *OrderStorage) PurchaseCount(ctx context.Context, userID, productID uint) (int64, error) {
	var count int64
	err := s.pool.DB(ctx).
		Model(&Item{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND order_items.product_id = ?", userID, productID).
		Count(&count).Error
	return count, err
}

func (s *OrderStorage) UpdateStatus(ctx context.Context, orderID uint, status Status) error {
	db := s.pool.DB(ctx)
	result := db.Model(&Order{}).
		Where("id = ? AND order_status <> ?", orderID, StatusCancelled).
		Update("order_status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}
	return missingOrCancelled(db, orderID)
}

// Cancel marks the order cancelled and puts its quantities back on the
// shelf. Amounts on the order are left as they were.
func (s *OrderStorage) Cancel(ctx context.Context, orderID uint, adminID *uint) error {
	return s.pool.DB(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Order{}).
			Where("id = ? AND order_status <> ?", orderID, StatusCancelled).
			Update("order_status", StatusCancelled)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return missingOrCancelled(tx, orderID)
		}

		var items []Item
		if err := tx.Where("order_id = ? AND product_id IS NOT NULL", orderID).Find(&items).Error; err != nil {
			return err
		}

		logs := make([]inventory.Log, 0, len(items))
		for _, item := range items {
			err := inventory.RestockTx(tx, *item.ProductID, item.Quantity)
			if errors.Is(err, catalog.ErrProductNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			id := orderID
			logs = append(logs, inventory.Log{
				ProductID:  item.ProductID,
				StockAdded: item.Quantity,
				OrderID:    &id,
				AdminID:    adminID,
				Note:       "order cancelled",
			})
		}
		return inventory.AppendTx(tx, logs)
	})
}

func missingOrCancelled(db *gorm.DB, orderID uint) error {
	var count int64
	if err := db.Model(&Order{}).Where("id = ?", orderID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errOrderNotFound
	}
	return errOrderCancelled
}

func (s *OrderStorage) DeleteOrder(ctx context.Context, orderID uint) error {
	return s.pool.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&Item{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", orderID).Delete(&Payment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", orderID).Delete(&VoucherLink{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("UPDATE inventory_logs SET order_id = NULL WHERE order_id = ?", orderID).Error; err != nil {
			return err
		}

		result := tx.Delete(&Order{}, orderID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errOrderNotFound
		}
		return nil
	})
}

func formatAddress(streetNo, houseNo *int, block, society, city, country *string) string {
	var parts []string
	if houseNo != nil && *houseNo != 0 {
		parts = append(parts, fmt.Sprintf("House %d", *houseNo))
	}
	if streetNo != nil && *streetNo != 0 {
		parts = append(parts, fmt.Sprintf("Street %d", *streetNo))
	}
	for _, s := range []*string{block, society, city, country} {
		if s != nil && *s != "" {
			parts = append(parts, *s)
		}
	}
	return strings.Join(parts, ", ")
}
