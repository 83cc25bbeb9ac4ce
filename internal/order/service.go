package order

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mserebryaakov/aggregator-storefront/internal/cart"
	"github.com/mserebryaakov/aggregator-storefront/internal/voucher"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type CartReader interface {
	SelectedLines(ctx context.Context, userID uint, cartItemIDs []uint) ([]cart.Line, error)
}

// VoucherReader is the read side of vouchers that checkout needs.
type VoucherReader interface {
	GetVoucher(ctx context.Context, voucherID uint) (*voucher.Voucher, error)
	GetClaim(ctx context.Context, claimID uint) (*voucher.Claim, error)
	FindClaim(ctx context.Context, userID, voucherID uint) (*voucher.Claim, error)
}

type OrderService interface {
	Checkout(ctx context.Context, req CheckoutRequest) (*Receipt, error)
	History(ctx context.Context, userID uint) ([]View, error)
	PurchaseHistory(ctx context.Context, userID, productID uint) (*PurchaseHistory, error)

	List(ctx context.Context) ([]View, error)
	UpdateStatus(ctx context.Context, orderID uint, status Status, adminID *uint) error
	Cancel(ctx context.Context, orderID uint, adminID *uint) error
	Delete(ctx context.Context, orderID uint) error
}

type orderService struct {
	storage       Storage
	carts         CartReader
	vouchers      VoucherReader
	percentageCap decimal.Decimal
	logger        *logrus.Entry
	now           func() time.Time
}

func NewService(storage Storage, carts CartReader, vouchers VoucherReader, percentageCap decimal.Decimal, log *logrus.Entry) OrderService {
	return &orderService{
		storage:       storage,
		carts:         carts,
		vouchers:      vouchers,
		percentageCap: percentageCap,
		logger:        log,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Checkout runs to completion once started. ctx carries request values only,
// its cancellation is ignored.
func (s *orderService) Checkout(ctx context.Context, req CheckoutRequest) (*Receipt, error) {
	ctx = context.WithoutCancel(ctx)
	if req.UserID == 0 {
		return nil, errMissingUser
	}

	if len(req.CartItemIDs) == 0 {
		return nil, errNoItemsSelected
	}

	method := strings.ToLower(strings.TrimSpace(req.PaymentMethod))
	switch method {
	case "":
		method = MethodCOD
	case MethodCOD, MethodCard:
	default:
		return nil, errInvalidPaymentMethod
	}

	lines, err := s.carts.SelectedLines(ctx, req.UserID, req.CartItemIDs)
	if err != nil {
		return nil, err
	}
	if short := Shortages(lines); len(short) > 0 {
		return nil, &StockShortageError{Items: short}
	}

	now := s.now()
	var (
		v       *voucher.Voucher
		claimID *uint
	)
	if req.VoucherID != nil {
		v, claimID, err = s.resolveVoucher(ctx, req, now)
		if err != nil {
			return nil, err
		}
	}

	quote := PriceLines(lines, v, s.percentageCap, now)
	if quote.Voucher == nil {
		claimID = nil
	}

	paymentStatus := PaymentCompleted
	if method == MethodCOD {
		paymentStatus = PaymentPending
	}

	order, err := s.storage.PlaceOrder(ctx, Placement{
		UserID:        req.UserID,
		Reference:     uuid.NewString(),
		Lines:         lines,
		Quote:         quote,
		PaymentMethod: method,
		PaymentStatus: paymentStatus,
		ClaimID:       claimID,
		At:            now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infof("order %d (%s) placed by user %d: total %s", order.ID, order.Reference, req.UserID, quote.Total)

	receipt := &Receipt{
		Success:             true,
		OrderID:             order.ID,
		Reference:           order.Reference,
		TotalBeforeDiscount: quote.Subtotal,
		Discount:            quote.Discount,
		FinalTotal:          quote.Total,
		PaymentMethod:       method,
		PaymentStatus:       paymentStatus,
	}
	if quote.Voucher != nil {
		receipt.VoucherApplied = &AppliedVoucher{
			VoucherID:      quote.Voucher.ID,
			Code:           quote.Voucher.Code,
			DiscountAmount: quote.Discount,
			UserVoucherID:  claimID,
		}
	}
	return receipt, nil
}

// resolveVoucher returns the voucher to price with and the unused claim to
// consume. A voucher the user cannot consume comes back nil, which prices
// the order without a discount.
func (s *orderService) resolveVoucher(ctx context.Context, req CheckoutRequest, now time.Time) (*voucher.Voucher, *uint, error) {
	v, err := s.vouchers.GetVoucher(ctx, *req.VoucherID)
	if errors.Is(err, voucher.ErrVoucherNotFound) {
		s.logger.Infof("checkout for user %d: voucher %d not found", req.UserID, *req.VoucherID)
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	if !v.Usable(now) {
		return nil, nil, nil
	}

	if req.UserVoucherID != nil {
		claim, err := s.vouchers.GetClaim(ctx, *req.UserVoucherID)
		if errors.Is(err, voucher.ErrClaimNotFound) {
			return nil, nil, nil
		}
		if err != nil {
			return nil, nil, err
		}
		if claim.UserID != req.UserID || claim.VoucherID != v.ID || claim.Used {
			s.logger.Infof("checkout for user %d: claim %d cannot be used", req.UserID, claim.ID)
			return nil, nil, nil
		}
		return v, &claim.ID, nil
	}

	claim, err := s.vouchers.FindClaim(ctx, req.UserID, v.ID)
	switch {
	case errors.Is(err, voucher.ErrClaimNotFound):
		return v, nil, nil
	case err != nil:
		return nil, nil, err
	case claim.Used:
		return nil, nil, nil
	}
	return v, &claim.ID, nil
}

func (s *orderService) History(ctx context.Context, userID uint) ([]View, error) {
	orders, err := s.storage.OrdersByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, orders)
}

func (s *orderService) PurchaseHistory(ctx context.Context, userID, productID uint) (*PurchaseHistory, error) {
	count, err := s.storage.PurchaseCount(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	return &PurchaseHistory{HasPurchased: count > 0, PurchaseCount: count}, nil
}

func (s *orderService) List(ctx context.Context) ([]View, error) {
	orders, err := s.storage.AllOrders(ctx)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, orders)
}

// UpdateStatus moves an order between statuses. Cancelling through it takes
// the same path as Cancel so stock is returned.
func (s *orderService) UpdateStatus(ctx context.Context, orderID uint, status Status, adminID *uint) error {
	status = Status(strings.ToLower(string(status)))
	if !status.Valid() {
		return errInvalidStatus
	}
	if status == StatusCancelled {
		return s.Cancel(ctx, orderID, adminID)
	}
	return s.storage.UpdateStatus(context.WithoutCancel(ctx), orderID, status)
}

func (s *orderService) Cancel(ctx context.Context, orderID uint, adminID *uint) error {
	if err := s.storage.Cancel(context.WithoutCancel(ctx), orderID, adminID); err != nil {
		return err
	}
	s.logger.Infof("order %d cancelled, stock returned", orderID)
	return nil
}

func (s *orderService) Delete(ctx context.Context, orderID uint) error {
	return s.storage.DeleteOrder(context.WithoutCancel(ctx), orderID)
}

func (s *orderService) views(ctx context.Context, orders []Order) ([]View, error) {
	var productIDs, userIDs []uint
	for _, o := range orders {
		userIDs = append(userIDs, o.UserID)
		for _, item := range o.Items {
			if item.ProductID != nil {
				productIDs = append(productIDs, *item.ProductID)
			}
		}
	}

	links, err := s.storage.ProductLinks(ctx, cart.Unique(productIDs))
	if err != nil {
		return nil, err
	}
	customers, err := s.storage.Customers(ctx, cart.Unique(userIDs))
	if err != nil {
		return nil, err
	}

	views := make([]View, 0, len(orders))
	for _, o := range orders {
		views = append(views, toView(o, customers[o.UserID], links))
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].OrderDate.After(views[j].OrderDate)
	})
	return views, nil
}

func toView(o Order, customer Customer, links map[uint]string) View {
	view := View{
		OrderID:         o.ID,
		Reference:       o.Reference,
		UserID:          o.UserID,
		UserName:        customer.Name,
		UserEmail:       customer.Email,
		UserPhone:       customer.Phone,
		TotalPrice:      o.TotalPrice,
		Discount:        o.Discount,
		FinalTotal:      o.Total,
		OrderDate:       o.OrderDate,
		OrderStatus:     o.Status,
		ShippingAddress: customer.Address,
		Items:           make([]ItemView, 0, len(o.Items)),
	}
	if o.Payment != nil {
		view.PaymentMethod = o.Payment.Method
		view.PaymentStatus = o.Payment.Status
	}

	for _, item := range o.Items {
		iv := ItemView{
			OrderItemID: item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Subtotal:    item.Subtotal,
			UnitPrice:   item.UnitPrice(),
		}
		if item.ProductID != nil {
			iv.ProductLink = links[*item.ProductID]
		}
		view.Items = append(view.Items, iv)
	}
	return view
}
