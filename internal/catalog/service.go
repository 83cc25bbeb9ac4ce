package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type CatalogService interface {
	ListProducts(ctx context.Context) ([]View, error)
	GetProduct(ctx context.Context, productID uint) (*View, error)
	ListForExport(ctx context.Context) ([]Product, error)
	CreateProduct(ctx context.Context, np NewProduct) (*Product, error)
	AddDiscount(ctx context.Context, productID uint, nd NewDiscount) (*Discount, error)
	DeleteProduct(ctx context.Context, productID uint) error
}

type catalogService struct {
	storage Storage
	logger  *logrus.Entry
	now     func() time.Time
}

func NewService(storage Storage, log *logrus.Entry) CatalogService {
	return &catalogService{
		storage: storage,
		logger:  log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *catalogService) ListProducts(ctx context.Context) ([]View, error) {
	products, err := s.storage.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	counts, err := s.storage.ReviewCounts(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	views := make([]View, 0, len(products))
	for _, p := range products {
		views = append(views, toView(p, counts[p.ID], now))
	}
	return views, nil
}

func (s *catalogService) GetProduct(ctx context.Context, productID uint) (*View, error) {
	product, err := s.storage.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	counts, err := s.storage.ReviewCounts(ctx)
	if err != nil {
		return nil, err
	}

	view := toView(*product, counts[product.ID], s.now())
	return &view, nil
}

func (s *catalogService) ListForExport(ctx context.Context) ([]Product, error) {
	return s.storage.ListProducts(ctx)
}

func (s *catalogService) CreateProduct(ctx context.Context, np NewProduct) (*Product, error) {
	np.Name = strings.TrimSpace(np.Name)
	np.Category = strings.TrimSpace(np.Category)

	if np.Name == "" {
		return nil, errEmptyProductName
	}
	if !np.Price.IsPositive() {
		return nil, errInvalidPrice
	}
	if np.StockQuantity < 0 {
		return nil, errInvalidStock
	}
	if np.Discount != nil {
		if !validDiscount(np.Price, *np.Discount) {
			return nil, errInvalidDiscount
		}
		nd := *np.Discount
		nd.StartsAt, nd.EndsAt = nd.StartsAt.UTC(), nd.EndsAt.UTC()
		np.Discount = &nd
	}

	product, err := s.storage.CreateProduct(ctx, np)
	if err != nil {
		return nil, err
	}

	s.logger.WithField("product_id", product.ID).Infof("product %q created", product.Name)
	return product, nil
}

func (s *catalogService) AddDiscount(ctx context.Context, productID uint, nd NewDiscount) (*Discount, error) {
	product, err := s.storage.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !validDiscount(product.Price, nd) {
		return nil, errInvalidDiscount
	}

	discount := &Discount{
		ProductID: productID,
		Price:     nd.Price,
		StartsAt:  nd.StartsAt.UTC(),
		EndsAt:    nd.EndsAt.UTC(),
	}
	if err := s.storage.AddDiscount(ctx, discount); err != nil {
		return nil, err
	}
	return discount, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, productID uint) error {
	if err := s.storage.DeleteProduct(ctx, productID); err != nil {
		return err
	}
	s.logger.WithField("product_id", productID).Info("product deleted")
	return nil
}

func validDiscount(list decimal.Decimal, nd NewDiscount) bool {
	return nd.EndsAt.After(nd.StartsAt) && nd.Price.IsPositive() && nd.Price.LessThan(list)
}

func toView(p Product, reviews int64, now time.Time) View {
	v := View{
		ProductID:     p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		Link:          p.Link,
		DiscountPrice: decimal.Zero,
		ReviewCount:   reviews,
		CreatedAt:     p.CreatedAt,
	}
	if p.Category != nil {
		v.Category = p.Category.Name
	}
	if p.Stats != nil {
		v.PiecesSold = p.Stats.PiecesSold
		v.Rating = p.Stats.Rating
	}
	if d := ActiveDiscount(p.Discounts, now); d != nil {
		v.DiscountPrice = d.Price
		start, end := d.StartsAt, d.EndsAt
		v.DiscountStart = &start
		v.DiscountEnd = &end
	}
	return v
}
