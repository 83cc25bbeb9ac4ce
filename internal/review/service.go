package review

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type ReviewService interface {
	Submit(ctx context.Context, userID, productID uint, rating int, text string) (*Review, *Summary, error)
	Delete(ctx context.Context, reviewID, requester uint, admin bool) (*Summary, error)
	ForProduct(ctx context.Context, productID uint) ([]Entry, error)
	ForUser(ctx context.Context, userID uint) ([]Entry, error)
	All(ctx context.Context) ([]Entry, error)
}

type reviewService struct {
	storage Storage
	logger  *logrus.Entry
	now     func() time.Time
}

func NewService(storage Storage, log *logrus.Entry) ReviewService {
	return &reviewService{
		storage: storage,
		logger:  log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *reviewService) Submit(ctx context.Context, userID, productID uint, rating int, text string) (*Review, *Summary, error) {
	if productID == 0 {
		return nil, nil, errMissingProduct
	}
	if rating < 1 || rating > 5 {
		return nil, nil, errInvalidRating
	}

	now := s.now()
	r := &Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    rating,
		Text:      strings.TrimSpace(text),
		CreatedAt: now,
		UpdatedAt: now,
	}
	summary, err := s.storage.Upsert(ctx, r)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Infof("product %d rated %d by user %d, average now %.2f", productID, rating, userID, summary.Rating)
	return r, summary, nil
}

func (s *reviewService) Delete(ctx context.Context, reviewID, requester uint, admin bool) (*Summary, error) {
	r, err := s.storage.GetReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if !admin && r.UserID != requester {
		return nil, errNotAuthor
	}
	return s.storage.DeleteReview(ctx, reviewID)
}

func (s *reviewService) ForProduct(ctx context.Context, productID uint) ([]Entry, error) {
	return s.storage.ByProduct(ctx, productID)
}

func (s *reviewService) ForUser(ctx context.Context, userID uint) ([]Entry, error) {
	return s.storage.ByUser(ctx, userID)
}

func (s *reviewService) All(ctx context.Context) ([]Entry, error) {
	return s.storage.All(ctx)
}
