package review

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mserebryaakov/aggregator-storefront/internal/catalog"
	"github.com/mserebryaakov/aggregator-storefront/pkg/apperror"
	"github.com/mserebryaakov/aggregator-storefront/pkg/auth"
	"github.com/mserebryaakov/aggregator-storefront/pkg/httpserver"
	"github.com/sirupsen/logrus"
)

type reviewHandler struct {
	log           *logrus.Entry
	reviewService ReviewService
}

func NewHandler(reviewService ReviewService, log *logrus.Entry) *reviewHandler {
	return &reviewHandler{
		log:           log,
		reviewService: reviewService,
	}
}

func (h *reviewHandler) Register(public, user, admin *gin.RouterGroup) {
	public.GET("/reviews/product/:productId", h.forProduct)

	user.GET("/reviews/user/:userId", h.forUser)
	user.POST("/reviews/add", h.submit)
	user.DELETE("/reviews/:reviewId", h.delete)

	admin.GET("/reviews", h.all)
}

func (h *reviewHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errReviewNotFound), errors.Is(err, catalog.ErrProductNotFound):
		err = apperror.NotFound(err.Error())
	case errors.Is(err, errInvalidRating), errors.Is(err, errMissingProduct):
		err = apperror.Validation(err.Error())
	case errors.Is(err, errNotAuthor):
		err = apperror.Forbidden(err.Error())
	}
	apperror.Respond(c, h.log, err)
}

func (h *reviewHandler) forProduct(c *gin.Context) {
	productID, err := httpserver.ParamID(c, "productId")
	if err != nil {
		h.fail(c, err)
		return
	}

	entries, err := h.reviewService.ForProduct(c.Request.Context(), productID)
	if err != nil {
		h.fail(c, apperror.Wrap(err, "Failed to fetch reviews"))
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *reviewHandler) forUser(c *gin.Context) {
	userID, err := httpserver.ParamID(c, "userId")
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := auth.EnsureSelf(c, userID); err != nil {
		h.fail(c, err)
		return
	}

	entries, err := h.reviewService.ForUser(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, apperror.Wrap(err, "Failed to fetch reviews"))
		return
	}
	c.JSON(http.StatusOK, entries)
}

type submitRequest struct {
	UserID     uint   `json:"userId" binding:"required"`
	ProductID  uint   `json:"productId"`
	Rating     int    `json:"rating"`
	ReviewText string `json:"reviewText"`
}

func (h *reviewHandler) submit(c *gin.Context) {
	var req submitRequest
	if err := httpserver.BindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	if err := auth.EnsureSelf(c, req.UserID); err != nil {
		h.fail(c, err)
		return
	}

	r, summary, err := h.reviewService.Submit(c.Request.Context(), req.UserID, req.ProductID, req.Rating, req.ReviewText)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"reviewId":    r.ID,
		"rating":      summary.Rating,
		"reviewCount": summary.Reviews,
	})
}

func (h *reviewHandler) delete(c *gin.Context) {
	reviewID, err := httpserver.ParamID(c, "reviewId")
	if err != nil {
		h.fail(c, err)
		return
	}
	uid, role, _ := auth.Current(c)

	summary, err := h.reviewService.Delete(c.Request.Context(), reviewID, uid, role == auth.RoleAdmin)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "rating": summary.Rating, "reviewCount": summary.Reviews})
}

func (h *reviewHandler) all(c *gin.Context) {
	entries, err := h.reviewService.All(c.Request.Context())
	if err != nil {
		h.fail(c, apperror.Wrap(err, "Failed to fetch reviews"))
		return
	}
	c.JSON(http.StatusOK, entries)
}
