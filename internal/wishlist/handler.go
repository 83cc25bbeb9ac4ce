package wishlist

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

type wishlistHandler struct {
	log             *logrus.Entry
	wishlistService WishlistService
}

func NewHandler(wishlistService WishlistService, log *logrus.Entry) *wishlistHandler {
	return &wishlistHandler{
		log:             log,
		wishlistService: wishlistService,
	}
}

func (h *wishlistHandler) Register(user *gin.RouterGroup) {
	user.GET("/wishlist/:userId", h.list)
	user.POST("/wishlist/add", h.add)
	user.GET("/wishlist/user/:userId/product/:productId", h.contains)
	user.DELETE("/wishlist/user/:userId/product/:productId", h.remove)
}

func (h *wishlistHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound), errors.Is(err, errItemNotFound):
		err = apperror.NotFound(err.Error())
	}
	apperror.Respond(c, h.log, err)
}

func (h *wishlistHandler) list(c *gin.Context) {
	userID, err := httpserver.ParamID(c, "userId")
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := auth.EnsureSelf(c, userID); err != nil {
		h.fail(c, err)
		return
	}

	entries, err := h.wishlistService.List(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, apperror.Wrap(err, "Failed to fetch wishlist"))
		return
	}
	c.JSON(http.StatusOK, entries)
}

type addRequest struct {
	UserID    uint `json:"userId" binding:"required"`
	ProductID uint `json:"productId" binding:"required"`
}

func (h *wishlistHandler) add(c *gin.Context) {
	var req addRequest
	if err := httpserver.BindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	if err := auth.EnsureSelf(c, req.UserID); err != nil {
		h.fail(c, err)
		return
	}

	if err := h.wishlistService.Add(c.Request.Context(), req.UserID, req.ProductID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Added to wishlist"})
}

// pathIDs reads and authorizes the user/product pair shared by two routes.
func (h *wishlistHandler) pathIDs(c *gin.Context) (uint, uint, bool) {
	userID, err := httpserver.ParamID(c, "userId")
	if err != nil {
		h.fail(c, err)
		return 0, 0, false
	}
	productID, err := httpserver.ParamID(c, "productId")
	if err != nil {
		h.fail(c, err)
		return 0, 0, false
	}
	if err := auth.EnsureSelf(c, userID); err != nil {
		h.fail(c, err)
		return 0, 0, false
	}
	return userID, productID, true
}

func (h *wishlistHandler) contains(c *gin.Context) {
	userID, productID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	in, err := h.wishlistService.Contains(c.Request.Context(), userID, productID)
	if err != nil {
		h.fail(c, apperror.Wrap(err, "Failed to check wishlist"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"inWishlist": in})
}

func (h *wishlistHandler) remove(c *gin.Context) {
	userID, productID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	if err := h.wishlistService.Remove(c.Request.Context(), userID, productID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Removed from wishlist"})
}
