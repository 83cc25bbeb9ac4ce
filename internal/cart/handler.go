package cart

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

type cartHandler struct {
	log         *logrus.Entry
	cartService CartService
}

func NewHandler(cartService CartService, log *logrus.Entry) *cartHandler {
	return &cartHandler{
		log:         log,
		cartService: cartService,
	}
}

func (h *cartHandler) Register(user *gin.RouterGroup) {
	user.GET("/cart/:userId", h.getCart)
	user.POST("/cart/add", h.addToCart)
	user.PUT("/cart/:cartItemId", h.updateQuantity)
	user.DELETE("/cart/:cartItemId", h.removeItem)
}

func (h *cartHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound), errors.Is(err, errCartItemNotFound):
		err = apperror.NotFound(err.Error())
	case errors.Is(err, errInvalidQuantity), errors.Is(err, errNegativeQuantity):
		err = apperror.Validation(err.Error())
	}
	apperror.Respond(c, h.log, err)
}

func (h *cartHandler) getCart(c *gin.Context) {
	userID, err := httpserver.ParamID(c, "userId")
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := auth.EnsureSelf(c, userID); err != nil {
		h.fail(c, err)
		return
	}

	lines, err := h.cartService.Snapshot(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, apperror.Wrap(err, "Failed to fetch cart"))
		return
	}
	c.JSON(http.StatusOK, lines)
}

type addRequest struct {
	UserID    uint  `json:"userId" binding:"required"`
	ProductID uint  `json:"productId" binding:"required"`
	Quantity  *int  `json:"quantity"`
	VoucherID *uint `json:"voucherId"`
}

func (h *cartHandler) addToCart(c *gin.Context) {
	var req addRequest
	if err := httpserver.BindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	if err := auth.EnsureSelf(c, req.UserID); err != nil {
		h.fail(c, err)
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	item, err := h.cartService.Add(c.Request.Context(), req.UserID, req.ProductID, quantity, req.VoucherID)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Product added to cart",
		"cartItemId": item.ID,
		"quantity":   item.Quantity,
	})
}

type quantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (h *cartHandler) updateQuantity(c *gin.Context) {
	cartItemID, err := httpserver.ParamID(c, "cartItemId")
	if err != nil {
		h.fail(c, err)
		return
	}

	var req quantityRequest
	if err := httpserver.BindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	userID, _, _ := auth.Current(c)
	if err := h.cartService.UpdateQuantity(c.Request.Context(), userID, cartItemID, *req.Quantity); err != nil {
		h.fail(c, err)
		return
	}

	if *req.Quantity == 0 {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Item removed from cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Cart updated"})
}

func (h *cartHandler) removeItem(c *gin.Context) {
	cartItemID, err := httpserver.ParamID(c, "cartItemId")
	if err != nil {
		h.fail(c, err)
		return
	}

	userID, _, _ := auth.Current(c)
	if err := h.cartService.Remove(c.Request.Context(), userID, cartItemID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Item removed from cart"})
}
