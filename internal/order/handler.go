package order

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mserebryaakov/aggregator-storefront/internal/cart"
	"github.com/mserebryaakov/aggregator-storefront/pkg/apperror"
	"github.com/mserebryaakov/aggregator-storefront/pkg/auth"
	"github.com/mserebryaakov/aggregator-storefront/pkg/httpserver"
	"github.com/sirupsen/logrus"
)

type orderHandler struct {
	log          *logrus.Entry
	orderService OrderService
}

func NewHandler(orderService OrderService, log *logrus.Entry) *orderHandler {
	return &orderHandler{
		log:          log,
		orderService: orderService,
	}
}

func (h *orderHandler) Register(user, admin *gin.RouterGroup) {
	user.POST("/checkout", h.checkout)
	user.GET("/orders/user/:userId", h.history)
	user.GET("/orders/user/:userId/product/:productId", h.purchaseHistory)

	admin.GET("/orders", h.list)
	admin.PUT("/orders/:orderId/status", h.updateStatus)
	admin.PUT("/orders/:orderId/cancel", h.cancel)
	admin.DELETE("/orders/:orderId", h.delete)
}

func (h *orderHandler) fail(c *gin.Context, err error) {
	var shortage *StockShortageError
	switch {
	case errors.As(err, &shortage):
		err = apperror.Business(shortage.Error()).With("items", shortage.Items)
	case errors.Is(err, errMissingUser), errors.Is(err, errNoItemsSelected),
		errors.Is(err, errInvalidPaymentMethod), errors.Is(err, errInvalidStatus):
		err = apperror.Validation(err.Error())
	case errors.Is(err, cart.ErrItemsMismatch):
		err = apperror.Business(err.Error())
	case errors.Is(err, errVoucherConflict), errors.Is(err, errOrderCancelled):
		err = apperror.Conflict(err.Error())
	case errors.Is(err, errOrderNotFound):
		err = apperror.NotFound(err.Error())
	}
	apperror.Respond(c, h.log, err)
}

type checkoutRequest struct {
	UserID        uint   `json:"userId"`
	CartItemIDs   []uint `json:"cartItemIds"`
	VoucherID     *uint  `json:"voucherId"`
	UserVoucherID *uint  `json:"userVoucherId"`
	PaymentMethod string `json:"paymentMethod"`
}

func (h *orderHandler) checkout(c *gin.Context) {
	var req checkoutRequest
	if err := httpserver.BindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	if req.UserID != 0 {
		if err := auth.EnsureSelf(c, req.UserID); err != nil {
			h.fail(c, err)
			return
		}
	}

	receipt, err := h.orderService.Checkout(c.Request.Context(), CheckoutRequest{
		UserID:        req.UserID,
		CartItemIDs:   req.CartItemIDs,
		VoucherID:     req.VoucherID,
		UserVoucherID: req.UserVoucherID,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}

func (h *orderHandler) history(c *gin.Context) {
	userID, err := httpserver.ParamID(c, "userId")
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := auth.EnsureSelf(c, userID); err != nil {
		h.fail(c, err)
		return
	}

	orders, err := h.orderService.History(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, apperror.Wrap(err, "Failed to fetch orders"))
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *orderHandler) purchaseHistory(c *gin.Context) {
	userID, err := httpserver.ParamID(c, "userId")
	if err != nil {
		h.fail(c, err)
		return
	}
	productID, err := httpserver.ParamID(c, "productId")
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := auth.EnsureSelf(c, userID); err != nil {
		h.fail(c, err)
		return
	}

	history, err := h.orderService.PurchaseHistory(c.Request.Context(), userID, productID)
	if err != nil {
		h.fail(c, apperror.Wrap(err, "Failed to check purchase history"))
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *orderHandler) list(c *gin.Context) {
	orders, err := h.orderService.List(c.Request.Context())
	if err != nil {
		h.fail(c, apperror.Wrap(err, "Failed to fetch orders"))
		return
	}
	c.JSON(http.StatusOK, orders)
}

type statusRequest struct {
	Status Status `json:"status" binding:"required"`
}

func (h *orderHandler) updateStatus(c *gin.Context) {
	orderID, err := httpserver.ParamID(c, "orderId")
	if err != nil {
		h.fail(c, err)
		return
	}
	var req statusRequest
	if err := httpserver.BindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	if err := h.orderService.UpdateStatus(c.Request.Context(), orderID, req.Status, adminID(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order status updated"})
}

func (h *orderHandler) cancel(c *gin.Context) {
	orderID, err := httpserver.ParamID(c, "orderId")
	if err != nil {
		h.fail(c, err)
		return
	}

	if err := h.orderService.Cancel(c.Request.Context(), orderID, adminID(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order cancelled"})
}

func (h *orderHandler) delete(c *gin.Context) {
	orderID, err := httpserver.ParamID(c, "orderId")
	if err != nil {
		h.fail(c, err)
		return
	}

	if err := h.orderService.Delete(c.Request.Context(), orderID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order deleted successfully"})
}

func adminID(c *gin.Context) *uint {
	id, _, ok := auth.Current(c)
	if !ok {
		return nil
	}
	return &id
}
