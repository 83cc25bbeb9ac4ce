package voucher

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mserebryaakov/aggregator-storefront/internal/cart"
	"github.com/mserebryaakov/aggregator-storefront/pkg/apperror"
	"github.com/mserebryaakov/aggregator-storefront/pkg/auth"
	"github.com/mserebryaakov/aggregator-storefront/pkg/httpserver"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type voucherHandler struct {
	log            *logrus.Entry
	voucherService VoucherService
}

func NewHandler(voucherService VoucherService, log *logrus.Entry) *voucherHandler {
	return &voucherHandler{
		log:            log,
		voucherService: voucherService,
	}
}

func (h *voucherHandler) Register(user, admin *gin.RouterGroup) {
	user.GET("/vouchers/:userId", h.eligible)
	user.POST("/vouchers/use", h.use)
	user.POST("/apply-voucher", h.preview)

	admin.GET("/vouchers", h.list)
	admin.POST("/vouchers", h.create)
	admin.POST("/vouchers/seed", h.seed)
	admin.DELETE("/vouchers/:voucherId", h.delete)
}

func (h *voucherHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrVoucherNotFound), errors.Is(err, ErrClaimNotFound):
		err = apperror.NotFound(err.Error())
	case errors.Is(err, ErrClaimUsed), errors.Is(err, errDuplicateCode):
		err = apperror.Conflict(err.Error())
	case errors.Is(err, ErrMinimumNotMet), errors.Is(err, cart.ErrItemsMismatch):
		err = apperror.Business(err.Error())
	case errors.Is(err, errInvalidValue), errors.Is(err, errInvalidKind),
		errors.Is(err, errPercentRange), errors.Is(err, errEmptyCode),
		errors.Is(err, errNoCartItems):
		err = apperror.Validation(err.Error())
	}
	apperror.Respond(c, h.log, err)
}

func (h *voucherHandler) eligible(c *gin.Context) {
	userID, err := httpserver.ParamID(c, "userId")
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := auth.EnsureSelf(c, userID); err != nil {
		h.fail(c, err)
		return
	}

	offers, err := h.voucherService.Eligible(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, apperror.Wrap(err, "Failed to fetch vouchers"))
		return
	}
	c.JSON(http.StatusOK, offers)
}

type useRequest struct {
	UserID        uint `json:"userId" binding:"required"`
	VoucherID     uint `json:"voucherId" binding:"required"`
	UserVoucherID uint `json:"userVoucherId" binding:"required"`
}

func (h *voucherHandler) use(c *gin.Context) {
	var req useRequest
	if err := httpserver.BindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	if err := auth.EnsureSelf(c, req.UserID); err != nil {
		h.fail(c, err)
		return
	}

	if err := h.voucherService.Use(c.Request.Context(), req.UserID, req.VoucherID, req.UserVoucherID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type previewRequest struct {
	UserID      uint   `json:"userId" binding:"required"`
	VoucherID   uint   `json:"voucherId" binding:"required"`
	CartItemIDs []uint `json:"cartItemIds"`
}

func (h *voucherHandler) preview(c *gin.Context) {
	var req previewRequest
	if err := httpserver.BindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	if err := auth.EnsureSelf(c, req.UserID); err != nil {
		h.fail(c, err)
		return
	}

	preview, err := h.voucherService.Preview(c.Request.Context(), req.UserID, req.VoucherID, req.CartItemIDs)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"voucherId":      preview.VoucherID,
		"voucherCode":    preview.VoucherCode,
		"userVoucherId":  preview.UserVoucherID,
		"originalAmount": preview.OriginalAmount,
		"discountAmount": preview.DiscountAmount,
		"finalAmount":    preview.FinalAmount,
		"isPercentage":   preview.IsPercentage,
		"discountValue":  preview.DiscountValue,
	})
}

func (h *voucherHandler) list(c *gin.Context) {
	usage, err := h.voucherService.List(c.Request.Context())
	if err != nil {
		h.fail(c, apperror.Wrap(err, "Failed to fetch vouchers"))
		return
	}
	c.JSON(http.StatusOK, usage)
}

type createRequest struct {
	Code           string           `json:"code" binding:"required"`
	DiscountType   Kind             `json:"discountType"`
	DiscountAmount decimal.Decimal  `json:"discountAmount"`
	MaxDiscount    *decimal.Decimal `json:"maxDiscount"`
	MinOrderValue  decimal.Decimal  `json:"minOrderValue"`
	ExpiryDate     *time.Time       `json:"expiryDate"`
	UsageLimit     int              `json:"usageLimit"`
}

func (h *voucherHandler) create(c *gin.Context) {
	var req createRequest
	if err := httpserver.BindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	nv := NewVoucher{
		Code:          req.Code,
		Kind:          req.DiscountType,
		Value:         req.DiscountAmount,
		MaxDiscount:   req.MaxDiscount,
		MinOrderValue: req.MinOrderValue,
		ExpiresAt:     req.ExpiryDate,
		UsageLimit:    req.UsageLimit,
	}
	if adminID, _, ok := auth.Current(c); ok {
		nv.AdminID = &adminID
	}

	v, err := h.voucherService.Create(c.Request.Context(), nv)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "voucherId": v.ID, "discountType": v.Kind})
}

func (h *voucherHandler) seed(c *gin.Context) {
	v, err := h.voucherService.Seed(c.Request.Context())
	if err != nil {
		h.fail(c, apperror.Wrap(err, "Failed to seed vouchers"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "voucherId": v.ID, "code": v.Code})
}

func (h *voucherHandler) delete(c *gin.Context) {
	voucherID, err := httpserver.ParamID(c, "voucherId")
	if err != nil {
		h.fail(c, err)
		return
	}

	if err := h.voucherService.Delete(c.Request.Context(), voucherID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Voucher deleted successfully"})
}
