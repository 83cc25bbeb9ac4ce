package catalog

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mserebryaakov/aggregator-storefront/pkg/apperror"
	"github.com/mserebryaakov/aggregator-storefront/pkg/auth"
	"github.com/mserebryaakov/aggregator-storefront/pkg/httpserver"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/tealeg/xlsx"
)

type catalogHandler struct {
	log            *logrus.Entry
	catalogService CatalogService
}

func NewHandler(catalogService CatalogService, log *logrus.Entry) *catalogHandler {
	return &catalogHandler{
		log:            log,
		catalogService: catalogService,
	}
}

func (h *catalogHandler) Register(public, admin *gin.RouterGroup) {
	public.GET("/products", h.listProducts)
	public.GET("/products/:productId", h.getProduct)

	admin.GET("/products/export", h.exportProducts)
	admin.POST("/products", h.createProduct)
	admin.POST("/products/:productId/discounts", h.addDiscount)
	admin.DELETE("/products/:productId", h.deleteProduct)
}

func (h *catalogHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrProductNotFound):
		err = apperror.NotFound(err.Error())
	case errors.Is(err, errInvalidDiscount),
		errors.Is(err, errInvalidPrice),
		errors.Is(err, errInvalidStock),
		errors.Is(err, errEmptyProductName):
		err = apperror.Validation(err.Error())
	}
	apperror.Respond(c, h.log, err)
}

func (h *catalogHandler) listProducts(c *gin.Context) {
	products, err := h.catalogService.ListProducts(c.Request.Context())
	if err != nil {
		h.fail(c, apperror.Wrap(err, "Failed to fetch products"))
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *catalogHandler) getProduct(c *gin.Context) {
	productID, err := httpserver.ParamID(c, "productId")
	if err != nil {
		h.fail(c, err)
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), productID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

type discountRequest struct {
	DiscountPrice decimal.Decimal `json:"discountPrice"`
	DiscountStart time.Time       `json:"discountStart"`
	DiscountEnd   time.Time       `json:"discountEnd"`
}

type createProductRequest struct {
	Name          string           `json:"productName" binding:"required"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	StockQuantity int              `json:"stockQuantity"`
	Link          string           `json:"productLink"`
	Category      string           `json:"category"`
	Discount      *discountRequest `json:"discount"`
}

func (h *catalogHandler) createProduct(c *gin.Context) {
	var req createProductRequest
	if err := httpserver.BindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	np := NewProduct{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		Link:          req.Link,
		Category:      req.Category,
	}
	if adminID, _, ok := auth.Current(c); ok {
		np.AdminID = &adminID
	}
	if req.Discount != nil {
		np.Discount = &NewDiscount{
			Price:    req.Discount.DiscountPrice,
			StartsAt: req.Discount.DiscountStart,
			EndsAt:   req.Discount.DiscountEnd,
		}
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), np)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"message":   "Product added successfully",
		"productId": product.ID,
	})
}

func (h *catalogHandler) addDiscount(c *gin.Context) {
	productID, err := httpserver.ParamID(c, "productId")
	if err != nil {
		h.fail(c, err)
		return
	}

	var req discountRequest
	if err := httpserver.BindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	discount, err := h.catalogService.AddDiscount(c.Request.Context(), productID, NewDiscount{
		Price:    req.DiscountPrice,
		StartsAt: req.DiscountStart,
		EndsAt:   req.DiscountEnd,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, discount)
}

func (h *catalogHandler) deleteProduct(c *gin.Context) {
	productID, err := httpserver.ParamID(c, "productId")
	if err != nil {
		h.fail(c, err)
		return
	}

	if err := h.catalogService.DeleteProduct(c.Request.Context(), productID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product deleted successfully"})
}

func (h *catalogHandler) exportProducts(c *gin.Context) {
	products, err := h.catalogService.ListForExport(c.Request.Context())
	if err != nil {
		h.fail(c, apperror.Wrap(err, "Failed to fetch products"))
		return
	}

	file, err := ProductsWorkbook(products)
	if err != nil {
		h.fail(c, apperror.Internal("Failed to create Excel sheet", err))
		return
	}

	c.Header("Content-Disposition", "attachment; filename=products.xlsx")
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := file.Write(c.Writer); err != nil {
		h.log.Errorf("failed to write products workbook: %v", err)
	}
}

// ProductsWorkbook lays out one row per product under a header row.
func ProductsWorkbook(products []Product) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return nil, err
	}

	header := sheet.AddRow()
	for _, title := range []string{"ID", "Name", "Category", "Price", "Stock", "PiecesSold", "Rating", "Link", "CreatedAt"} {
		header.AddCell().SetValue(title)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID)
		row.AddCell().SetValue(p.Name)

		category := ""
		if p.Category != nil {
			category = p.Category.Name
		}
		row.AddCell().SetValue(category)
		row.AddCell().SetValue(p.Price.StringFixed(2))
		row.AddCell().SetValue(p.StockQuantity)

		sold, rating := 0, 0.0
		if p.Stats != nil {
			sold, rating = p.Stats.PiecesSold, p.Stats.Rating
		}
		row.AddCell().SetValue(sold)
		row.AddCell().SetValue(rating)
		row.AddCell().SetValue(p.Link)
		row.AddCell().SetValue(p.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	return file, nil
}
