package inventory

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mserebryaakov/aggregator-storefront/internal/catalog"
	"github.com/mserebryaakov/aggregator-storefront/pkg/apperror"
	"github.com/mserebryaakov/aggregator-storefront/pkg/auth"
	"github.com/mserebryaakov/aggregator-storefront/pkg/httpserver"
	"github.com/sirupsen/logrus"
	"github.com/tealeg/xlsx"
)

type inventoryHandler struct {
	log              *logrus.Entry
	inventoryService InventoryService
}

func NewHandler(inventoryService InventoryService, log *logrus.Entry) *inventoryHandler {
	return &inventoryHandler{
		log:              log,
		inventoryService: inventoryService,
	}
}

func (h *inventoryHandler) Register(admin *gin.RouterGroup) {
	admin.POST("/products/:productId/stock", h.addStock)
	admin.GET("/inventory", h.list)
	admin.GET("/inventory/export", h.export)
}

func (h *inventoryHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		err = apperror.NotFound(err.Error())
	case errors.Is(err, errInvalidQuantity):
		err = apperror.Validation(err.Error())
	}
	apperror.Respond(c, h.log, err)
}

type stockRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

func (h *inventoryHandler) addStock(c *gin.Context) {
	productID, err := httpserver.ParamID(c, "productId")
	if err != nil {
		h.fail(c, err)
		return
	}

	var req stockRequest
	if err := httpserver.BindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	var adminID *uint
	if id, _, ok := auth.Current(c); ok {
		adminID = &id
	}

	stock, err := h.inventoryService.AddStock(c.Request.Context(), productID, req.Quantity, adminID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "Stock added successfully",
		"stockQuantity": stock,
	})
}

func (h *inventoryHandler) list(c *gin.Context) {
	entries, err := h.inventoryService.List(c.Request.Context())
	if err != nil {
		h.fail(c, apperror.Wrap(err, "Failed to fetch inventory"))
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *inventoryHandler) export(c *gin.Context) {
	entries, err := h.inventoryService.List(c.Request.Context())
	if err != nil {
		h.fail(c, apperror.Wrap(err, "Failed to fetch inventory"))
		return
	}

	file, err := Workbook(entries)
	if err != nil {
		h.fail(c, apperror.Internal("Failed to create Excel sheet", err))
		return
	}

	c.Header("Content-Disposition", "attachment; filename=inventory.xlsx")
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := file.Write(c.Writer); err != nil {
		h.log.Errorf("failed to write inventory workbook: %v", err)
	}
}

func Workbook(entries []Entry) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Inventory")
	if err != nil {
		return nil, err
	}

	header := sheet.AddRow()
	for _, title := range []string{"ID", "Product", "Added", "Removed", "Order", "Note", "CreatedAt"} {
		header.AddCell().SetValue(title)
	}

	for _, e := range entries {
		row := sheet.AddRow()
		row.AddCell().SetValue(e.ID)
		row.AddCell().SetValue(e.ProductName)
		row.AddCell().SetValue(e.StockAdded)
		row.AddCell().SetValue(e.StockRemoved)
		if e.OrderID != nil {
			row.AddCell().SetValue(*e.OrderID)
		} else {
			row.AddCell().SetValue("")
		}
		row.AddCell().SetValue(e.Note)
		row.AddCell().SetValue(e.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	return file, nil
}
