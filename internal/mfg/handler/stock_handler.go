package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/repository"
	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/service"
)

type StockHandler struct {
	svc *service.LedgerService
}

func NewStockHandler(svc *service.LedgerService) *StockHandler {
	return &StockHandler{svc: svc}
}

// RecordMovement 手工记账（盘点调整、期初录入等）
func (h *StockHandler) RecordMovement(c *gin.Context) {
	var req service.RecordMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	entry, err := h.svc.RecordMovement(c.Request.Context(), req, tenantID(c), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, entry)
}

func (h *StockHandler) CurrentStock(c *gin.Context) {
	itemID := c.Param("itemId")
	qty, err := h.svc.CurrentStock(c.Request.Context(), itemID, tenantID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"item_id": itemID, "current_stock": qty})
}

func (h *StockHandler) ListLedger(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	params := repository.LedgerListParams{
		CompanyID:   tenantID(c),
		ItemID:      c.Query("item_id"),
		VoucherType: c.Query("voucher_type"),
		ReferenceID: c.Query("reference_id"),
		Page:        page,
		Size:        size,
	}
	entries, total, err := h.svc.ListEntries(params)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"items": entries, "total": total, "page": page, "size": size})
}

// ExportLedger 台账Excel导出
func (h *StockHandler) ExportLedger(c *gin.Context) {
	params := repository.LedgerListParams{
		CompanyID:   tenantID(c),
		ItemID:      c.Query("item_id"),
		VoucherType: c.Query("voucher_type"),
	}
	f, filename, err := h.svc.ExportLedger(params)
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}
