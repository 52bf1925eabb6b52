package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/repository"
	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/service"
)

type OrderHandler struct {
	svc *service.OrderService
}

func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	order, err := h.svc.Create(req, tenantID(c), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, order)
}

func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.svc.GetByID(c.Param("id"), tenantID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, order)
}

func (h *OrderHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	params := repository.OrderListParams{
		CompanyID: tenantID(c),
		State:     c.Query("state"),
		ItemID:    c.Query("item_id"),
		Keyword:   c.Query("keyword"),
		Page:      page,
		Size:      size,
	}
	orders, total, err := h.svc.List(params)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"items": orders, "total": total, "page": page, "size": size})
}

type planRequest struct {
	ItemID     string          `json:"item_id" binding:"required"`
	BOMID      string          `json:"bom_id"`
	PlannedQty decimal.Decimal `json:"planned_qty" binding:"required"`
}

// Plan 订单计划试算
func (h *OrderHandler) Plan(c *gin.Context) {
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	plan, err := h.svc.Plan(req.ItemID, req.BOMID, req.PlannedQty, tenantID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, plan)
}

func (h *OrderHandler) Confirm(c *gin.Context) {
	order, err := h.svc.Confirm(c.Request.Context(), c.Param("id"), tenantID(c), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, order)
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	order, err := h.svc.Cancel(c.Request.Context(), c.Param("id"), tenantID(c), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, order)
}

func (h *OrderHandler) Start(c *gin.Context) {
	order, err := h.svc.Start(c.Param("id"), tenantID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, order)
}

func (h *OrderHandler) Complete(c *gin.Context) {
	order, err := h.svc.Complete(c.Request.Context(), c.Param("id"), tenantID(c), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, order)
}
