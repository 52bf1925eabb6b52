package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/service"
)

type WorkOrderHandler struct {
	svc *service.OrderService
}

func NewWorkOrderHandler(svc *service.OrderService) *WorkOrderHandler {
	return &WorkOrderHandler{svc: svc}
}

// Start 工单开工，操作员默认取当前用户
func (h *WorkOrderHandler) Start(c *gin.Context) {
	var req struct {
		OperatorID string `json:"operator_id"`
	}
	c.ShouldBindJSON(&req)
	operator := req.OperatorID
	if operator == "" {
		operator = userID(c)
	}
	wo, err := h.svc.StartWorkOrder(c.Param("id"), tenantID(c), operator)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, wo)
}

func (h *WorkOrderHandler) Finish(c *gin.Context) {
	wo, err := h.svc.FinishWorkOrder(c.Param("id"), tenantID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, wo)
}

func (h *WorkOrderHandler) Cancel(c *gin.Context) {
	wo, err := h.svc.CancelWorkOrder(c.Param("id"), tenantID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, wo)
}
