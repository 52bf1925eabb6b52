package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/service"
)

type BOMHandler struct {
	svc *service.BOMService
}

func NewBOMHandler(svc *service.BOMService) *BOMHandler {
	return &BOMHandler{svc: svc}
}

func (h *BOMHandler) Create(c *gin.Context) {
	var req service.CreateBOMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	bom, err := h.svc.Create(req, tenantID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, bom)
}

// Get 返回解析后的BOM视图（组件+有序工序）
func (h *BOMHandler) Get(c *gin.Context) {
	resolved, err := h.svc.Resolve(c.Param("id"), tenantID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, resolved)
}
