package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/apperr"
	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/service"
)

// Handlers 制造执行HTTP处理器集合
type Handlers struct {
	Order     *OrderHandler
	WorkOrder *WorkOrderHandler
	Stock     *StockHandler
	BOM       *BOMHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Order:     NewOrderHandler(services.Order),
		WorkOrder: NewWorkOrderHandler(services.Order),
		Stock:     NewStockHandler(services.Ledger),
		BOM:       NewBOMHandler(services.BOM),
	}
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": data})
}

// fail 领域错误到HTTP状态码的统一映射
func fail(c *gin.Context, err error) {
	switch apperr.CodeOf(err) {
	case apperr.CodeNotFound:
		c.JSON(http.StatusNotFound, gin.H{"code": 10002, "message": err.Error()})
	case apperr.CodeInvalidReference, apperr.CodeInvalidQuantity, apperr.CodeCyclicBOM:
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
	case apperr.CodeInsufficientStock, apperr.CodeInvalidTransition, apperr.CodeConflict:
		c.JSON(http.StatusConflict, gin.H{"code": 10004, "message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
}

func tenantID(c *gin.Context) string {
	return c.GetString("tenant_id")
}

func userID(c *gin.Context) string {
	return c.GetString("user_id")
}
