package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/entity"
	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/policy"
	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/repository"
	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/service"
	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/testutil"
	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/middleware"
)

type handlerEnv struct {
	db       *gorm.DB
	router   *gin.Engine
	services *service.Services
	company  *entity.Company
	table    *entity.Item
	rod      *entity.Item
}

func setupHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, db, service.Options{})
	handlers := NewHandlers(services)

	router := testutil.SetupRouter()
	v1 := testutil.AuthGroup(router, "/api/v1/mfg")

	orders := v1.Group("/orders")
	orders.GET("", middleware.RequirePermission(policy.ActionRead, policy.ResourceOrder), handlers.Order.List)
	orders.POST("", middleware.RequirePermission(policy.ActionCreate, policy.ResourceOrder), handlers.Order.Create)
	orders.GET("/:id", middleware.RequirePermission(policy.ActionRead, policy.ResourceOrder), handlers.Order.Get)
	orders.POST("/:id/confirm", middleware.RequirePermission(policy.ActionConfirm, policy.ResourceOrder), handlers.Order.Confirm)
	orders.POST("/:id/cancel", middleware.RequirePermission(policy.ActionCancel, policy.ResourceOrder), handlers.Order.Cancel)

	stock := v1.Group("/stock")
	stock.POST("/movements", middleware.RequirePermission(policy.ActionAdjust, policy.ResourceStock), handlers.Stock.RecordMovement)
	stock.GET("/:itemId", middleware.RequirePermission(policy.ActionRead, policy.ResourceStock), handlers.Stock.CurrentStock)

	company := testutil.SeedCompany(t, db, "Acme Manufacturing", false)
	table := testutil.SeedItem(t, db, company.ID, "TABLE-01", "Dining Table", entity.ItemTypeFinishedGood)
	rod := testutil.SeedItem(t, db, company.ID, "STEEL-ROD", "Steel Rod", entity.ItemTypeRawMaterial)

	return &handlerEnv{
		db: db, router: router, services: services,
		company: company, table: table, rod: rod,
	}
}

func (e *handlerEnv) token(role string) string {
	return testutil.GenerateTestToken("user-1", e.company.ID, "Test User", role)
}

func TestCreateOrderEndpoint(t *testing.T) {
	e := setupHandlerEnv(t)

	w := testutil.DoRequest(e.router, http.MethodPost, "/api/v1/mfg/orders", gin.H{
		"item_id":     e.table.ID,
		"planned_qty": "10",
	}, e.token(policy.RoleManager))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 0 {
		t.Fatalf("code = %v, want 0", resp["code"])
	}
	data := resp["data"].(map[string]interface{})
	if data["state"] != "DRAFT" {
		t.Errorf("state = %v, want DRAFT", data["state"])
	}
	if data["order_number"] == "" {
		t.Error("order number should be assigned")
	}
}

func TestCreateOrderEndpointUnauthorized(t *testing.T) {
	e := setupHandlerEnv(t)

	w := testutil.DoRequest(e.router, http.MethodPost, "/api/v1/mfg/orders", gin.H{
		"item_id":     e.table.ID,
		"planned_qty": "10",
	}, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestConfirmOrderEndpointForbiddenForViewer(t *testing.T) {
	e := setupHandlerEnv(t)

	order, err := e.services.Order.Create(service.CreateOrderRequest{
		ItemID:     e.table.ID,
		PlannedQty: decimal.NewFromInt(1),
	}, e.company.ID, "user-1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	path := fmt.Sprintf("/api/v1/mfg/orders/%s/confirm", order.ID)
	w := testutil.DoRequest(e.router, http.MethodPost, path, nil, e.token(policy.RoleViewer))
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403, body: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 40300 {
		t.Errorf("code = %v, want 40300", resp["code"])
	}
}

func TestConfirmOrderEndpoint(t *testing.T) {
	e := setupHandlerEnv(t)

	order, err := e.services.Order.Create(service.CreateOrderRequest{
		ItemID:     e.table.ID,
		PlannedQty: decimal.NewFromInt(1),
	}, e.company.ID, "user-1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	path := fmt.Sprintf("/api/v1/mfg/orders/%s/confirm", order.ID)
	w := testutil.DoRequest(e.router, http.MethodPost, path, nil, e.token(policy.RoleManager))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}

	// confirming again maps the transition error onto 409
	w = testutil.DoRequest(e.router, http.MethodPost, path, nil, e.token(policy.RoleManager))
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409, body: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 10004 {
		t.Errorf("code = %v, want 10004", resp["code"])
	}
}

func TestGetOrderEndpointNotFound(t *testing.T) {
	e := setupHandlerEnv(t)

	w := testutil.DoRequest(e.router, http.MethodGet,
		"/api/v1/mfg/orders/33333333-3333-3333-3333-333333333333", nil, e.token(policy.RoleViewer))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404, body: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 10002 {
		t.Errorf("code = %v, want 10002", resp["code"])
	}
}

func TestGetOrderEndpointCrossTenant(t *testing.T) {
	e := setupHandlerEnv(t)

	order, err := e.services.Order.Create(service.CreateOrderRequest{
		ItemID:     e.table.ID,
		PlannedQty: decimal.NewFromInt(1),
	}, e.company.ID, "user-1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	other := testutil.SeedCompany(t, e.db, "Rival Corp", false)
	foreignToken := testutil.GenerateTestToken("user-2", other.ID, "Outsider", policy.RoleAdmin)

	// another tenant sees the order as nonexistent, not forbidden
	w := testutil.DoRequest(e.router, http.MethodGet, "/api/v1/mfg/orders/"+order.ID, nil, foreignToken)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404, body: %s", w.Code, w.Body.String())
	}
}

func TestStockMovementEndpoint(t *testing.T) {
	e := setupHandlerEnv(t)

	// operators cannot adjust stock
	w := testutil.DoRequest(e.router, http.MethodPost, "/api/v1/mfg/stock/movements", gin.H{
		"item_id":      e.rod.ID,
		"qty_delta":    "50",
		"voucher_type": entity.VoucherManualAdjustment,
	}, e.token(policy.RoleOperator))
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403, body: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(e.router, http.MethodPost, "/api/v1/mfg/stock/movements", gin.H{
		"item_id":      e.rod.ID,
		"qty_delta":    "50",
		"voucher_type": entity.VoucherManualAdjustment,
	}, e.token(policy.RoleManager))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}

	qty, err := e.services.Ledger.CurrentStock(context.Background(), e.rod.ID, e.company.ID)
	if err != nil {
		t.Fatalf("CurrentStock failed: %v", err)
	}
	if qty.String() != "50" {
		t.Errorf("stock = %s, want 50", qty.String())
	}

	// and an over-consumption maps onto 409
	w = testutil.DoRequest(e.router, http.MethodPost, "/api/v1/mfg/stock/movements", gin.H{
		"item_id":      e.rod.ID,
		"qty_delta":    "-100",
		"voucher_type": entity.VoucherManualAdjustment,
	}, e.token(policy.RoleManager))
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409, body: %s", w.Code, w.Body.String())
	}
}
