package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderState 制造订单状态
const (
	OrderStateDraft      = "DRAFT"
	OrderStateConfirmed  = "CONFIRMED"
	OrderStateInProgress = "IN_PROGRESS"
	OrderStateDone       = "DONE"
	OrderStateCancelled  = "CANCELLED"
)

// WorkOrderState 工单状态
const (
	WorkOrderStateTodo       = "TODO"
	WorkOrderStateInProgress = "IN_PROGRESS"
	WorkOrderStateDone       = "DONE"
	WorkOrderStateCancelled  = "CANCELLED"
)

// ManufacturingOrder 制造订单。只走状态机变更，不提供删除（审计保留）
type ManufacturingOrder struct {
	ID           string          `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CompanyID    string          `json:"company_id" gorm:"type:uuid;not null;uniqueIndex:idx_mfg_orders_company_number,priority:1"`
	OrderNumber  string          `json:"order_number" gorm:"size:50;not null;uniqueIndex:idx_mfg_orders_company_number,priority:2"`
	ItemID       string          `json:"item_id" gorm:"type:uuid;not null;index"`
	BOMID        string          `json:"bom_id" gorm:"type:uuid"` // 可为空：无工艺路线的订单
	PlannedQty   decimal.Decimal `json:"planned_qty" gorm:"type:decimal(20,4);not null"`
	State        string          `json:"state" gorm:"size:20;not null;default:DRAFT;index"`
	Priority     int             `json:"priority" gorm:"default:0"`
	PlannedStart *time.Time      `json:"planned_start"`
	PlannedEnd   *time.Time      `json:"planned_end"`
	ActualStart  *time.Time      `json:"actual_start"`
	ActualEnd    *time.Time      `json:"actual_end"`
	Notes        string          `json:"notes" gorm:"type:text"`
	CreatedBy    string          `json:"created_by" gorm:"size:64;not null"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	Item       *Item       `json:"item,omitempty" gorm:"foreignKey:ItemID"`
	WorkOrders []WorkOrder `json:"work_orders,omitempty" gorm:"foreignKey:OrderID"`
}

func (ManufacturingOrder) TableName() string {
	return "mfg_manufacturing_orders"
}

// WorkOrder 工单，订单确认时按 BOM 工序批量生成。
// ExecutionOrder 定义兄弟工单间的执行顺序，Parallel 表示可与同序号工单并行
type WorkOrder struct {
	ID              string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CompanyID       string     `json:"company_id" gorm:"type:uuid;not null;index"`
	OrderID         string     `json:"order_id" gorm:"type:uuid;not null;index"`
	WorkCenterID    string     `json:"work_center_id" gorm:"type:uuid;not null"`
	Name            string     `json:"name" gorm:"size:128;not null"`
	DurationMinutes int        `json:"duration_minutes" gorm:"not null;default:0"`
	ExecutionOrder  int        `json:"execution_order" gorm:"not null;default:0"`
	Parallel        bool       `json:"parallel" gorm:"default:false"`
	State           string     `json:"state" gorm:"size:20;not null;default:TODO;index"`
	OperatorID      string     `json:"operator_id" gorm:"size:64"`
	StartedAt       *time.Time `json:"started_at"`
	FinishedAt      *time.Time `json:"finished_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	WorkCenter *WorkCenter `json:"work_center,omitempty" gorm:"foreignKey:WorkCenterID"`
}

func (WorkOrder) TableName() string {
	return "mfg_work_orders"
}
