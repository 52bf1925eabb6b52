package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillOfMaterials BOM头表，描述生产一个单位 ItemID 所需的组件与工序
type BillOfMaterials struct {
	ID        string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CompanyID string     `json:"company_id" gorm:"type:uuid;not null;index"`
	ItemID    string     `json:"item_id" gorm:"type:uuid;not null;index"`
	Name      string     `json:"name" gorm:"size:128"`
	IsActive  bool       `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at" gorm:"index"`

	Item       *Item          `json:"item,omitempty" gorm:"foreignKey:ItemID"`
	Components []BOMComponent `json:"components,omitempty" gorm:"foreignKey:BOMID"`
	Operations []BOMOperation `json:"operations,omitempty" gorm:"foreignKey:BOMID"`
}

func (BillOfMaterials) TableName() string {
	return "mfg_boms"
}

// BOMComponent BOM组件行
type BOMComponent struct {
	ID         string          `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	BOMID      string          `json:"bom_id" gorm:"type:uuid;not null;index"`
	ItemID     string          `json:"item_id" gorm:"type:uuid;not null"`
	QtyPerUnit decimal.Decimal `json:"qty_per_unit" gorm:"type:decimal(20,4);not null"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`

	Item *Item `json:"item,omitempty" gorm:"foreignKey:ItemID"`
}

func (BOMComponent) TableName() string {
	return "mfg_bom_components"
}

// BOMOperation BOM工序行。Sequence 定义执行顺序，同序号表示可并行的工序
type BOMOperation struct {
	ID              string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	BOMID           string    `json:"bom_id" gorm:"type:uuid;not null;index:idx_mfg_bom_ops_bom_seq,priority:1"`
	WorkCenterID    string    `json:"work_center_id" gorm:"type:uuid;not null"`
	Name            string    `json:"name" gorm:"size:128;not null"`
	DurationMinutes int       `json:"duration_minutes" gorm:"not null;default:0"`
	Sequence        int       `json:"sequence" gorm:"not null;index:idx_mfg_bom_ops_bom_seq,priority:2"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	WorkCenter *WorkCenter `json:"work_center,omitempty" gorm:"foreignKey:WorkCenterID"`
}

func (BOMOperation) TableName() string {
	return "mfg_bom_operations"
}
