package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemType 物料类型
const (
	ItemTypeRawMaterial  = "RAW_MATERIAL"
	ItemTypeSemiFinished = "SEMI_FINISHED"
	ItemTypeFinishedGood = "FINISHED_GOOD"
	ItemTypeConsumable   = "CONSUMABLE"
)

// Item 物料。CurrentStock 是台账累计余额的物化值，只允许账务引擎改写
type Item struct {
	ID           string          `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CompanyID    string          `json:"company_id" gorm:"type:uuid;not null;uniqueIndex:idx_mfg_items_company_code,priority:1"`
	Code         string          `json:"code" gorm:"size:64;not null;uniqueIndex:idx_mfg_items_company_code,priority:2"`
	Name         string          `json:"name" gorm:"size:128;not null"`
	Unit         string          `json:"unit" gorm:"size:20;not null;default:pcs"`
	ItemType     string          `json:"item_type" gorm:"size:20;not null;default:RAW_MATERIAL"`
	StandardRate decimal.Decimal `json:"standard_rate" gorm:"type:decimal(20,4);default:0"`
	CurrentStock decimal.Decimal `json:"current_stock" gorm:"type:decimal(20,4);not null;default:0"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    *time.Time      `json:"deleted_at" gorm:"index"`
}

func (Item) TableName() string {
	return "mfg_items"
}
