package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// WorkCenter 工作中心
type WorkCenter struct {
	ID              string          `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CompanyID       string          `json:"company_id" gorm:"type:uuid;not null;uniqueIndex:idx_mfg_work_centers_company_name,priority:1"`
	Name            string          `json:"name" gorm:"size:128;not null;uniqueIndex:idx_mfg_work_centers_company_name,priority:2"`
	CapacityPerHour decimal.Decimal `json:"capacity_per_hour" gorm:"type:decimal(20,4);default:0"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       *time.Time      `json:"deleted_at" gorm:"index"`
}

func (WorkCenter) TableName() string {
	return "mfg_work_centers"
}
