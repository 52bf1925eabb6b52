package entity

import (
	"time"
)

// Company 租户（公司），所有业务数据按 CompanyID 隔离
type Company struct {
	ID   string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name string `json:"name" gorm:"size:128;not null;uniqueIndex"`
	// AllowNegativeStock 允许负库存（缺料欠单场景），默认关闭
	AllowNegativeStock bool       `json:"allow_negative_stock" gorm:"default:false"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	DeletedAt          *time.Time `json:"deleted_at" gorm:"index"`
}

func (Company) TableName() string {
	return "mfg_companies"
}
