package repository

import (
	"gorm.io/gorm"

	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/entity"
)

type WorkCenterRepository struct {
	db *gorm.DB
}

func NewWorkCenterRepository(db *gorm.DB) *WorkCenterRepository {
	return &WorkCenterRepository{db: db}
}

func (r *WorkCenterRepository) Create(wc *entity.WorkCenter) error {
	return r.db.Create(wc).Error
}

func (r *WorkCenterRepository) GetByID(tx *gorm.DB, id, companyID string) (*entity.WorkCenter, error) {
	var wc entity.WorkCenter
	err := tx.Where("id = ? AND company_id = ? AND deleted_at IS NULL", id, companyID).
		First(&wc).Error
	return &wc, err
}
