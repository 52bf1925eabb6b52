package repository

import (
	"gorm.io/gorm"

	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/entity"
)

type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) Create(company *entity.Company) error {
	return r.db.Create(company).Error
}

func (r *CompanyRepository) GetByID(id string) (*entity.Company, error) {
	var company entity.Company
	err := r.db.Where("id = ? AND deleted_at IS NULL", id).First(&company).Error
	return &company, err
}
