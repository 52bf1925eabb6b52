package repository

import (
	"gorm.io/gorm"

	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/entity"
)

type BOMRepository struct {
	db *gorm.DB
}

func NewBOMRepository(db *gorm.DB) *BOMRepository {
	return &BOMRepository{db: db}
}

// Create 创建BOM头及其组件、工序行
func (r *BOMRepository) Create(bom *entity.BillOfMaterials) error {
	return r.db.Create(bom).Error
}

// GetByID 按租户读取BOM，工序按 sequence 升序，平序按 id 升序保证确定性
func (r *BOMRepository) GetByID(tx *gorm.DB, id, companyID string) (*entity.BillOfMaterials, error) {
	var bom entity.BillOfMaterials
	err := tx.Preload("Components").
		Preload("Operations", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC, id ASC")
		}).
		Where("id = ? AND company_id = ? AND deleted_at IS NULL", id, companyID).
		First(&bom).Error
	return &bom, err
}

// FindActiveByItem 查找生产某物料的活跃BOM（多级BOM环检测使用）
func (r *BOMRepository) FindActiveByItem(tx *gorm.DB, itemID, companyID string) ([]entity.BillOfMaterials, error) {
	var boms []entity.BillOfMaterials
	err := tx.Preload("Components").
		Where("item_id = ? AND company_id = ? AND is_active = true AND deleted_at IS NULL", itemID, companyID).
		Find(&boms).Error
	return boms, err
}

// DB 返回底层db用于事务
func (r *BOMRepository) DB() *gorm.DB {
	return r.db
}
