package repository

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/entity"
)

type ItemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) Create(item *entity.Item) error {
	return r.db.Create(item).Error
}

func (r *ItemRepository) GetByID(id, companyID string) (*entity.Item, error) {
	var item entity.Item
	err := r.db.Where("id = ? AND company_id = ? AND deleted_at IS NULL", id, companyID).
		First(&item).Error
	return &item, err
}

// LockByID 行级锁获取物料，必须在事务内调用
func (r *ItemRepository) LockByID(tx *gorm.DB, id, companyID string) (*entity.Item, error) {
	var item entity.Item
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND company_id = ? AND deleted_at IS NULL", id, companyID).
		First(&item).Error
	return &item, err
}

// UpdateStock 改写物化库存列，只允许账务引擎调用
func (r *ItemRepository) UpdateStock(tx *gorm.DB, id string, stock decimal.Decimal) error {
	return tx.Model(&entity.Item{}).Where("id = ?", id).
		Update("current_stock", stock).Error
}

type ItemListParams struct {
	CompanyID string
	ItemType  string
	Keyword   string
	Page      int
	Size      int
}

func (r *ItemRepository) List(params ItemListParams) ([]entity.Item, int64, error) {
	query := r.db.Model(&entity.Item{}).
		Where("company_id = ? AND deleted_at IS NULL", params.CompanyID)
	if params.ItemType != "" {
		query = query.Where("item_type = ?", params.ItemType)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ?", kw, kw)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var items []entity.Item
	err := query.Order("code ASC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&items).Error
	return items, total, err
}

// DB 返回底层db用于事务
func (r *ItemRepository) DB() *gorm.DB {
	return r.db
}
