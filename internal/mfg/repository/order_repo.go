package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/entity"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(order *entity.ManufacturingOrder) error {
	return r.db.Create(order).Error
}

func (r *OrderRepository) GetByID(id, companyID string) (*entity.ManufacturingOrder, error) {
	var order entity.ManufacturingOrder
	err := r.db.Preload("Item").
		Preload("WorkOrders", func(db *gorm.DB) *gorm.DB {
			return db.Order("execution_order ASC, id ASC")
		}).
		Where("id = ? AND company_id = ?", id, companyID).
		First(&order).Error
	return &order, err
}

// LockByID 行级锁获取订单，并发状态变更在此串行化，必须在事务内调用
func (r *OrderRepository) LockByID(tx *gorm.DB, id, companyID string) (*entity.ManufacturingOrder, error) {
	var order entity.ManufacturingOrder
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND company_id = ?", id, companyID).
		First(&order).Error
	return &order, err
}

func (r *OrderRepository) Update(tx *gorm.DB, order *entity.ManufacturingOrder) error {
	return tx.Save(order).Error
}

type OrderListParams struct {
	CompanyID string
	State     string
	ItemID    string
	Keyword   string
	Page      int
	Size      int
}

func (r *OrderRepository) List(params OrderListParams) ([]entity.ManufacturingOrder, int64, error) {
	query := r.db.Model(&entity.ManufacturingOrder{}).
		Where("company_id = ?", params.CompanyID)
	if params.State != "" {
		query = query.Where("state = ?", params.State)
	}
	if params.ItemID != "" {
		query = query.Where("item_id = ?", params.ItemID)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("order_number ILIKE ?", kw)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var orders []entity.ManufacturingOrder
	err := query.Preload("Item").Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&orders).Error
	return orders, total, err
}

// BatchCreateWorkOrders 订单确认时批量生成工单
func (r *OrderRepository) BatchCreateWorkOrders(tx *gorm.DB, workOrders []entity.WorkOrder) error {
	if len(workOrders) == 0 {
		return nil
	}
	return tx.Create(&workOrders).Error
}

func (r *OrderRepository) GetWorkOrder(id, companyID string) (*entity.WorkOrder, error) {
	var wo entity.WorkOrder
	err := r.db.Where("id = ? AND company_id = ?", id, companyID).First(&wo).Error
	return &wo, err
}

// LockWorkOrder 行级锁获取工单，必须在事务内调用
func (r *OrderRepository) LockWorkOrder(tx *gorm.DB, id, companyID string) (*entity.WorkOrder, error) {
	var wo entity.WorkOrder
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND company_id = ?", id, companyID).
		First(&wo).Error
	return &wo, err
}

func (r *OrderRepository) UpdateWorkOrder(tx *gorm.DB, wo *entity.WorkOrder) error {
	return tx.Save(wo).Error
}

func (r *OrderRepository) ListWorkOrdersByOrder(tx *gorm.DB, orderID string) ([]entity.WorkOrder, error) {
	var wos []entity.WorkOrder
	err := tx.Where("order_id = ?", orderID).
		Order("execution_order ASC, id ASC").Find(&wos).Error
	return wos, err
}

// DB 返回底层db用于事务
func (r *OrderRepository) DB() *gorm.DB {
	return r.db
}
