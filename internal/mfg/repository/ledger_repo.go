package repository

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/entity"
)

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Append 追加一条台账分录。台账只写不改
func (r *LedgerRepository) Append(tx *gorm.DB, e *entity.StockLedgerEntry) error {
	return tx.Create(e).Error
}

// SumByItem 物料台账累计余额（当前库存的权威来源）
func (r *LedgerRepository) SumByItem(tx *gorm.DB, itemID, companyID string) (decimal.Decimal, error) {
	var result struct{ Total decimal.Decimal }
	err := tx.Raw(`
		SELECT COALESCE(SUM(qty_delta), 0) as total
		FROM mfg_stock_ledger_entries
		WHERE item_id = ? AND company_id = ?
	`, itemID, companyID).Scan(&result).Error
	return result.Total, err
}

// ListByReference 按业务单据读取分录（取消订单时冲销消耗使用）
func (r *LedgerRepository) ListByReference(tx *gorm.DB, companyID, refType, refID, voucherType string) ([]entity.StockLedgerEntry, error) {
	var entries []entity.StockLedgerEntry
	err := tx.Where("company_id = ? AND reference_type = ? AND reference_id = ? AND voucher_type = ?",
		companyID, refType, refID, voucherType).
		Order("created_at ASC, id ASC").Find(&entries).Error
	return entries, err
}

type LedgerListParams struct {
	CompanyID   string
	ItemID      string
	VoucherType string
	ReferenceID string
	Page        int
	Size        int
}

// List 台账查询。过滤字段白名单化，绝不拼接用户输入
func (r *LedgerRepository) List(params LedgerListParams) ([]entity.StockLedgerEntry, int64, error) {
	query := r.db.Model(&entity.StockLedgerEntry{}).
		Where("company_id = ?", params.CompanyID)
	if params.ItemID != "" {
		query = query.Where("item_id = ?", params.ItemID)
	}
	if params.VoucherType != "" {
		query = query.Where("voucher_type = ?", params.VoucherType)
	}
	if params.ReferenceID != "" {
		query = query.Where("reference_id = ?", params.ReferenceID)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var entries []entity.StockLedgerEntry
	err := query.Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&entries).Error
	return entries, total, err
}

// DB 返回底层db用于事务
func (r *LedgerRepository) DB() *gorm.DB {
	return r.db
}
