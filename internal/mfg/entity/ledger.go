package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// VoucherType 台账凭证类型
const (
	VoucherManufacturingConsumption = "manufacturing_consumption"
	VoucherConsumptionReversal      = "manufacturing_consumption_reversal"
	VoucherManufacturingReceipt     = "manufacturing_receipt"
	VoucherManualAdjustment         = "manual_adjustment"
	VoucherBackorderConsumption     = "backorder_consumption"
)

// StockLedgerEntry 库存台账分录，只追加、不可变。
// 某物料按写入顺序的 QtyDelta 累计和即其当前库存
type StockLedgerEntry struct {
	ID            string          `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CompanyID     string          `json:"company_id" gorm:"type:uuid;not null;index:idx_mfg_ledger_company_item,priority:1"`
	ItemID        string          `json:"item_id" gorm:"type:uuid;not null;index:idx_mfg_ledger_company_item,priority:2"`
	QtyDelta      decimal.Decimal `json:"qty_delta" gorm:"type:decimal(20,4);not null"` // 正=入，负=出
	VoucherType   string          `json:"voucher_type" gorm:"size:50;not null"`
	ReferenceType string          `json:"reference_type" gorm:"size:20"` // MO
	ReferenceID   string          `json:"reference_id" gorm:"size:64;index"`
	Notes         string          `json:"notes" gorm:"type:text"`
	CreatedBy     string          `json:"created_by" gorm:"size:64"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (StockLedgerEntry) TableName() string {
	return "mfg_stock_ledger_entries"
}
