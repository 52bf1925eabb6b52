package entity

import "gorm.io/gorm"

// AutoMigrate 自动迁移所有制造执行表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// 租户
		&Company{},

		// 基础数据
		&Item{},
		&WorkCenter{},

		// BOM
		&BillOfMaterials{},
		&BOMComponent{},
		&BOMOperation{},

		// 生产
		&ManufacturingOrder{},
		&WorkOrder{},

		// 库存台账
		&StockLedgerEntry{},
	)
}
