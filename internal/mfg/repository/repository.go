package repository

import "gorm.io/gorm"

// Repositories 制造执行仓库集合
type Repositories struct {
	Company    *CompanyRepository
	Item       *ItemRepository
	WorkCenter *WorkCenterRepository
	BOM        *BOMRepository
	Order      *OrderRepository
	Ledger     *LedgerRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Company:    NewCompanyRepository(db),
		Item:       NewItemRepository(db),
		WorkCenter: NewWorkCenterRepository(db),
		BOM:        NewBOMRepository(db),
		Order:      NewOrderRepository(db),
		Ledger:     NewLedgerRepository(db),
	}
}
