package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/apperr"
	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/entity"
	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/repository"
)

// ResolvedComponent 已解析的BOM组件
type ResolvedComponent struct {
	Item       entity.Item     `json:"item"`
	QtyPerUnit decimal.Decimal `json:"qty_per_unit"`
}

// ResolvedOperation 已解析的BOM工序
type ResolvedOperation struct {
	WorkCenter      entity.WorkCenter `json:"work_center"`
	Name            string            `json:"name"`
	DurationMinutes int               `json:"duration_minutes"`
	Sequence        int               `json:"sequence"`
}

// ResolvedBOM BOM解析结果：生产一个单位所需的组件与有序工序
type ResolvedBOM struct {
	BOM        entity.BillOfMaterials `json:"bom"`
	Components []ResolvedComponent    `json:"components"`
	Operations []ResolvedOperation    `json:"operations"`
}

// BOMResolver 解析BOM，校验租户归属并做组件图环检测
type BOMResolver struct {
	bomRepo        *repository.BOMRepository
	itemRepo       *repository.ItemRepository
	workCenterRepo *repository.WorkCenterRepository
	db             *gorm.DB
}

func NewBOMResolver(bomRepo *repository.BOMRepository, itemRepo *repository.ItemRepository, wcRepo *repository.WorkCenterRepository, db *gorm.DB) *BOMResolver {
	return &BOMResolver{bomRepo: bomRepo, itemRepo: itemRepo, workCenterRepo: wcRepo, db: db}
}

// Resolve 按租户解析BOM
func (s *BOMResolver) Resolve(bomID, companyID string) (*ResolvedBOM, error) {
	return s.ResolveTx(s.db, bomID, companyID)
}

// ResolveTx 在指定事务内解析BOM。订单确认走这里，保证读到的是当前定义
func (s *BOMResolver) ResolveTx(tx *gorm.DB, bomID, companyID string) (*ResolvedBOM, error) {
	bom, err := s.bomRepo.GetByID(tx, bomID, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("BOM %s 不存在", bomID)
		}
		return nil, fmt.Errorf("读取BOM失败: %w", err)
	}

	resolved := &ResolvedBOM{
		BOM:        *bom,
		Components: make([]ResolvedComponent, 0, len(bom.Components)),
		Operations: make([]ResolvedOperation, 0, len(bom.Operations)),
	}

	for _, comp := range bom.Components {
		// 组件不得引用BOM自身的产出物料
		if comp.ItemID == bom.ItemID {
			return nil, apperr.CyclicBOM("BOM %s 的组件引用了其自身产出物料", bomID)
		}
		item, err := s.lookupItem(tx, comp.ItemID, companyID)
		if err != nil {
			return nil, err
		}
		resolved.Components = append(resolved.Components, ResolvedComponent{
			Item:       *item,
			QtyPerUnit: comp.QtyPerUnit,
		})
	}

	for _, op := range bom.Operations {
		wc, err := s.workCenterRepo.GetByID(tx, op.WorkCenterID, companyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.InvalidReference("工序 %s 的工作中心不在当前租户内", op.Name)
			}
			return nil, fmt.Errorf("读取工作中心失败: %w", err)
		}
		resolved.Operations = append(resolved.Operations, ResolvedOperation{
			WorkCenter:      *wc,
			Name:            op.Name,
			DurationMinutes: op.DurationMinutes,
			Sequence:        op.Sequence,
		})
	}

	// 多级BOM：组件物料可能有自己的BOM，沿组件图做DFS环检测
	if err := s.detectCycle(tx, bom, companyID); err != nil {
		return nil, err
	}

	return resolved, nil
}

func (s *BOMResolver) lookupItem(tx *gorm.DB, itemID, companyID string) (*entity.Item, error) {
	var item entity.Item
	err := tx.Where("id = ? AND company_id = ? AND deleted_at IS NULL", itemID, companyID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.InvalidReference("组件物料 %s 不在当前租户内", itemID)
		}
		return nil, fmt.Errorf("读取物料失败: %w", err)
	}
	return &item, nil
}

// detectCycle 从BOM产出物料出发沿 组件 -> 组件的活跃BOM 展开，
// 路径上重复出现同一物料即为环
func (s *BOMResolver) detectCycle(tx *gorm.DB, bom *entity.BillOfMaterials, companyID string) error {
	onPath := map[string]bool{bom.ItemID: true}
	visited := map[string]bool{}

	var walk func(itemID string) error
	walk = func(itemID string) error {
		if onPath[itemID] {
			return apperr.CyclicBOM("物料 %s 的BOM组件图存在环", bom.ItemID)
		}
		if visited[itemID] {
			return nil
		}
		visited[itemID] = true
		onPath[itemID] = true
		defer delete(onPath, itemID)

		boms, err := s.bomRepo.FindActiveByItem(tx, itemID, companyID)
		if err != nil {
			return fmt.Errorf("读取物料 %s 的BOM失败: %w", itemID, err)
		}
		for _, sub := range boms {
			for _, comp := range sub.Components {
				if err := walk(comp.ItemID); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for _, comp := range bom.Components {
		if err := walk(comp.ItemID); err != nil {
			return err
		}
	}
	return nil
}
