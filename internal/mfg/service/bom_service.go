package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/apperr"
	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/entity"
	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/repository"
)

// BOMService BOM维护
type BOMService struct {
	bomRepo        *repository.BOMRepository
	itemRepo       *repository.ItemRepository
	workCenterRepo *repository.WorkCenterRepository
	resolver       *BOMResolver
	db             *gorm.DB
}

func NewBOMService(bomRepo *repository.BOMRepository, itemRepo *repository.ItemRepository, wcRepo *repository.WorkCenterRepository, resolver *BOMResolver, db *gorm.DB) *BOMService {
	return &BOMService{bomRepo: bomRepo, itemRepo: itemRepo, workCenterRepo: wcRepo, resolver: resolver, db: db}
}

type BOMComponentInput struct {
	ItemID     string          `json:"item_id" binding:"required"`
	QtyPerUnit decimal.Decimal `json:"qty_per_unit" binding:"required"`
}

type BOMOperationInput struct {
	WorkCenterID    string `json:"work_center_id" binding:"required"`
	Name            string `json:"name" binding:"required"`
	DurationMinutes int    `json:"duration_minutes"`
	Sequence        int    `json:"sequence"`
}

type CreateBOMRequest struct {
	ItemID     string              `json:"item_id" binding:"required"`
	Name       string              `json:"name"`
	Components []BOMComponentInput `json:"components"`
	Operations []BOMOperationInput `json:"operations"`
}

// Create 创建BOM。组件不得引用产出物料本身，
// 引用的物料与工作中心必须属于当前租户，且不得在组件图中成环。
// 同 sequence 的多道工序是合法的，表示可并行
func (s *BOMService) Create(req CreateBOMRequest, companyID string) (*entity.BillOfMaterials, error) {
	if _, err := s.lookupItem(req.ItemID, companyID); err != nil {
		return nil, err
	}

	bom := &entity.BillOfMaterials{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		ItemID:    req.ItemID,
		Name:      req.Name,
		IsActive:  true,
	}

	for _, c := range req.Components {
		if c.ItemID == req.ItemID {
			return nil, apperr.CyclicBOM("组件不能引用BOM自身的产出物料")
		}
		if !c.QtyPerUnit.IsPositive() {
			return nil, apperr.InvalidQuantity("组件单位用量必须大于0")
		}
		if _, err := s.lookupItem(c.ItemID, companyID); err != nil {
			var e *apperr.Error
			if errors.As(err, &e) && e.Code == apperr.CodeNotFound {
				return nil, apperr.InvalidReference("组件物料 %s 不在当前租户内", c.ItemID)
			}
			return nil, err
		}
		bom.Components = append(bom.Components, entity.BOMComponent{
			ID:         uuid.New().String(),
			BOMID:      bom.ID,
			ItemID:     c.ItemID,
			QtyPerUnit: c.QtyPerUnit,
		})
	}

	for _, o := range req.Operations {
		if o.Sequence < 0 {
			return nil, apperr.InvalidQuantity("工序 sequence 不能为负")
		}
		if _, err := s.workCenterRepo.GetByID(s.db, o.WorkCenterID, companyID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.InvalidReference("工作中心 %s 不在当前租户内", o.WorkCenterID)
			}
			return nil, fmt.Errorf("读取工作中心失败: %w", err)
		}
		bom.Operations = append(bom.Operations, entity.BOMOperation{
			ID:              uuid.New().String(),
			BOMID:           bom.ID,
			WorkCenterID:    o.WorkCenterID,
			Name:            o.Name,
			DurationMinutes: o.DurationMinutes,
			Sequence:        o.Sequence,
		})
	}

	// 入库前沿现有BOM图做环检测，坏定义不落库
	if err := s.resolver.detectCycle(s.db, bom, companyID); err != nil {
		return nil, err
	}

	if err := s.bomRepo.Create(bom); err != nil {
		return nil, fmt.Errorf("创建BOM失败: %w", err)
	}
	return bom, nil
}

// Resolve BOM解析视图
func (s *BOMService) Resolve(bomID, companyID string) (*ResolvedBOM, error) {
	return s.resolver.Resolve(bomID, companyID)
}

func (s *BOMService) lookupItem(itemID, companyID string) (*entity.Item, error) {
	item, err := s.itemRepo.GetByID(itemID, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("物料 %s 不存在", itemID)
		}
		return nil, fmt.Errorf("读取物料失败: %w", err)
	}
	return item, nil
}
