package service

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/apperr"
	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/entity"
	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/repository"
)

// ComponentRequirement 订单整体的组件需求：qtyPerUnit × plannedQty
type ComponentRequirement struct {
	ItemID   string          `json:"item_id"`
	ItemCode string          `json:"item_code"`
	ItemName string          `json:"item_name"`
	TotalQty decimal.Decimal `json:"total_qty"`
}

// WorkOrderSpec 工单生成规格。同一 ExecutionOrder 的工单可并行
type WorkOrderSpec struct {
	WorkCenterID    string `json:"work_center_id"`
	WorkCenterName  string `json:"work_center_name"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	ExecutionOrder  int    `json:"execution_order"`
	Parallel        bool   `json:"parallel"`
}

// OrderPlan 订单计划：组件总需求 + 工单展开
type OrderPlan struct {
	ComponentRequirements []ComponentRequirement `json:"component_requirements"`
	WorkOrderSpecs        []WorkOrderSpec        `json:"work_order_specs"`
}

// Planner 订单计划器
type Planner struct {
	resolver *BOMResolver
	itemRepo *repository.ItemRepository
	db       *gorm.DB
}

func NewPlanner(resolver *BOMResolver, itemRepo *repository.ItemRepository, db *gorm.DB) *Planner {
	return &Planner{resolver: resolver, itemRepo: itemRepo, db: db}
}

// Plan 计算订单计划。bomID 为空是合法的退化情况：订单只跟踪不排程
func (s *Planner) Plan(itemID, bomID string, plannedQty decimal.Decimal, companyID string) (*OrderPlan, error) {
	return s.PlanTx(s.db, itemID, bomID, plannedQty, companyID)
}

// PlanTx 在指定事务内计算订单计划
func (s *Planner) PlanTx(tx *gorm.DB, itemID, bomID string, plannedQty decimal.Decimal, companyID string) (*OrderPlan, error) {
	if !plannedQty.IsPositive() {
		return nil, apperr.InvalidQuantity("计划数量必须大于0，当前为 %s", plannedQty.String())
	}

	if _, err := s.lookupItem(tx, itemID, companyID); err != nil {
		return nil, err
	}

	plan := &OrderPlan{
		ComponentRequirements: []ComponentRequirement{},
		WorkOrderSpecs:        []WorkOrderSpec{},
	}
	if bomID == "" {
		return plan, nil
	}

	resolved, err := s.resolver.ResolveTx(tx, bomID, companyID)
	if err != nil {
		return nil, err
	}

	return BuildPlan(resolved, plannedQty), nil
}

// BuildPlan 由解析结果推导订单计划，十进制算术避免分数数量的舍入漂移
func BuildPlan(resolved *ResolvedBOM, plannedQty decimal.Decimal) *OrderPlan {
	plan := &OrderPlan{
		ComponentRequirements: make([]ComponentRequirement, 0, len(resolved.Components)),
		WorkOrderSpecs:        make([]WorkOrderSpec, 0, len(resolved.Operations)),
	}

	for _, comp := range resolved.Components {
		plan.ComponentRequirements = append(plan.ComponentRequirements, ComponentRequirement{
			ItemID:   comp.Item.ID,
			ItemCode: comp.Item.Code,
			ItemName: comp.Item.Name,
			TotalQty: comp.QtyPerUnit.Mul(plannedQty),
		})
	}

	// 统计各 sequence 的工序数，同序号多工序可并行
	seqCount := make(map[int]int, len(resolved.Operations))
	for _, op := range resolved.Operations {
		seqCount[op.Sequence]++
	}
	for _, op := range resolved.Operations {
		plan.WorkOrderSpecs = append(plan.WorkOrderSpecs, WorkOrderSpec{
			WorkCenterID:    op.WorkCenter.ID,
			WorkCenterName:  op.WorkCenter.Name,
			Name:            op.Name,
			DurationMinutes: op.DurationMinutes,
			ExecutionOrder:  op.Sequence,
			Parallel:        seqCount[op.Sequence] > 1,
		})
	}
	sort.SliceStable(plan.WorkOrderSpecs, func(i, j int) bool {
		return plan.WorkOrderSpecs[i].ExecutionOrder < plan.WorkOrderSpecs[j].ExecutionOrder
	})

	return plan
}

func (s *Planner) lookupItem(tx *gorm.DB, itemID, companyID string) (*entity.Item, error) {
	var item entity.Item
	err := tx.Where("id = ? AND company_id = ? AND deleted_at IS NULL", itemID, companyID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("物料 %s 不存在", itemID)
		}
		return nil, fmt.Errorf("读取物料失败: %w", err)
	}
	return &item, nil
}
