package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/apperr"
	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/entity"
	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/repository"
)

// OrderService 制造订单状态机。确认/取消/完工都是单事务内的复合迁移：
// 读状态、校验、写新状态与子表要么全部提交要么全部回滚
type OrderService struct {
	orderRepo *repository.OrderRepository
	itemRepo  *repository.ItemRepository
	resolver  *BOMResolver
	planner   *Planner
	ledger    *LedgerService
	db        *gorm.DB
	logger    *zap.Logger
}

func NewOrderService(orderRepo *repository.OrderRepository, itemRepo *repository.ItemRepository, resolver *BOMResolver, planner *Planner, ledger *LedgerService, db *gorm.DB, logger *zap.Logger) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		itemRepo:  itemRepo,
		resolver:  resolver,
		planner:   planner,
		ledger:    ledger,
		db:        db,
		logger:    logger,
	}
}

type CreateOrderRequest struct {
	ItemID       string          `json:"item_id" binding:"required"`
	BOMID        string          `json:"bom_id"`
	PlannedQty   decimal.Decimal `json:"planned_qty" binding:"required"`
	Priority     int             `json:"priority"`
	PlannedStart string          `json:"planned_start"` // YYYY-MM-DD
	PlannedEnd   string          `json:"planned_end"`
	Notes        string          `json:"notes"`
}

// Create 创建草稿订单。BOM给定时立即解析一次，把坏引用挡在创建期
func (s *OrderService) Create(req CreateOrderRequest, companyID, userID string) (*entity.ManufacturingOrder, error) {
	if !req.PlannedQty.IsPositive() {
		return nil, apperr.InvalidQuantity("计划数量必须大于0，当前为 %s", req.PlannedQty.String())
	}

	item, err := s.itemRepo.GetByID(req.ItemID, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("物料 %s 不存在", req.ItemID)
		}
		return nil, fmt.Errorf("读取物料失败: %w", err)
	}

	if req.BOMID != "" {
		resolved, err := s.resolver.Resolve(req.BOMID, companyID)
		if err != nil {
			return nil, err
		}
		if resolved.BOM.ItemID != item.ID {
			return nil, apperr.InvalidReference("BOM %s 的产出物料与订单物料不一致", req.BOMID)
		}
	}

	now := time.Now()
	order := &entity.ManufacturingOrder{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		OrderNumber: fmt.Sprintf("MO-%s%04d", now.Format("20060102"), now.UnixNano()%10000),
		ItemID:      req.ItemID,
		BOMID:       req.BOMID,
		PlannedQty:  req.PlannedQty,
		State:       entity.OrderStateDraft,
		Priority:    req.Priority,
		Notes:       req.Notes,
		CreatedBy:   userID,
	}
	if req.PlannedStart != "" {
		if t, err := time.Parse("2006-01-02", req.PlannedStart); err == nil {
			order.PlannedStart = &t
		}
	}
	if req.PlannedEnd != "" {
		if t, err := time.Parse("2006-01-02", req.PlannedEnd); err == nil {
			order.PlannedEnd = &t
		}
	}

	if err := s.orderRepo.Create(order); err != nil {
		return nil, fmt.Errorf("创建订单失败: %w", err)
	}
	return order, nil
}

// Plan 订单计划试算，不落库
func (s *OrderService) Plan(itemID, bomID string, plannedQty decimal.Decimal, companyID string) (*OrderPlan, error) {
	return s.planner.Plan(itemID, bomID, plannedQty, companyID)
}

func (s *OrderService) GetByID(id, companyID string) (*entity.ManufacturingOrder, error) {
	order, err := s.orderRepo.GetByID(id, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("订单 %s 不存在", id)
		}
		return nil, fmt.Errorf("读取订单失败: %w", err)
	}
	return order, nil
}

func (s *OrderService) List(params repository.OrderListParams) ([]entity.ManufacturingOrder, int64, error) {
	return s.orderRepo.List(params)
}

// Confirm 确认订单 DRAFT → CONFIRMED。
// 同一事务内：锁订单行 → 重新解析BOM → 计算需求 → 按物料ID升序锁组件并消耗 →
// 生成工单 → 写新状态。任一步失败整体回滚，订单保持 DRAFT、台账无痕
func (s *OrderService) Confirm(ctx context.Context, orderID, companyID, userID string) (*entity.ManufacturingOrder, error) {
	allowNegative, err := s.ledger.TenantAllowsNegative(companyID)
	if err != nil {
		return nil, err
	}

	var confirmed *entity.ManufacturingOrder
	var consumedItems []string

	err = s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.lockOrder(tx, orderID, companyID)
		if err != nil {
			return err
		}
		// 并发确认：后来者在这里看到已更新的状态
		if order.State != entity.OrderStateDraft {
			return apperr.InvalidTransition("订单 %s 状态为 %s，不允许确认", order.OrderNumber, order.State)
		}

		now := time.Now()
		var workOrders []entity.WorkOrder

		if order.BOMID != "" {
			// 重新解析，不用创建时的快照：BOM可能已变更
			resolved, err := s.resolver.ResolveTx(tx, order.BOMID, companyID)
			if err != nil {
				return err
			}
			plan := BuildPlan(resolved, order.PlannedQty)

			// 按物料ID升序锁定，避免共享组件的并发确认互相死锁
			reqs := append([]ComponentRequirement(nil), plan.ComponentRequirements...)
			sort.Slice(reqs, func(i, j int) bool { return reqs[i].ItemID < reqs[j].ItemID })

			for _, req := range reqs {
				item, err := s.itemRepo.LockByID(tx, req.ItemID, companyID)
				if err != nil {
					return fmt.Errorf("锁定组件物料失败: %w", err)
				}
				_, err = s.ledger.ApplyTx(tx, item, ApplyMovement{
					QtyDelta:      req.TotalQty.Neg(),
					VoucherType:   entity.VoucherManufacturingConsumption,
					ReferenceType: "MO",
					ReferenceID:   order.ID,
					CreatedBy:     userID,
				}, allowNegative)
				if err != nil {
					return err
				}
				consumedItems = append(consumedItems, item.ID)
			}

			for _, spec := range plan.WorkOrderSpecs {
				workOrders = append(workOrders, entity.WorkOrder{
					ID:              uuid.New().String(),
					CompanyID:       companyID,
					OrderID:         order.ID,
					WorkCenterID:    spec.WorkCenterID,
					Name:            spec.Name,
					DurationMinutes: spec.DurationMinutes,
					ExecutionOrder:  spec.ExecutionOrder,
					Parallel:        spec.Parallel,
					State:           entity.WorkOrderStateTodo,
				})
			}
		}

		if err := s.orderRepo.BatchCreateWorkOrders(tx, workOrders); err != nil {
			return fmt.Errorf("生成工单失败: %w", err)
		}

		order.State = entity.OrderStateConfirmed
		order.ActualStart = &now
		if err := s.orderRepo.Update(tx, order); err != nil {
			return fmt.Errorf("更新订单状态失败: %w", err)
		}
		confirmed = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, itemID := range consumedItems {
		s.ledger.InvalidateStock(ctx, companyID, itemID)
	}
	s.logger.Info("Manufacturing order confirmed",
		zap.String("order_id", confirmed.ID),
		zap.String("order_number", confirmed.OrderNumber),
		zap.Int("consumed_components", len(consumedItems)),
	)
	return s.GetByID(confirmed.ID, companyID)
}

// Cancel 取消订单。已确认订单的消耗用正向冲销分录回补，未终态工单一并取消
func (s *OrderService) Cancel(ctx context.Context, orderID, companyID, userID string) (*entity.ManufacturingOrder, error) {
	var cancelled *entity.ManufacturingOrder
	var restoredItems []string

	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.lockOrder(tx, orderID, companyID)
		if err != nil {
			return err
		}
		if !CanTransitionOrder(order.State, entity.OrderStateCancelled) {
			return apperr.InvalidTransition("订单 %s 状态为 %s，不允许取消", order.OrderNumber, order.State)
		}

		if order.State == entity.OrderStateConfirmed {
			entries, err := s.ledger.ledgerRepo.ListByReference(tx, companyID, "MO", order.ID, entity.VoucherManufacturingConsumption)
			if err != nil {
				return fmt.Errorf("读取消耗分录失败: %w", err)
			}
			sort.Slice(entries, func(i, j int) bool { return entries[i].ItemID < entries[j].ItemID })

			for _, e := range entries {
				item, err := s.itemRepo.LockByID(tx, e.ItemID, companyID)
				if err != nil {
					return fmt.Errorf("锁定组件物料失败: %w", err)
				}
				// 冲销为正向分录，负库存策略不适用
				_, err = s.ledger.ApplyTx(tx, item, ApplyMovement{
					QtyDelta:      e.QtyDelta.Neg(),
					VoucherType:   entity.VoucherConsumptionReversal,
					ReferenceType: "MO",
					ReferenceID:   order.ID,
					CreatedBy:     userID,
				}, true)
				if err != nil {
					return err
				}
				restoredItems = append(restoredItems, item.ID)
			}
		}

		workOrders, err := s.orderRepo.ListWorkOrdersByOrder(tx, order.ID)
		if err != nil {
			return fmt.Errorf("读取工单失败: %w", err)
		}
		for i := range workOrders {
			wo := &workOrders[i]
			if IsTerminalWorkOrderState(wo.State) {
				continue
			}
			wo.State = entity.WorkOrderStateCancelled
			if err := s.orderRepo.UpdateWorkOrder(tx, wo); err != nil {
				return fmt.Errorf("取消工单失败: %w", err)
			}
		}

		order.State = entity.OrderStateCancelled
		if err := s.orderRepo.Update(tx, order); err != nil {
			return fmt.Errorf("更新订单状态失败: %w", err)
		}
		cancelled = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, itemID := range restoredItems {
		s.ledger.InvalidateStock(ctx, companyID, itemID)
	}
	s.logger.Info("Manufacturing order cancelled",
		zap.String("order_id", cancelled.ID),
		zap.Int("restored_components", len(restoredItems)),
	)
	return s.GetByID(cancelled.ID, companyID)
}

// Start 开工 CONFIRMED → IN_PROGRESS
func (s *OrderService) Start(orderID, companyID string) (*entity.ManufacturingOrder, error) {
	err := s.transition(orderID, companyID, entity.OrderStateInProgress, nil)
	if err != nil {
		return nil, err
	}
	return s.GetByID(orderID, companyID)
}

// Complete 完工 IN_PROGRESS → DONE。要求所有工单已到终态，并记录成品入库
func (s *OrderService) Complete(ctx context.Context, orderID, companyID, userID string) (*entity.ManufacturingOrder, error) {
	var itemID string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.lockOrder(tx, orderID, companyID)
		if err != nil {
			return err
		}
		if !CanTransitionOrder(order.State, entity.OrderStateDone) {
			return apperr.InvalidTransition("订单 %s 状态为 %s，不允许完工", order.OrderNumber, order.State)
		}

		workOrders, err := s.orderRepo.ListWorkOrdersByOrder(tx, order.ID)
		if err != nil {
			return fmt.Errorf("读取工单失败: %w", err)
		}
		for _, wo := range workOrders {
			if !IsTerminalWorkOrderState(wo.State) {
				return apperr.Conflict("工单 %s 尚未完成，订单不能完工", wo.Name)
			}
		}

		item, err := s.itemRepo.LockByID(tx, order.ItemID, companyID)
		if err != nil {
			return fmt.Errorf("锁定成品物料失败: %w", err)
		}
		_, err = s.ledger.ApplyTx(tx, item, ApplyMovement{
			QtyDelta:      order.PlannedQty,
			VoucherType:   entity.VoucherManufacturingReceipt,
			ReferenceType: "MO",
			ReferenceID:   order.ID,
			CreatedBy:     userID,
		}, true)
		if err != nil {
			return err
		}
		itemID = item.ID

		now := time.Now()
		order.State = entity.OrderStateDone
		order.ActualEnd = &now
		return s.orderRepo.Update(tx, order)
	})
	if err != nil {
		return nil, err
	}

	s.ledger.InvalidateStock(ctx, companyID, itemID)
	return s.GetByID(orderID, companyID)
}

// StartWorkOrder 工单开工 TODO → IN_PROGRESS，记录操作员
func (s *OrderService) StartWorkOrder(id, companyID, operatorID string) (*entity.WorkOrder, error) {
	return s.transitionWorkOrder(id, companyID, entity.WorkOrderStateInProgress, func(wo *entity.WorkOrder) {
		now := time.Now()
		wo.OperatorID = operatorID
		wo.StartedAt = &now
	})
}

// FinishWorkOrder 工单完工 IN_PROGRESS → DONE
func (s *OrderService) FinishWorkOrder(id, companyID string) (*entity.WorkOrder, error) {
	return s.transitionWorkOrder(id, companyID, entity.WorkOrderStateDone, func(wo *entity.WorkOrder) {
		now := time.Now()
		wo.FinishedAt = &now
	})
}

// CancelWorkOrder 取消单个工单
func (s *OrderService) CancelWorkOrder(id, companyID string) (*entity.WorkOrder, error) {
	return s.transitionWorkOrder(id, companyID, entity.WorkOrderStateCancelled, nil)
}

func (s *OrderService) lockOrder(tx *gorm.DB, orderID, companyID string) (*entity.ManufacturingOrder, error) {
	order, err := s.orderRepo.LockByID(tx, orderID, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("订单 %s 不存在", orderID)
		}
		return nil, fmt.Errorf("锁定订单失败: %w", err)
	}
	return order, nil
}

// transition 简单订单状态迁移（无台账副作用）
func (s *OrderService) transition(orderID, companyID, to string, mutate func(*entity.ManufacturingOrder)) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.lockOrder(tx, orderID, companyID)
		if err != nil {
			return err
		}
		if !CanTransitionOrder(order.State, to) {
			return apperr.InvalidTransition("订单 %s 状态为 %s，不允许迁移到 %s", order.OrderNumber, order.State, to)
		}
		order.State = to
		if mutate != nil {
			mutate(order)
		}
		return s.orderRepo.Update(tx, order)
	})
}

func (s *OrderService) transitionWorkOrder(id, companyID, to string, mutate func(*entity.WorkOrder)) (*entity.WorkOrder, error) {
	var result *entity.WorkOrder
	err := s.db.Transaction(func(tx *gorm.DB) error {
		wo, err := s.orderRepo.LockWorkOrder(tx, id, companyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("工单 %s 不存在", id)
			}
			return fmt.Errorf("锁定工单失败: %w", err)
		}
		if !CanTransitionWorkOrder(wo.State, to) {
			return apperr.InvalidTransition("工单 %s 状态为 %s，不允许迁移到 %s", wo.Name, wo.State, to)
		}
		wo.State = to
		if mutate != nil {
			mutate(wo)
		}
		if err := s.orderRepo.UpdateWorkOrder(tx, wo); err != nil {
			return err
		}
		result = wo
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
