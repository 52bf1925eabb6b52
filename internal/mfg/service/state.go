package service

import (
	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/entity"
)

// orderTransitions 制造订单合法状态迁移表
var orderTransitions = map[string][]string{
	entity.OrderStateDraft:      {entity.OrderStateConfirmed, entity.OrderStateCancelled},
	entity.OrderStateConfirmed:  {entity.OrderStateInProgress, entity.OrderStateCancelled},
	entity.OrderStateInProgress: {entity.OrderStateDone},
	entity.OrderStateDone:       {},
	entity.OrderStateCancelled:  {},
}

// workOrderTransitions 工单合法状态迁移表
var workOrderTransitions = map[string][]string{
	entity.WorkOrderStateTodo:       {entity.WorkOrderStateInProgress, entity.WorkOrderStateCancelled},
	entity.WorkOrderStateInProgress: {entity.WorkOrderStateDone, entity.WorkOrderStateCancelled},
	entity.WorkOrderStateDone:       {},
	entity.WorkOrderStateCancelled:  {},
}

// CanTransitionOrder 判断制造订单状态迁移是否合法
func CanTransitionOrder(from, to string) bool {
	return canTransition(orderTransitions, from, to)
}

// CanTransitionWorkOrder 判断工单状态迁移是否合法
func CanTransitionWorkOrder(from, to string) bool {
	return canTransition(workOrderTransitions, from, to)
}

// IsTerminalWorkOrderState 工单终态判断
func IsTerminalWorkOrderState(state string) bool {
	return state == entity.WorkOrderStateDone || state == entity.WorkOrderStateCancelled
}

func canTransition(table map[string][]string, from, to string) bool {
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}
