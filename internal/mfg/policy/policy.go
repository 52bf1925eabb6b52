// Package policy 集中式角色权限判定，取代散落在各路由里的角色检查
package policy

// 角色
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleOperator = "operator"
	RoleViewer   = "viewer"
)

// 动作
const (
	ActionRead    = "read"
	ActionCreate  = "create"
	ActionConfirm = "confirm"
	ActionCancel  = "cancel"
	ActionExecute = "execute"
	ActionAdjust  = "adjust"
	ActionExport  = "export"
)

// 资源
const (
	ResourceOrder     = "manufacturing_order"
	ResourceWorkOrder = "work_order"
	ResourceBOM       = "bom"
	ResourceStock     = "stock"
)

type rule struct {
	action   string
	resource string
}

// rolePolicies 角色允许的 (action, resource) 白名单，admin 放行全部
var rolePolicies = map[string]map[rule]bool{
	RoleManager: {
		{ActionRead, ResourceOrder}:        true,
		{ActionCreate, ResourceOrder}:      true,
		{ActionConfirm, ResourceOrder}:     true,
		{ActionCancel, ResourceOrder}:      true,
		{ActionExecute, ResourceOrder}:     true,
		{ActionRead, ResourceWorkOrder}:    true,
		{ActionExecute, ResourceWorkOrder}: true,
		{ActionCancel, ResourceWorkOrder}:  true,
		{ActionRead, ResourceBOM}:          true,
		{ActionCreate, ResourceBOM}:        true,
		{ActionRead, ResourceStock}:        true,
		{ActionAdjust, ResourceStock}:      true,
		{ActionExport, ResourceStock}:      true,
	},
	RoleOperator: {
		{ActionRead, ResourceOrder}:        true,
		{ActionRead, ResourceWorkOrder}:    true,
		{ActionExecute, ResourceWorkOrder}: true,
		{ActionRead, ResourceBOM}:          true,
		{ActionRead, ResourceStock}:        true,
	},
	RoleViewer: {
		{ActionRead, ResourceOrder}:     true,
		{ActionRead, ResourceWorkOrder}: true,
		{ActionRead, ResourceBOM}:       true,
		{ActionRead, ResourceStock}:     true,
	},
}

// Can 判断角色是否允许对资源执行动作
func Can(role, action, resource string) bool {
	if role == RoleAdmin {
		return true
	}
	rules, ok := rolePolicies[role]
	if !ok {
		return false
	}
	return rules[rule{action: action, resource: resource}]
}
