package policy

import "testing"

func TestCan(t *testing.T) {
	tests := []struct {
		role     string
		action   string
		resource string
		want     bool
	}{
		{RoleAdmin, ActionAdjust, ResourceStock, true},
		{RoleAdmin, ActionConfirm, ResourceOrder, true},
		{RoleManager, ActionConfirm, ResourceOrder, true},
		{RoleManager, ActionAdjust, ResourceStock, true},
		{RoleManager, ActionExport, ResourceStock, true},
		{RoleOperator, ActionExecute, ResourceWorkOrder, true},
		{RoleOperator, ActionConfirm, ResourceOrder, false},
		{RoleOperator, ActionAdjust, ResourceStock, false},
		{RoleViewer, ActionRead, ResourceOrder, true},
		{RoleViewer, ActionRead, ResourceStock, true},
		{RoleViewer, ActionConfirm, ResourceOrder, false},
		{RoleViewer, ActionExecute, ResourceWorkOrder, false},
		{"unknown", ActionRead, ResourceOrder, false},
		{"", ActionRead, ResourceOrder, false},
	}
	for _, tt := range tests {
		if got := Can(tt.role, tt.action, tt.resource); got != tt.want {
			t.Errorf("Can(%q, %q, %q) = %v, want %v", tt.role, tt.action, tt.resource, got, tt.want)
		}
	}
}
