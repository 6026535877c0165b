package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	tests := []struct {
		name       string
		role       Role
		permission Permission
		want       bool
	}{
		{"owner manages rules", RoleOwner, PermissionRulesManage, true},
		{"accountant cannot manage rules", RoleAccountant, PermissionRulesManage, false},
		{"accountant finalizes payroll", RoleAccountant, PermissionPayrollFinalize, true},
		{"manager views payroll", RoleManager, PermissionPayrollView, true},
		{"manager cannot compute", RoleManager, PermissionPayrollCompute, false},
		{"unknown role", Role("intern"), PermissionPayrollView, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasPermission(tt.role, tt.permission))
		})
	}
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleOwner.Valid())
	assert.False(t, Role("").Valid())
}
