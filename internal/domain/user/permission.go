package user

import "slices"

type Permission string

const (
	// Payroll
	PermissionPayrollView     Permission = "payroll.view"
	PermissionPayrollCompute  Permission = "payroll.compute"
	PermissionPayrollFinalize Permission = "payroll.finalize"

	// Commission
	PermissionCommissionView    Permission = "commission.view"
	PermissionCommissionCompute Permission = "commission.compute"
	PermissionCommissionTiers   Permission = "commission.manage_tiers"

	// Rules
	PermissionRulesView   Permission = "rules.view"
	PermissionRulesManage Permission = "rules.manage"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleOwner: {
		PermissionPayrollView,
		PermissionPayrollCompute,
		PermissionPayrollFinalize,
		PermissionCommissionView,
		PermissionCommissionCompute,
		PermissionCommissionTiers,
		PermissionRulesView,
		PermissionRulesManage,
	},
	RoleAccountant: {
		PermissionPayrollView,
		PermissionPayrollCompute,
		PermissionPayrollFinalize,
		PermissionCommissionView,
		PermissionCommissionCompute,
		PermissionRulesView,
	},
	RoleManager: {
		PermissionPayrollView,
		PermissionCommissionView,
		PermissionRulesView,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}
	return slices.Contains(permissions, permission)
}
