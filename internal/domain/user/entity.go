package user

type Role string

const (
	RoleOwner      Role = "owner"      // Full access including rule maintenance
	RoleAccountant Role = "accountant" // Runs and finalizes payroll
	RoleManager    Role = "manager"    // Read-only view of results
)

func (r Role) Valid() bool {
	_, ok := RolePermissions[r]
	return ok
}
