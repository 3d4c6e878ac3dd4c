package auth

const (
	RoleOwner    = "owner"
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// CanManage reports whether a role may perform employer actions: adding
// employees, running payroll, viewing the roster, managing hiring.
func CanManage(role string) bool {
	return role == RoleOwner || role == RoleAdmin
}
