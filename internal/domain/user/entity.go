package user

type Role string

const (
	RoleSuperAdmin Role = "super_admin" // Platform operator - bypasses tenant gates
	RoleAdmin      Role = "admin"       // Organization administrator
	RoleEmployee   Role = "employee"    // Regular employee
	RoleUnknown    Role = "unknown"     // Legacy or unrecognized value
)

// ParseRole maps a stored or claimed role string onto a known Role.
// Anything unrecognized becomes RoleUnknown rather than being coerced.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleSuperAdmin, RoleAdmin, RoleEmployee:
		return Role(s)
	default:
		return RoleUnknown
	}
}

// IsSuperAdmin checks if the role is the platform super administrator
func (r Role) IsSuperAdmin() bool {
	return r == RoleSuperAdmin
}

// CanManageOrganization checks if the role may administer shifts, attendance and settings
func (r Role) CanManageOrganization() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}
