package domain

// Institutional roles as stored on users.role.
const (
	RoleStaff            = "staff"
	RoleHeadOfDepartment = "head_of_department"
	RoleDean             = "dean"
	RolePrincipal        = "principal"
	RoleDirector         = "director"
	RoleHRAdmin          = "hr_admin"
	RoleAdmin            = "admin"
)

// Approval levels an approval chain is built from. A level either binds to a
// specific person (resolved through the applicant's department) or to a role
// pool any matching active user may act for.
const (
	LevelHeadOfDepartment = "head_of_department"
	LevelDean             = "dean"
	LevelPrincipal        = "principal"
	LevelHRAdmin          = "hr_admin"
	LevelAdminPool        = "admin_pool"
)

// PoolRolesFor returns the roles whose members may act on a pooled level,
// or nil when the level binds to a specific person.
func PoolRolesFor(level string) []string {
	switch level {
	case LevelHRAdmin:
		return []string{RoleHRAdmin}
	case LevelAdminPool:
		return []string{RoleAdmin, RoleHRAdmin}
	default:
		return nil
	}
}

// PoolLevelsFor is the inverse view: the pooled levels a role may act on.
func PoolLevelsFor(role string) []string {
	switch role {
	case RoleHRAdmin:
		return []string{LevelHRAdmin, LevelAdminPool}
	case RoleAdmin:
		return []string{LevelAdminPool}
	default:
		return nil
	}
}
