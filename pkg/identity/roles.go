package identity

// Role is the authorization level granted to an account. Roles form a
// total order; a higher role satisfies any lower role requirement.
type Role string

const (
	RoleUser       Role = "user"
	RolePremium    Role = "premium"
	RoleModerator  Role = "moderator"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Permission is an atomic capability grant from a fixed vocabulary.
// Checked by set membership, never by ordering.
type Permission string

const (
	PermReadProfile  Permission = "read:profile"
	PermWriteProfile Permission = "write:profile"
	PermReadUsers    Permission = "read:users"
	PermManageUsers  Permission = "manage:users"
	PermManageRoles  Permission = "manage:roles"
	PermDeleteUsers  Permission = "delete:users"
	PermViewStats    Permission = "view:stats"
)

// Level maps a role to its numeric hierarchy level. Unknown roles resolve
// to 0, which denies access to any protected requirement (fail-closed).
func (r Role) Level() int {
	switch r {
	case RoleUser:
		return 1
	case RolePremium:
		return 2
	case RoleModerator:
		return 3
	case RoleAdmin:
		return 4
	case RoleSuperAdmin:
		return 5
	default:
		return 0
	}
}

// AtLeast reports whether the role meets or exceeds the required role.
func (r Role) AtLeast(required Role) bool {
	return r.Level() >= required.Level()
}

// IsValid reports whether the role is one of the predefined values.
func (r Role) IsValid() bool {
	return r.Level() > 0
}

// AllRoles returns the predefined roles in ascending hierarchical order.
func AllRoles() []Role {
	return []Role{RoleUser, RolePremium, RoleModerator, RoleAdmin, RoleSuperAdmin}
}

// HasAccess is the access-control predicate behind gated content. It has
// no side effects and is safe to call on every render.
//
// A nil user is always denied. When requiredRole is non-empty the user's
// role level must be at least the required level. When requiredPermissions
// is non-empty the user must hold every listed permission. Both checks
// must pass when both are given.
func HasAccess(u *User, requiredRole Role, requiredPermissions []Permission) bool {
	if u == nil {
		return false
	}
	if requiredRole != "" && !u.Role.AtLeast(requiredRole) {
		return false
	}
	for _, p := range requiredPermissions {
		if !u.HasPermission(p) {
			return false
		}
	}
	return true
}

// CheckAccess is HasAccess with a reason: it distinguishes a missing user
// (ErrNotAuthenticated) from an authenticated user who fails the role or
// permission requirement (ErrForbidden).
func CheckAccess(u *User, requiredRole Role, requiredPermissions []Permission) error {
	if u == nil {
		return ErrNotAuthenticated
	}
	if !HasAccess(u, requiredRole, requiredPermissions) {
		return ErrForbidden
	}
	return nil
}
