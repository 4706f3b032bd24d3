package auth

import "sort"

// UserRole is the user's role
type UserRole = string

const (
	// RoleUser is the default role for registered accounts
	RoleUser UserRole = "USER"
	// RoleAdmin extends RoleUser with administrative permissions
	RoleAdmin UserRole = "ADMIN"
	// RoleBanned keeps the account readable but strips every mutation permission
	RoleBanned UserRole = "BANNED"
)

// Permission is a fine-grained authority string checked by the
// authorization layer.
type Permission = string

const (
	PermissionContentRead   Permission = "content:read"
	PermissionContentCreate Permission = "content:create"
	PermissionContentUpdate Permission = "content:update"
	PermissionUserBan       Permission = "user:ban"
	PermissionUserUnban     Permission = "user:unban"
	PermissionGrantAdmin    Permission = "user:grant-admin"
)

// rolePermissions is the single source of truth for role capabilities. It is
// defined once and queried by value; roles never dispatch behavior.
var rolePermissions = map[UserRole][]Permission{
	RoleUser: {
		PermissionContentRead,
		PermissionContentCreate,
		PermissionContentUpdate,
	},
	RoleAdmin: {
		PermissionContentRead,
		PermissionContentCreate,
		PermissionContentUpdate,
		PermissionUserBan,
		PermissionUserUnban,
		PermissionGrantAdmin,
	},
	RoleBanned: {
		PermissionContentRead,
	},
}

// IsValidRole checks if the role is one of the predefined valid roles
func IsValidRole(r UserRole) bool {
	_, ok := rolePermissions[r]
	return ok
}

// RoleAuthority returns the coarse "ROLE_<name>" authority for a role.
func RoleAuthority(r UserRole) string {
	return "ROLE_" + r
}

// Permissions returns a copy of the permission set mapped to the role.
// Unknown roles map to nothing.
func Permissions(r UserRole) []Permission {
	perms, ok := rolePermissions[r]
	if !ok {
		return nil
	}

	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// Authorities returns the coarse role authority plus the role's permission
// set, sorted for stable claim encoding. This is what gets embedded into a
// freshly issued access token and what the authorization layer compares
// required permissions against.
func Authorities(r UserRole) []string {
	perms, ok := rolePermissions[r]
	if !ok {
		return nil
	}

	out := make([]string, 0, len(perms)+1)
	out = append(out, RoleAuthority(r))
	out = append(out, perms...)
	sort.Strings(out)
	return out
}

// HasPermission checks the role table for a specific permission.
func HasPermission(r UserRole, p Permission) bool {
	for _, candidate := range rolePermissions[r] {
		if candidate == p {
			return true
		}
	}
	return false
}

// GetAllRoles returns all predefined roles
func GetAllRoles() []UserRole {
	return []UserRole{RoleUser, RoleAdmin, RoleBanned}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, IsValidRole(role)
}
