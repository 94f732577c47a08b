package model

import (
	"fmt"
	"strings"
)

// AdminRole is the role claim attached to an account. The zero value is "no role".
type AdminRole string

const (
	RoleNone         AdminRole = ""
	RoleContentAdmin AdminRole = "content_admin"
	RoleSuperAdmin   AdminRole = "super_admin"
)

// roleGrants is the privilege table. Anything not listed is denied.
var roleGrants = map[AdminRole][]Permission{
	RoleNone: nil,
	RoleContentAdmin: {
		PermissionUsersRead,
		PermissionUsersApprove,
		PermissionContentWrite,
	},
	RoleSuperAdmin: {
		PermissionUsersRead,
		PermissionUsersApprove,
		PermissionContentWrite,
		PermissionAdminsRead,
		PermissionAdminsManage,
	},
}

// roleRank orders roles by privilege.
var roleRank = map[AdminRole]int{
	RoleNone:         0,
	RoleContentAdmin: 1,
	RoleSuperAdmin:   2,
}

// ParseAdminRole accepts "", "none", "content_admin" and "super_admin".
func ParseAdminRole(s string) (AdminRole, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "", "none":
		return RoleNone, nil
	case string(RoleContentAdmin), string(RoleSuperAdmin):
		return AdminRole(v), nil
	default:
		return RoleNone, fmt.Errorf("unknown admin role %q", s)
	}
}

// Valid reports whether r is one of the known roles, including none.
func (r AdminRole) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// Assignable reports whether r can be granted through role management.
func (r AdminRole) Assignable() bool {
	return r == RoleContentAdmin || r == RoleSuperAdmin
}

// IsAdmin reports whether r grants access to the admin dashboard.
func (r AdminRole) IsAdmin() bool {
	return roleRank[r] > 0
}

// AtLeast reports whether r is as privileged as other.
func (r AdminRole) AtLeast(other AdminRole) bool {
	rank, ok := roleRank[r]
	return ok && rank >= roleRank[other]
}

// Can reports whether the role grants permission p.
func (r AdminRole) Can(p Permission) bool {
	for _, granted := range roleGrants[r] {
		if granted == p {
			return true
		}
	}
	return false
}

// Permissions returns the permission codes granted to r.
func (r AdminRole) Permissions() []string {
	grants := roleGrants[r]
	out := make([]string, len(grants))
	for i, p := range grants {
		out[i] = string(p)
	}
	return out
}

// String renders the role, using "none" for the zero value.
func (r AdminRole) String() string {
	if r == RoleNone {
		return "none"
	}
	return string(r)
}
