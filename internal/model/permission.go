package model

// Permission represents a string code for a specific system action.
type Permission string

const (
	// PermissionUsersRead allows viewing the member registry.
	PermissionUsersRead Permission = "users:read"

	// PermissionUsersApprove allows approving and rejecting pending registrations.
	PermissionUsersApprove Permission = "users:approve"

	// PermissionContentWrite allows managing jobs, news, roadmaps, events and achievements.
	PermissionContentWrite Permission = "content:write"

	// PermissionAdminsRead allows viewing accounts holding an admin role.
	PermissionAdminsRead Permission = "admins:read"

	// PermissionAdminsManage allows assigning and removing admin roles.
	PermissionAdminsManage Permission = "admins:manage"
)

// AllPermissions is a slice of all available permissions.
var AllPermissions = []Permission{
	PermissionUsersRead,
	PermissionUsersApprove,
	PermissionContentWrite,
	PermissionAdminsRead,
	PermissionAdminsManage,
}
