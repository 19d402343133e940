package user

type Permission string

const (
	// Self Management
	PermissionViewOwnProfile Permission = "profile.view_own"

	// Reviews
	PermissionReviewOwn      Permission = "review.own"
	PermissionReviewViewTeam Permission = "review.view_team"
	PermissionReviewViewAll  Permission = "review.view_all"
	PermissionReviewRate     Permission = "review.rate"

	// Organization
	PermissionOrganizationView   Permission = "organization.view"
	PermissionOrganizationManage Permission = "organization.manage"

	// Reports
	PermissionReportsView Permission = "reports.view"
)

// RolePermissions maps roles to their coarse route permissions.
// Per-review decisions are made by the review access policy.
var RolePermissions = map[Role][]Permission{
	RoleEmployee: {
		PermissionViewOwnProfile,
		PermissionReviewOwn,
	},
	RoleSupervisor: {
		PermissionViewOwnProfile,
		PermissionReviewOwn,
		PermissionReviewViewTeam,
		PermissionReviewRate,
	},
	RoleHRManager: {
		PermissionViewOwnProfile,
		PermissionReviewOwn,
		PermissionReviewViewTeam,
		PermissionReviewViewAll,
		PermissionReviewRate,
		PermissionOrganizationView,
		PermissionOrganizationManage,
		PermissionReportsView,
	},
}

// HasPermission reports whether any role in roles grants permission.
func HasPermission(roles RoleSet, permission Permission) bool {
	for _, role := range roles.Roles() {
		for _, p := range RolePermissions[role] {
			if p == permission {
				return true
			}
		}
	}
	return false
}
