package review

import (
	"testing"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
)

var allRoleSets = []user.RoleSet{
	user.NewRoleSet(),
	user.NewRoleSet(user.RoleEmployee),
	user.NewRoleSet(user.RoleSupervisor),
	user.NewRoleSet(user.RoleHRManager),
	user.NewRoleSet(user.RoleEmployee, user.RoleSupervisor),
	user.NewRoleSet(user.RoleEmployee, user.RoleHRManager),
	user.NewRoleSet(user.RoleSupervisor, user.RoleHRManager),
	user.NewRoleSet(user.RoleEmployee, user.RoleSupervisor, user.RoleHRManager),
}

var allStatuses = []Status{StatusPending, StatusDraft, StatusSubmitted}

func TestResolvePermissions_PlainEmployeeOnOthersIsReadOnly(t *testing.T) {
	for _, status := range allStatuses {
		p := ResolvePermissions(PermissionContext{
			ActorID:          "emp-1",
			ActorRoles:       user.NewRoleSet(user.RoleEmployee),
			TargetEmployeeID: "emp-2",
			Status:           status,
		})
		assert.True(t, p.EffectiveReadOnly, "status %s", status)
		assert.False(t, p.CanView, "status %s", status)
		assert.False(t, p.CanEditRatings)
		assert.False(t, p.CanEditAsEmployee)
	}
}

func TestResolvePermissions_NeverRateSelf(t *testing.T) {
	for _, roles := range allRoleSets {
		for _, status := range allStatuses {
			for _, direct := range []bool{false, true} {
				p := ResolvePermissions(PermissionContext{
					ActorID:            "u-1",
					ActorRoles:         roles,
					TargetEmployeeID:   "u-1",
					Status:             status,
					IsDirectSupervisor: direct,
				})
				assert.True(t, p.IsSelf)
				assert.False(t, p.CanEditRatings, "roles %v status %s direct %v", roles.Strings(), status, direct)
				assert.False(t, p.CanEditSupervisorComment)
			}
		}
	}
}

func TestResolvePermissions_SupervisorViewingOwn(t *testing.T) {
	roles := user.NewRoleSet(user.RoleEmployee, user.RoleSupervisor)

	draft := ResolvePermissions(PermissionContext{
		ActorID: "sup", ActorRoles: roles, TargetEmployeeID: "sup",
		Status: StatusDraft, IsDirectSupervisor: true,
	})
	assert.True(t, draft.IsSupervisorViewingOwn)
	assert.False(t, draft.EffectiveIsSupervisor)
	assert.False(t, draft.EffectiveIsDirectSupervisor)
	assert.True(t, draft.CanEditAsEmployee)
	assert.False(t, draft.EffectiveReadOnly)
	assert.True(t, draft.CanSubmit)

	submitted := ResolvePermissions(PermissionContext{
		ActorID: "sup", ActorRoles: roles, TargetEmployeeID: "sup",
		Status: StatusSubmitted, IsDirectSupervisor: true,
	})
	assert.True(t, submitted.EffectiveReadOnly)
	assert.False(t, submitted.CanEditAsEmployee)
	assert.False(t, submitted.CanSubmit)
	assert.True(t, submitted.CanView)
}

func TestResolvePermissions_Matrix(t *testing.T) {
	supervisor := user.GrantedRoles(user.RoleSupervisor)
	hr := user.GrantedRoles(user.RoleHRManager)

	tests := []struct {
		name   string
		pc     PermissionContext
		assert func(t *testing.T, p PermissionSet)
	}{
		{
			name: "employee edits own pending review",
			pc:   PermissionContext{ActorID: "e", ActorRoles: user.GrantedRoles(user.RoleEmployee), TargetEmployeeID: "e", Status: StatusPending},
			assert: func(t *testing.T, p PermissionSet) {
				assert.True(t, p.CanEditAsEmployee)
				assert.True(t, p.CanEditDevelopmentGoals)
				assert.False(t, p.CanEditRatings)
				assert.False(t, p.EffectiveReadOnly)
				assert.True(t, p.CanSubmit)
			},
		},
		{
			name: "employee after submission",
			pc:   PermissionContext{ActorID: "e", ActorRoles: user.GrantedRoles(user.RoleEmployee), TargetEmployeeID: "e", Status: StatusSubmitted},
			assert: func(t *testing.T, p PermissionSet) {
				assert.True(t, p.IsSubmitted)
				assert.False(t, p.CanEditAsEmployee)
				assert.False(t, p.CanEditDevelopmentGoals)
				assert.True(t, p.EffectiveReadOnly)
				assert.True(t, p.CanView)
			},
		},
		{
			name: "direct supervisor rates a submitted review",
			pc:   PermissionContext{ActorID: "s", ActorRoles: supervisor, TargetEmployeeID: "e", Status: StatusSubmitted, IsDirectSupervisor: true},
			assert: func(t *testing.T, p PermissionSet) {
				assert.True(t, p.CanEditRatings)
				assert.True(t, p.CanEditSupervisorComment)
				assert.False(t, p.CanEditDevelopmentGoals)
				assert.False(t, p.CanEditAsEmployee)
				assert.False(t, p.EffectiveReadOnly)
				assert.False(t, p.CanSubmit)
			},
		},
		{
			name: "direct supervisor on a draft",
			pc:   PermissionContext{ActorID: "s", ActorRoles: supervisor, TargetEmployeeID: "e", Status: StatusDraft, IsDirectSupervisor: true},
			assert: func(t *testing.T, p PermissionSet) {
				assert.True(t, p.CanEditRatings)
				assert.True(t, p.CanEditDevelopmentGoals)
				assert.True(t, p.CanSubmit)
			},
		},
		{
			name: "other supervisor can look but not rate",
			pc:   PermissionContext{ActorID: "s2", ActorRoles: supervisor, TargetEmployeeID: "e", Status: StatusDraft},
			assert: func(t *testing.T, p PermissionSet) {
				assert.True(t, p.CanView)
				assert.True(t, p.EffectiveIsSupervisor)
				assert.False(t, p.CanEditRatings)
				assert.True(t, p.EffectiveReadOnly)
			},
		},
		{
			name: "hr rates anyone",
			pc:   PermissionContext{ActorID: "h", ActorRoles: hr, TargetEmployeeID: "e", Status: StatusSubmitted},
			assert: func(t *testing.T, p PermissionSet) {
				assert.True(t, p.IsHRManager)
				assert.True(t, p.CanView)
				assert.True(t, p.CanEditRatings)
				assert.False(t, p.CanEditDevelopmentGoals)
				assert.False(t, p.EffectiveReadOnly)
			},
		},
		{
			name: "hr on own review is an employee",
			pc:   PermissionContext{ActorID: "h", ActorRoles: hr, TargetEmployeeID: "h", Status: StatusDraft},
			assert: func(t *testing.T, p PermissionSet) {
				assert.False(t, p.CanEditRatings)
				assert.True(t, p.CanEditAsEmployee)
			},
		},
		{
			name: "anonymous actor never matches self",
			pc:   PermissionContext{ActorID: "", ActorRoles: user.NewRoleSet(), TargetEmployeeID: "", Status: StatusDraft},
			assert: func(t *testing.T, p PermissionSet) {
				assert.False(t, p.IsSelf)
				assert.False(t, p.CanView)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.assert(t, ResolvePermissions(tt.pc))
		})
	}
}

func TestCanCreateReview(t *testing.T) {
	assert.True(t, CanCreateReview("e", user.GrantedRoles(user.RoleEmployee), "e"))
	assert.False(t, CanCreateReview("e", user.GrantedRoles(user.RoleEmployee), "other"))
	assert.True(t, CanCreateReview("s", user.GrantedRoles(user.RoleSupervisor), "other"))
	assert.True(t, CanCreateReview("h", user.GrantedRoles(user.RoleHRManager), "other"))
	assert.False(t, CanCreateReview("", user.NewRoleSet(), ""))
}
