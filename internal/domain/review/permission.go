package review

import "github.com/cmlabs-hris/performance-review-backend-go/internal/domain/user"

// PermissionContext carries everything needed to decide what an actor may do
// with one employee's review. IsDirectSupervisor is resolved by the caller from
// the supervisor-employee relation.
type PermissionContext struct {
	ActorID            string
	ActorRoles         user.RoleSet
	TargetEmployeeID   string
	Status             Status
	ReviewSupervisorID *string
	IsDirectSupervisor bool
}

// PermissionSet is computed once per request and passed to every write path.
type PermissionSet struct {
	IsSelf                      bool `json:"is_self"`
	IsSupervisorViewingOwn      bool `json:"is_supervisor_viewing_own"`
	EffectiveIsSupervisor       bool `json:"effective_is_supervisor"`
	EffectiveIsDirectSupervisor bool `json:"effective_is_direct_supervisor"`
	IsHRManager                 bool `json:"is_hr_manager"`
	IsSubmitted                 bool `json:"is_submitted"`
	CanView                     bool `json:"can_view"`
	CanEditAsEmployee           bool `json:"can_edit_as_employee"`
	CanEditRatings              bool `json:"can_edit_ratings"`
	CanEditSupervisorComment    bool `json:"can_edit_supervisor_comment"`
	CanEditDevelopmentGoals     bool `json:"can_edit_development_goals"`
	CanSubmit                   bool `json:"can_submit"`
	EffectiveReadOnly           bool `json:"effective_read_only"`
}

// ResolvePermissions applies the review access matrix.
//
// A supervisor looking at their own review is treated as a plain employee, so
// they can never rate themselves even when a stale relation row says otherwise.
func ResolvePermissions(pc PermissionContext) PermissionSet {
	var p PermissionSet

	isHR := pc.ActorRoles.IsHRManager()

	p.IsSelf = pc.ActorID != "" && pc.ActorID == pc.TargetEmployeeID
	p.IsSupervisorViewingOwn = pc.ActorRoles.IsSupervisor() && p.IsSelf
	p.EffectiveIsSupervisor = pc.ActorRoles.IsSupervisor() && !p.IsSupervisorViewingOwn
	p.EffectiveIsDirectSupervisor = pc.IsDirectSupervisor && !p.IsSupervisorViewingOwn
	p.IsHRManager = isHR
	p.IsSubmitted = pc.Status == StatusSubmitted

	p.CanEditAsEmployee = p.IsSelf && !p.IsSubmitted
	p.CanEditRatings = (p.EffectiveIsDirectSupervisor || isHR) && !p.IsSelf
	p.CanEditSupervisorComment = p.CanEditRatings
	p.CanEditDevelopmentGoals = (p.IsSelf || p.EffectiveIsDirectSupervisor) && !p.IsSubmitted
	p.CanSubmit = !p.IsSubmitted && (p.CanEditAsEmployee || p.CanEditRatings)

	p.EffectiveReadOnly = !p.CanEditAsEmployee && !p.EffectiveIsDirectSupervisor && !isHR
	if p.IsSupervisorViewingOwn && !p.CanEditAsEmployee {
		p.EffectiveReadOnly = true
	}

	p.CanView = p.IsSelf || p.EffectiveIsDirectSupervisor || p.EffectiveIsSupervisor || isHR

	return p
}

// CanCreateReview reports whether actor may cause a review to be created for
// targetEmployeeID when none exists yet.
func CanCreateReview(actorID string, roles user.RoleSet, targetEmployeeID string) bool {
	if actorID != "" && actorID == targetEmployeeID {
		return true
	}
	return roles.IsSupervisor() || roles.IsHRManager()
}
