package organization

import (
	"context"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/user"
)

type OrganizationService interface {
	// ListSupervisors feeds the supervisor selector shown at registration.
	ListSupervisors(ctx context.Context) ([]SupervisorOption, error)
	// GetTeam lists the direct reports of the calling supervisor.
	GetTeam(ctx context.Context, actor user.Actor) (TeamResponse, error)
	// GetOrganization lists every supervisor with their team and the
	// employees nobody supervises. HR only.
	GetOrganization(ctx context.Context, actor user.Actor) (OrganizationResponse, error)
	// AssignSupervisor sets the supervisor of an employee, replacing any previous one. HR only.
	AssignSupervisor(ctx context.Context, actor user.Actor, req AssignSupervisorRequest) error
}
