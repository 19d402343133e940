package organization

import (
	"context"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/user"
)

// RelationRepository stores the supervisor-employee relation. An employee has
// at most one supervisor; assigning again replaces the previous one.
type RelationRepository interface {
	GetSupervisorID(ctx context.Context, employeeID string) (string, error)
	IsDirectSupervisor(ctx context.Context, supervisorID, employeeID string) (bool, error)
	Assign(ctx context.Context, supervisorID, employeeID string) error
	Unassign(ctx context.Context, employeeID string) error
	ListEmployees(ctx context.Context, supervisorID string) ([]user.Profile, error)
	ListAll(ctx context.Context) ([]Relation, error)
	// ListUnassigned returns users without a supervisor on record, leaving
	// out HR managers who sit at the top of the hierarchy.
	ListUnassigned(ctx context.Context) ([]user.Profile, error)
}
