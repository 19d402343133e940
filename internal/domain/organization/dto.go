package organization

import (
	"time"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/review"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/pkg/validator"
)

type AssignSupervisorRequest struct {
	EmployeeID   string `json:"employee_id"`
	SupervisorID string `json:"supervisor_id"`
}

func (r *AssignSupervisorRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if validator.IsEmpty(r.SupervisorID) {
		errs = append(errs, validator.ValidationError{
			Field:   "supervisor_id",
			Message: "supervisor_id is required",
		})
	}
	if len(errs) == 0 && r.EmployeeID == r.SupervisorID {
		errs = append(errs, validator.ValidationError{
			Field:   "supervisor_id",
			Message: "supervisor_id must differ from employee_id",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// TeamMember is an employee together with the state of their active review.
type TeamMember struct {
	user.Profile
	ReviewID        *string        `json:"review_id,omitempty"`
	ReviewStatus    *review.Status `json:"review_status,omitempty"`
	ReviewUpdatedAt *time.Time     `json:"review_updated_at,omitempty"`
}

type TeamResponse struct {
	SupervisorID string       `json:"supervisor_id"`
	Members      []TeamMember `json:"members"`
}

type SupervisorTeam struct {
	Supervisor user.Profile `json:"supervisor"`
	Members    []TeamMember `json:"members"`
}

type OrganizationResponse struct {
	Supervisors []SupervisorTeam `json:"supervisors"`
	Unassigned  []TeamMember     `json:"unassigned"`
}

type SupervisorOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
