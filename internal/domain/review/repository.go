package review

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type ReviewRepository interface {
	// GetActiveByEmployee returns the most recently created review of employeeID.
	GetActiveByEmployee(ctx context.Context, employeeID string) (Review, error)
	GetByID(ctx context.Context, id string) (Review, error)
	// GetForUpdate locks the review row for the rest of the transaction.
	GetForUpdate(ctx context.Context, id string) (Review, error)
	// LockEmployee serializes review creation for employeeID until the
	// surrounding transaction ends.
	LockEmployee(ctx context.Context, employeeID string) error
	Create(ctx context.Context, newReview Review) (Review, error)
	UpdateEmployeeFields(ctx context.Context, r Review) (Review, error)
	UpdateSupervisorComment(ctx context.Context, id, comment string) (Review, error)
	// Touch bumps updated_at so concurrent editors notice child row changes.
	Touch(ctx context.Context, id string) (time.Time, error)
	ListActiveByEmployees(ctx context.Context, employeeIDs []string) ([]Review, error)
	// ListOpen returns every active review whose status is not enviado.
	ListOpen(ctx context.Context) ([]Review, error)
}

type KPIRepository interface {
	ListByReview(ctx context.Context, reviewID string) ([]KPI, error)
	Create(ctx context.Context, kpi KPI) (KPI, error)
	Update(ctx context.Context, kpi KPI) error
	UpdateRating(ctx context.Context, reviewID, kpiID string, rating decimal.Decimal) error
	Delete(ctx context.Context, reviewID, kpiID string) error
}

type SkillRepository interface {
	ListByReview(ctx context.Context, reviewID string) ([]SkillEvaluation, error)
	Create(ctx context.Context, skill SkillEvaluation) (SkillEvaluation, error)
	UpdateLevel(ctx context.Context, reviewID, skillName string, level SkillLevel) error
	Delete(ctx context.Context, reviewID, skillName string) error
}

type GoalRepository interface {
	ListByReview(ctx context.Context, reviewID string) ([]DevelopmentGoal, error)
	Create(ctx context.Context, goal DevelopmentGoal) (DevelopmentGoal, error)
	Delete(ctx context.Context, reviewID, goalID string) error
}
