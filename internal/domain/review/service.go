package review

import (
	"context"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/user"
)

type ReviewService interface {
	// GetReview loads the active review of employeeID, creating it when the
	// actor is allowed to, and resolves the actor's permissions on it.
	GetReview(ctx context.Context, actor user.Actor, employeeID string) (ReviewResponse, error)
	// SaveReview applies the employee form. ActionSubmit runs full validation.
	SaveReview(ctx context.Context, actor user.Actor, reviewID string, req SaveReviewRequest) (ReviewResponse, error)
	SaveEmployeeComment(ctx context.Context, actor user.Actor, reviewID string, req CommentRequest) (ReviewResponse, error)
	SaveSupervisorComment(ctx context.Context, actor user.Actor, reviewID string, req CommentRequest) (ReviewResponse, error)
	SaveKPIRatings(ctx context.Context, actor user.Actor, reviewID string, req SaveKPIRatingsRequest) (ReviewResponse, error)
	SaveSkills(ctx context.Context, actor user.Actor, reviewID string, req SaveSkillsRequest) (ReviewResponse, error)
	AddGoal(ctx context.Context, actor user.Actor, reviewID string, req AddGoalRequest) (GoalResponse, error)
	DeleteGoal(ctx context.Context, actor user.Actor, reviewID, goalID string) error
}
