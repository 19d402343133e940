package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/organization"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/review"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, "Invalid email or password")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")
	case errors.Is(err, auth.ErrRefreshTokenCookieNotFound),
		errors.Is(err, auth.ErrRefreshTokenCookieEmpty):
		Unauthorized(w, "Refresh token missing")
	case errors.Is(err, auth.ErrUserNotFound):
		NotFound(w, "User not found")

	// User domain errors
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrUserEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, user.ErrInvalidRole):
		BadRequest(w, "Invalid role", nil)
	case errors.Is(err, user.ErrSupervisorNotFound):
		BadRequest(w, "Selected supervisor does not exist", nil)
	case errors.Is(err, user.ErrSupervisorAccessRequired):
		Forbidden(w, "Supervisor access required")
	case errors.Is(err, user.ErrHRManagerAccessRequired):
		Forbidden(w, "HR manager access required")

	// Review domain errors
	case errors.Is(err, review.ErrReviewNotFound):
		NotFound(w, "Review not found")
	case errors.Is(err, review.ErrGoalNotFound):
		NotFound(w, "Development goal not found")
	case errors.Is(err, review.ErrKPINotFound):
		NotFound(w, "KPI not found")
	case errors.Is(err, review.ErrSkillNotFound):
		NotFound(w, "Skill evaluation not found")
	case errors.Is(err, review.ErrReviewAccessDenied),
		errors.Is(err, review.ErrEmployeeOnly),
		errors.Is(err, review.ErrFormEditDenied),
		errors.Is(err, review.ErrNotAllowedToRate),
		errors.Is(err, review.ErrSupervisorCommentDenied):
		Forbidden(w, err.Error())
	case errors.Is(err, review.ErrReviewAlreadySubmitted),
		errors.Is(err, review.ErrGoalsLocked),
		errors.Is(err, review.ErrInvalidStatus):
		Conflict(w, err.Error())
	case errors.Is(err, review.ErrConcurrentModification):
		Conflict(w, "Review was modified by someone else, reload and try again")
	case errors.Is(err, review.ErrInvalidAction):
		BadRequest(w, "Action must be one of: save, submit", nil)
	case errors.Is(err, review.ErrNothingSaved):
		UnprocessableEntity(w, "No changes could be saved")

	// Organization domain errors
	case errors.Is(err, organization.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, organization.ErrSupervisorNotFound):
		NotFound(w, "Supervisor not found")
	case errors.Is(err, organization.ErrRelationNotFound):
		NotFound(w, "Employee has no supervisor assigned")
	case errors.Is(err, organization.ErrNotASupervisor):
		BadRequest(w, "Selected user does not hold the supervisor role", nil)
	case errors.Is(err, organization.ErrSupervisionCycle):
		Conflict(w, "Assignment would create a supervision cycle")

	// Report domain errors
	case errors.Is(err, report.ErrUnsupportedFormat):
		BadRequest(w, "Format must be one of: csv, pdf", nil)
	case errors.Is(err, report.ErrReportGenerationFailed):
		slog.Error("report generation failed", "error", err)
		InternalServerError(w, "Failed to generate report")

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
