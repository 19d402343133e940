package deadline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/deadline"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/organization"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/review"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/pkg/email"
)

type DeadlineServiceImpl struct {
	calculator    deadline.Calculator
	users         user.UserRepository
	reviews       review.ReviewRepository
	relations     organization.RelationRepository
	notifications deadline.NotificationRepository
	emailService  email.EmailService
	now           func() time.Time
}

func NewDeadlineService(
	calculator deadline.Calculator,
	userRepository user.UserRepository,
	reviewRepository review.ReviewRepository,
	relationRepository organization.RelationRepository,
	notificationRepository deadline.NotificationRepository,
	emailService email.EmailService,
) deadline.DeadlineService {
	return &DeadlineServiceImpl{
		calculator:    calculator,
		users:         userRepository,
		reviews:       reviewRepository,
		relations:     relationRepository,
		notifications: notificationRepository,
		emailService:  emailService,
		now:           time.Now,
	}
}

// Info implements deadline.DeadlineService.
func (s *DeadlineServiceImpl) Info(ctx context.Context, userID string) (deadline.Info, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return deadline.Info{}, fmt.Errorf("failed to get user: %w", err)
	}
	return s.calculator.Calculate(u.CreatedAt, s.now()), nil
}

// Check implements deadline.DeadlineService.
//
// Each (user, review, type) notification is claimed before it is sent, so
// concurrent checks and repeated sweeps deliver it at most once. A failed
// delivery gives the claim back for the next check.
func (s *DeadlineServiceImpl) Check(ctx context.Context, userID string) (deadline.CheckResult, error) {
	employee, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return deadline.CheckResult{}, fmt.Errorf("failed to get user: %w", err)
	}

	result := deadline.CheckResult{Info: s.calculator.Calculate(employee.CreatedAt, s.now())}

	rv, err := s.reviews.GetActiveByEmployee(ctx, userID)
	if err != nil {
		if errors.Is(err, review.ErrReviewNotFound) {
			return result, nil
		}
		return result, fmt.Errorf("failed to get review: %w", err)
	}
	result.ReviewID = rv.ID

	// Nothing to remind about once the employee has submitted
	if rv.Status == review.StatusSubmitted {
		return result, nil
	}

	notificationType, due := deadline.EmployeeNotificationFor(result.Info.DaysRemaining)
	if !due {
		return result, nil
	}

	var errs []error
	sent, err := s.deliver(ctx, userID, rv.ID, notificationType, func() error {
		return s.emailService.SendDeadlineReminder(employee.Email, employee.FullName(), notificationType, result.Info.FormattedDeadline)
	})
	if err != nil {
		errs = append(errs, err)
	}
	if sent {
		result.Sent = append(result.Sent, s.record(userID, rv.ID, notificationType))
	}

	if notificationType == deadline.NotificationExpired {
		escalated, err := s.escalate(ctx, employee, rv)
		if err != nil {
			errs = append(errs, err)
		}
		result.Sent = append(result.Sent, escalated...)
	}

	return result, errors.Join(errs...)
}

// Sweep implements deadline.DeadlineService.
func (s *DeadlineServiceImpl) Sweep(ctx context.Context) (deadline.SweepResult, error) {
	var result deadline.SweepResult

	open, err := s.reviews.ListOpen(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list open reviews: %w", err)
	}

	for _, rv := range open {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		checked, err := s.Check(ctx, rv.EmployeeID)
		result.Checked++
		result.Sent += len(checked.Sent)
		if err != nil {
			result.Failed++
			slog.Error("deadline check failed", "user_id", rv.EmployeeID, "review_id", rv.ID, "error", err)
		}
	}

	return result, nil
}

// escalate tells the supervisor and every HR manager that an employee missed
// the deadline.
func (s *DeadlineServiceImpl) escalate(ctx context.Context, employee user.User, rv review.Review) ([]deadline.SentNotification, error) {
	var (
		sent []deadline.SentNotification
		errs []error
	)
	names := []string{employee.FullName()}

	supervisorID, err := s.supervisorOf(ctx, employee.ID, rv)
	if err != nil {
		errs = append(errs, err)
	}
	if supervisorID != "" {
		supervisor, err := s.users.GetByID(ctx, supervisorID)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to get supervisor: %w", err))
		} else {
			ok, err := s.deliver(ctx, employee.ID, rv.ID, deadline.NotificationSupervisor, func() error {
				return s.emailService.SendPendingEmployees(supervisor.Email, supervisor.FullName(), deadline.NotificationSupervisor, names)
			})
			if err != nil {
				errs = append(errs, err)
			}
			if ok {
				sent = append(sent, s.record(employee.ID, rv.ID, deadline.NotificationSupervisor))
			}
		}
	}

	managers, err := s.users.ListByRole(ctx, user.RoleHRManager)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to list hr managers: %w", err))
	} else if len(managers) > 0 {
		ok, err := s.deliver(ctx, employee.ID, rv.ID, deadline.NotificationHR, func() error {
			delivered := 0
			var sendErrs []error
			for _, m := range managers {
				if err := s.emailService.SendPendingEmployees(m.Email, m.FullName(), deadline.NotificationHR, names); err != nil {
					sendErrs = append(sendErrs, fmt.Errorf("%s: %w", m.Email, err))
					continue
				}
				delivered++
			}
			if delivered == 0 {
				return errors.Join(sendErrs...)
			}
			for _, err := range sendErrs {
				slog.Warn("hr notification not delivered", "employee_id", employee.ID, "error", err)
			}
			return nil
		})
		if err != nil {
			errs = append(errs, err)
		}
		if ok {
			sent = append(sent, s.record(employee.ID, rv.ID, deadline.NotificationHR))
		}
	}

	return sent, errors.Join(errs...)
}

func (s *DeadlineServiceImpl) supervisorOf(ctx context.Context, employeeID string, rv review.Review) (string, error) {
	supervisorID, err := s.relations.GetSupervisorID(ctx, employeeID)
	if err == nil {
		return supervisorID, nil
	}
	if !errors.Is(err, organization.ErrRelationNotFound) {
		return "", fmt.Errorf("failed to get supervisor: %w", err)
	}
	if rv.SupervisorID != nil {
		return *rv.SupervisorID, nil
	}
	return "", nil
}

// deliver claims the notification and runs send. It reports false without
// error when somebody else already claimed it.
func (s *DeadlineServiceImpl) deliver(ctx context.Context, userID, reviewID string, t deadline.NotificationType, send func() error) (bool, error) {
	claimed, err := s.notifications.Claim(ctx, userID, reviewID, t)
	if err != nil {
		return false, fmt.Errorf("failed to claim %s notification: %w", t, err)
	}
	if !claimed {
		return false, nil
	}

	if err := send(); err != nil {
		if releaseErr := s.notifications.Release(ctx, userID, reviewID, t); releaseErr != nil {
			slog.Error("failed to release notification claim",
				"user_id", userID,
				"review_id", reviewID,
				"notification_type", t,
				"error", releaseErr,
			)
		}
		return false, fmt.Errorf("failed to send %s notification: %w", t, err)
	}

	slog.Info("deadline notification sent", "user_id", userID, "review_id", reviewID, "notification_type", t)
	return true, nil
}

func (s *DeadlineServiceImpl) record(userID, reviewID string, t deadline.NotificationType) deadline.SentNotification {
	return deadline.SentNotification{
		UserID:   userID,
		ReviewID: reviewID,
		Type:     t,
		SentAt:   s.now(),
	}
}
