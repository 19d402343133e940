package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/deadline"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/organization"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/review"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type ReviewServiceImpl struct {
	tx        database.Transactor
	reviews   review.ReviewRepository
	kpis      review.KPIRepository
	skills    review.SkillRepository
	goals     review.GoalRepository
	users     user.UserRepository
	relations organization.RelationRepository
	deadlines deadline.DeadlineService
	now       func() time.Time
}

func NewReviewService(
	tx database.Transactor,
	reviewRepository review.ReviewRepository,
	kpiRepository review.KPIRepository,
	skillRepository review.SkillRepository,
	goalRepository review.GoalRepository,
	userRepository user.UserRepository,
	relationRepository organization.RelationRepository,
	deadlineService deadline.DeadlineService,
) review.ReviewService {
	return &ReviewServiceImpl{
		tx:        tx,
		reviews:   reviewRepository,
		kpis:      kpiRepository,
		skills:    skillRepository,
		goals:     goalRepository,
		users:     userRepository,
		relations: relationRepository,
		deadlines: deadlineService,
		now:       time.Now,
	}
}

// GetReview implements review.ReviewService.
func (s *ReviewServiceImpl) GetReview(ctx context.Context, actor user.Actor, employeeID string) (review.ReviewResponse, error) {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		employeeID = actor.ID
	}

	isDirect, err := s.isDirectSupervisor(ctx, actor, employeeID)
	if err != nil {
		return review.ReviewResponse{}, err
	}
	// Plain employees never learn whether somebody else exists
	if !isDirect && !review.CanCreateReview(actor.ID, actor.Roles, employeeID) {
		return review.ReviewResponse{}, review.ErrReviewAccessDenied
	}

	if _, err := s.users.GetByID(ctx, employeeID); err != nil {
		return review.ReviewResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	rv, err := s.reviews.GetActiveByEmployee(ctx, employeeID)
	if errors.Is(err, review.ErrReviewNotFound) {
		rv, err = s.createReview(ctx, employeeID)
	}
	if err != nil {
		return review.ReviewResponse{}, fmt.Errorf("failed to get review: %w", err)
	}

	perms := permissionsFor(actor, rv, isDirect)
	if !perms.CanView {
		return review.ReviewResponse{}, review.ErrReviewAccessDenied
	}

	resp, err := s.buildResponse(ctx, rv, perms)
	if err != nil {
		return review.ReviewResponse{}, err
	}

	// Opening your own review is what fires deadline reminders
	if perms.IsSelf {
		result, err := s.deadlines.Check(ctx, employeeID)
		if err != nil {
			slog.Warn("deadline check failed", "user_id", employeeID, "error", err)
		} else {
			resp.Deadline = &result.Info
		}
	} else {
		info, err := s.deadlines.Info(ctx, employeeID)
		if err != nil {
			slog.Warn("failed to compute deadline", "user_id", employeeID, "error", err)
		} else {
			resp.Deadline = &info
		}
	}

	return resp, nil
}

// SaveReview implements review.ReviewService.
func (s *ReviewServiceImpl) SaveReview(ctx context.Context, actor user.Actor, reviewID string, req review.SaveReviewRequest) (review.ReviewResponse, error) {
	action, err := review.ParseAction(req.Action)
	if err != nil {
		return review.ReviewResponse{}, err
	}

	var result review.SaveResult
	resp, err := s.mutate(ctx, actor, reviewID, req.ExpectedUpdatedAt, func(ctx context.Context, rv review.Review, perms review.PermissionSet) error {
		if perms.IsSubmitted {
			return review.ErrReviewAlreadySubmitted
		}
		// The form is open to whoever may submit it: the employee, the direct
		// supervisor or an hr manager acting on the employee's behalf.
		if !perms.CanSubmit {
			return review.ErrFormEditDenied
		}

		next, err := review.Transition(rv.Status, action)
		if err != nil {
			return err
		}

		stored, err := s.kpis.ListByReview(ctx, rv.ID)
		if err != nil {
			return fmt.Errorf("failed to list kpis: %w", err)
		}
		desired := req.KPIList(rv.ID)

		rv.Department = strings.TrimSpace(req.Department)
		rv.CurrentPosition = strings.TrimSpace(req.CurrentPosition)
		rv.PositionStartDate = req.PositionStart()
		rv.LongTermGoal = strings.TrimSpace(req.LongTermGoal)
		if req.EmployeeComment != nil {
			rv.EmployeeComment = strings.TrimSpace(*req.EmployeeComment)
		}
		rv.Status = next

		ops := s.kpiOps(rv.ID, review.Diff(stored, desired, review.EmployeeKPIMatcher()))

		if action == review.ActionSubmit {
			goals, err := s.goals.ListByReview(ctx, rv.ID)
			if err != nil {
				return fmt.Errorf("failed to list development goals: %w", err)
			}

			// Nothing is written unless the whole form is valid
			err = review.ValidateSubmission(review.Submission{
				KPIs:              req.SubmittedKPIs(rv.ID),
				Goals:             goalDescriptions(goals),
				Department:        rv.Department,
				CurrentPosition:   rv.CurrentPosition,
				PositionStartDate: rv.PositionStartDate,
				EmployeeComment:   rv.EmployeeComment,
				LongTermGoal:      rv.LongTermGoal,
			})
			if err != nil {
				return err
			}

			for _, op := range ops {
				if err := op.run(ctx); err != nil {
					return fmt.Errorf("failed to %s kpi %q: %w", op.operation, op.item, err)
				}
			}
		} else {
			result = s.applyEach(ctx, rv.ID, ops)
		}

		if _, err := s.reviews.UpdateEmployeeFields(ctx, rv); err != nil {
			return fmt.Errorf("failed to update review: %w", err)
		}

		if action == review.ActionSubmit {
			slog.Info("performance review submitted", "review_id", rv.ID, "employee_id", rv.EmployeeID, "submitted_by", actor.ID)
		}
		return nil
	})
	if err != nil {
		return review.ReviewResponse{}, err
	}

	if result.Total > 0 {
		resp.SaveResult = &result
	}
	return resp, nil
}

// SaveEmployeeComment implements review.ReviewService.
func (s *ReviewServiceImpl) SaveEmployeeComment(ctx context.Context, actor user.Actor, reviewID string, req review.CommentRequest) (review.ReviewResponse, error) {
	return s.mutate(ctx, actor, reviewID, req.ExpectedUpdatedAt, func(ctx context.Context, rv review.Review, perms review.PermissionSet) error {
		if perms.IsSubmitted {
			return review.ErrReviewAlreadySubmitted
		}
		if !perms.CanEditAsEmployee {
			return review.ErrEmployeeOnly
		}

		next, err := review.Transition(rv.Status, review.ActionSave)
		if err != nil {
			return err
		}
		rv.EmployeeComment = strings.TrimSpace(req.Comment)
		rv.Status = next

		if _, err := s.reviews.UpdateEmployeeFields(ctx, rv); err != nil {
			return fmt.Errorf("failed to update employee comment: %w", err)
		}
		return nil
	})
}

// SaveSupervisorComment implements review.ReviewService.
func (s *ReviewServiceImpl) SaveSupervisorComment(ctx context.Context, actor user.Actor, reviewID string, req review.CommentRequest) (review.ReviewResponse, error) {
	return s.mutate(ctx, actor, reviewID, req.ExpectedUpdatedAt, func(ctx context.Context, rv review.Review, perms review.PermissionSet) error {
		if !perms.CanEditSupervisorComment {
			return review.ErrSupervisorCommentDenied
		}

		if _, err := s.reviews.UpdateSupervisorComment(ctx, rv.ID, strings.TrimSpace(req.Comment)); err != nil {
			return fmt.Errorf("failed to update supervisor comment: %w", err)
		}
		return nil
	})
}

// SaveKPIRatings implements review.ReviewService.
func (s *ReviewServiceImpl) SaveKPIRatings(ctx context.Context, actor user.Actor, reviewID string, req review.SaveKPIRatingsRequest) (review.ReviewResponse, error) {
	var result review.SaveResult
	resp, err := s.mutate(ctx, actor, reviewID, req.ExpectedUpdatedAt, func(ctx context.Context, rv review.Review, perms review.PermissionSet) error {
		if !perms.CanEditRatings {
			return review.ErrNotAllowedToRate
		}

		stored, err := s.kpis.ListByReview(ctx, rv.ID)
		if err != nil {
			return fmt.Errorf("failed to list kpis: %w", err)
		}

		desired := make([]review.KPI, len(stored))
		copy(desired, stored)
		index := make(map[string]int, len(stored))
		for i, k := range stored {
			index[k.ID] = i
		}

		var unknown []review.ItemFailure
		for _, in := range req.Ratings {
			i, ok := index[strings.TrimSpace(in.KPIID)]
			if !ok {
				unknown = append(unknown, review.ItemFailure{
					Operation: "rate",
					Item:      in.KPIID,
					Error:     review.ErrKPINotFound.Error(),
				})
				continue
			}
			desired[i].SupervisorRating = review.NullRating(review.RatingFromInput(in.Rating))
		}

		plan := review.Diff(stored, desired, review.KPIMatcher())
		ops := make([]itemOp, 0, len(plan.Updates))
		for _, c := range plan.Updates {
			kpiID, rating := c.Current.ID, c.Desired.Rating()
			ops = append(ops, itemOp{
				operation: "rate",
				item:      c.Current.Description,
				run: func(ctx context.Context) error {
					return s.kpis.UpdateRating(ctx, rv.ID, kpiID, rating)
				},
			})
		}

		result = s.applyEach(ctx, rv.ID, ops)
		result.Total += len(unknown)
		result.Failures = append(result.Failures, unknown...)

		return s.finishItems(ctx, rv.ID, result)
	})
	if err != nil {
		return review.ReviewResponse{}, err
	}

	if result.Total > 0 {
		resp.SaveResult = &result
	}
	return resp, nil
}

// SaveSkills implements review.ReviewService.
func (s *ReviewServiceImpl) SaveSkills(ctx context.Context, actor user.Actor, reviewID string, req review.SaveSkillsRequest) (review.ReviewResponse, error) {
	var result review.SaveResult
	resp, err := s.mutate(ctx, actor, reviewID, req.ExpectedUpdatedAt, func(ctx context.Context, rv review.Review, perms review.PermissionSet) error {
		if !perms.CanEditRatings {
			return review.ErrNotAllowedToRate
		}

		stored, err := s.skills.ListByReview(ctx, rv.ID)
		if err != nil {
			return fmt.Errorf("failed to list skill evaluations: %w", err)
		}

		plan := review.Diff(stored, req.SkillList(rv.ID), review.SkillMatcher())
		ops := make([]itemOp, 0, plan.Len())
		for _, sk := range plan.Deletes {
			ops = append(ops, itemOp{
				operation: "delete",
				item:      sk.SkillName,
				run: func(ctx context.Context) error {
					return s.skills.Delete(ctx, rv.ID, sk.SkillName)
				},
			})
		}
		for _, c := range plan.Updates {
			name, level := c.Current.SkillName, c.Desired.Level
			ops = append(ops, itemOp{
				operation: "update",
				item:      name,
				run: func(ctx context.Context) error {
					return s.skills.UpdateLevel(ctx, rv.ID, name, level)
				},
			})
		}
		for _, sk := range plan.Inserts {
			ops = append(ops, itemOp{
				operation: "insert",
				item:      sk.SkillName,
				run: func(ctx context.Context) error {
					id, err := newID()
					if err != nil {
						return err
					}
					sk.ID = id
					_, err = s.skills.Create(ctx, sk)
					return err
				},
			})
		}

		result = s.applyEach(ctx, rv.ID, ops)
		return s.finishItems(ctx, rv.ID, result)
	})
	if err != nil {
		return review.ReviewResponse{}, err
	}

	if result.Total > 0 {
		resp.SaveResult = &result
	}
	return resp, nil
}

// AddGoal implements review.ReviewService.
func (s *ReviewServiceImpl) AddGoal(ctx context.Context, actor user.Actor, reviewID string, req review.AddGoalRequest) (review.GoalResponse, error) {
	var goal review.DevelopmentGoal
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		rv, perms, err := s.lock(ctx, actor, reviewID, nil)
		if err != nil {
			return err
		}
		if !perms.CanEditDevelopmentGoals {
			return goalsDenied(perms)
		}

		id, err := newID()
		if err != nil {
			return err
		}
		goal, err = s.goals.Create(ctx, review.DevelopmentGoal{
			ID:          id,
			ReviewID:    rv.ID,
			Description: strings.TrimSpace(req.Description),
		})
		if err != nil {
			return fmt.Errorf("failed to create development goal: %w", err)
		}

		if _, err := s.reviews.Touch(ctx, rv.ID); err != nil {
			return fmt.Errorf("failed to touch review: %w", err)
		}
		return nil
	})
	if err != nil {
		return review.GoalResponse{}, err
	}

	return review.GoalResponse{
		ID:          goal.ID,
		Description: goal.Description,
		CreatedAt:   goal.CreatedAt,
	}, nil
}

// DeleteGoal implements review.ReviewService.
func (s *ReviewServiceImpl) DeleteGoal(ctx context.Context, actor user.Actor, reviewID, goalID string) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		rv, perms, err := s.lock(ctx, actor, reviewID, nil)
		if err != nil {
			return err
		}
		if !perms.CanEditDevelopmentGoals {
			return goalsDenied(perms)
		}

		if err := s.goals.Delete(ctx, rv.ID, goalID); err != nil {
			return fmt.Errorf("failed to delete development goal: %w", err)
		}

		if _, err := s.reviews.Touch(ctx, rv.ID); err != nil {
			return fmt.Errorf("failed to touch review: %w", err)
		}
		return nil
	})
}

// mutate locks the review, checks the caller's version and runs fn in one
// transaction. The refreshed page is loaded after commit.
func (s *ReviewServiceImpl) mutate(
	ctx context.Context,
	actor user.Actor,
	reviewID string,
	expectedUpdatedAt *time.Time,
	fn func(ctx context.Context, rv review.Review, perms review.PermissionSet) error,
) (review.ReviewResponse, error) {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		rv, perms, err := s.lock(ctx, actor, reviewID, expectedUpdatedAt)
		if err != nil {
			return err
		}
		return fn(ctx, rv, perms)
	})
	if err != nil {
		return review.ReviewResponse{}, err
	}

	rv, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return review.ReviewResponse{}, fmt.Errorf("failed to reload review: %w", err)
	}
	isDirect, err := s.isDirectSupervisor(ctx, actor, rv.EmployeeID)
	if err != nil {
		return review.ReviewResponse{}, err
	}

	return s.buildResponse(ctx, rv, permissionsFor(actor, rv, isDirect))
}

func (s *ReviewServiceImpl) lock(ctx context.Context, actor user.Actor, reviewID string, expectedUpdatedAt *time.Time) (review.Review, review.PermissionSet, error) {
	rv, err := s.reviews.GetForUpdate(ctx, reviewID)
	if err != nil {
		return review.Review{}, review.PermissionSet{}, fmt.Errorf("failed to lock review: %w", err)
	}

	isDirect, err := s.isDirectSupervisor(ctx, actor, rv.EmployeeID)
	if err != nil {
		return review.Review{}, review.PermissionSet{}, err
	}

	perms := permissionsFor(actor, rv, isDirect)
	if !perms.CanView {
		return review.Review{}, review.PermissionSet{}, review.ErrReviewAccessDenied
	}

	if expectedUpdatedAt != nil && !sameVersion(rv.UpdatedAt, *expectedUpdatedAt) {
		return review.Review{}, review.PermissionSet{}, review.ErrConcurrentModification
	}

	return rv, perms, nil
}

func (s *ReviewServiceImpl) isDirectSupervisor(ctx context.Context, actor user.Actor, employeeID string) (bool, error) {
	if actor.ID == employeeID {
		return false, nil
	}
	ok, err := s.relations.IsDirectSupervisor(ctx, actor.ID, employeeID)
	if err != nil {
		return false, fmt.Errorf("failed to check supervisor relation: %w", err)
	}
	return ok, nil
}

func (s *ReviewServiceImpl) createReview(ctx context.Context, employeeID string) (review.Review, error) {
	now := s.now()

	var supervisorID *string
	sid, err := s.relations.GetSupervisorID(ctx, employeeID)
	switch {
	case err == nil:
		supervisorID = &sid
	case errors.Is(err, organization.ErrRelationNotFound):
	default:
		return review.Review{}, fmt.Errorf("failed to get supervisor: %w", err)
	}

	id, err := newID()
	if err != nil {
		return review.Review{}, err
	}

	var (
		created review.Review
		existed bool
	)
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.reviews.LockEmployee(ctx, employeeID); err != nil {
			return err
		}
		// A concurrent first load may have created the review while we waited
		current, err := s.reviews.GetActiveByEmployee(ctx, employeeID)
		switch {
		case err == nil:
			created, existed = current, true
			return nil
		case !errors.Is(err, review.ErrReviewNotFound):
			return fmt.Errorf("failed to get active review: %w", err)
		}

		created, err = s.reviews.Create(ctx, review.Review{
			ID:           id,
			EmployeeID:   employeeID,
			SupervisorID: supervisorID,
			ReviewDate:   time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
			Status:       review.StatusPending,
		})
		if err != nil {
			return fmt.Errorf("failed to create review: %w", err)
		}

		for _, k := range review.DefaultKPIs(id, now) {
			if k.ID, err = newID(); err != nil {
				return err
			}
			if _, err := s.kpis.Create(ctx, k); err != nil {
				return fmt.Errorf("failed to create default kpi: %w", err)
			}
		}

		for _, sk := range review.DefaultSkillEvaluations(id) {
			if sk.ID, err = newID(); err != nil {
				return err
			}
			if _, err := s.skills.Create(ctx, sk); err != nil {
				return fmt.Errorf("failed to create default skill evaluation: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return review.Review{}, err
	}
	if existed {
		return created, nil
	}

	slog.Info("performance review created", "review_id", id, "employee_id", employeeID)
	return created, nil
}

// buildResponse loads the child collections and the employee profile in parallel.
func (s *ReviewServiceImpl) buildResponse(ctx context.Context, rv review.Review, perms review.PermissionSet) (review.ReviewResponse, error) {
	agg := review.Aggregate{Review: rv}
	var employee user.User

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		kpis, err := s.kpis.ListByReview(gctx, rv.ID)
		if err != nil {
			return fmt.Errorf("failed to list kpis: %w", err)
		}
		agg.KPIs = kpis
		return nil
	})
	g.Go(func() error {
		skills, err := s.skills.ListByReview(gctx, rv.ID)
		if err != nil {
			return fmt.Errorf("failed to list skill evaluations: %w", err)
		}
		agg.Skills = skills
		return nil
	})
	g.Go(func() error {
		goals, err := s.goals.ListByReview(gctx, rv.ID)
		if err != nil {
			return fmt.Errorf("failed to list development goals: %w", err)
		}
		agg.Goals = goals
		return nil
	})
	g.Go(func() error {
		u, err := s.users.GetByID(gctx, rv.EmployeeID)
		if err != nil {
			return fmt.Errorf("failed to get employee: %w", err)
		}
		employee = u
		return nil
	})
	if err := g.Wait(); err != nil {
		return review.ReviewResponse{}, err
	}

	resp := review.NewReviewResponse(agg, perms)
	profile := employee.Profile()
	resp.Employee = &profile
	return resp, nil
}

type itemOp struct {
	operation string
	item      string
	run       func(ctx context.Context) error
}

// applyEach runs every op in its own savepoint so one failing row does not
// undo the others.
func (s *ReviewServiceImpl) applyEach(ctx context.Context, reviewID string, ops []itemOp) review.SaveResult {
	result := review.SaveResult{Total: len(ops)}
	for _, op := range ops {
		if err := s.tx.WithinSavepoint(ctx, op.run); err != nil {
			slog.Warn("review item not saved",
				"review_id", reviewID,
				"operation", op.operation,
				"item", op.item,
				"error", err,
			)
			result.Failures = append(result.Failures, review.ItemFailure{
				Operation: op.operation,
				Item:      op.item,
				Error:     itemError(err),
			})
			continue
		}
		result.Saved++
	}
	return result
}

// finishItems turns an all-failed result into ErrNothingSaved and bumps the
// review version when anything changed.
func (s *ReviewServiceImpl) finishItems(ctx context.Context, reviewID string, result review.SaveResult) error {
	if result.Total > 0 && result.Saved == 0 {
		return review.ErrNothingSaved
	}
	if result.Saved > 0 {
		if _, err := s.reviews.Touch(ctx, reviewID); err != nil {
			return fmt.Errorf("failed to touch review: %w", err)
		}
	}
	return nil
}

func (s *ReviewServiceImpl) kpiOps(reviewID string, plan review.Plan[review.KPI]) []itemOp {
	ops := make([]itemOp, 0, plan.Len())

	for _, k := range plan.Deletes {
		ops = append(ops, itemOp{
			operation: "delete",
			item:      k.Description,
			run: func(ctx context.Context) error {
				return s.kpis.Delete(ctx, reviewID, k.ID)
			},
		})
	}

	for _, c := range plan.Updates {
		k := c.Desired
		k.ID = c.Current.ID
		k.ReviewID = reviewID
		k.SupervisorRating = c.Current.SupervisorRating
		ops = append(ops, itemOp{
			operation: "update",
			item:      k.Description,
			run: func(ctx context.Context) error {
				return s.kpis.Update(ctx, k)
			},
		})
	}

	for _, k := range plan.Inserts {
		ops = append(ops, itemOp{
			operation: "insert",
			item:      k.Description,
			run: func(ctx context.Context) error {
				id, err := newID()
				if err != nil {
					return err
				}
				k.ID = id
				k.ReviewID = reviewID
				k.SupervisorRating = decimal.NullDecimal{}
				_, err = s.kpis.Create(ctx, k)
				return err
			},
		})
	}

	return ops
}

func permissionsFor(actor user.Actor, rv review.Review, isDirect bool) review.PermissionSet {
	return review.ResolvePermissions(review.PermissionContext{
		ActorID:            actor.ID,
		ActorRoles:         actor.Roles,
		TargetEmployeeID:   rv.EmployeeID,
		Status:             rv.Status,
		ReviewSupervisorID: rv.SupervisorID,
		IsDirectSupervisor: isDirect,
	})
}

func goalsDenied(perms review.PermissionSet) error {
	if perms.IsSubmitted {
		return review.ErrGoalsLocked
	}
	return review.ErrReviewAccessDenied
}

func goalDescriptions(goals []review.DevelopmentGoal) []string {
	out := make([]string, len(goals))
	for i, g := range goals {
		out[i] = g.Description
	}
	return out
}

// sameVersion compares timestamps at the precision PostgreSQL stores.
func sameVersion(stored, expected time.Time) bool {
	return stored.Truncate(time.Microsecond).Equal(expected.Truncate(time.Microsecond))
}

func itemError(err error) string {
	switch {
	case errors.Is(err, review.ErrKPINotFound),
		errors.Is(err, review.ErrSkillNotFound):
		return err.Error()
	}
	return "could not be saved"
}

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return id.String(), nil
}
