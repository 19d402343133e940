package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/review"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type reviewRepositoryImpl struct {
	db *database.DB
}

func NewReviewRepository(db *database.DB) review.ReviewRepository {
	return &reviewRepositoryImpl{db: db}
}

const reviewColumns = `
	id, employee_id, supervisor_id, department, current_position, position_start_date,
	review_date, status, long_term_goal, employee_comment, supervisor_comment,
	created_at, updated_at
`

func scanReview(row pgx.Row) (review.Review, error) {
	var r review.Review
	err := row.Scan(
		&r.ID,
		&r.EmployeeID,
		&r.SupervisorID,
		&r.Department,
		&r.CurrentPosition,
		&r.PositionStartDate,
		&r.ReviewDate,
		&r.Status,
		&r.LongTermGoal,
		&r.EmployeeComment,
		&r.SupervisorComment,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, err
}

func (r *reviewRepositoryImpl) getOne(ctx context.Context, query string, args ...interface{}) (review.Review, error) {
	q := GetQuerier(ctx, r.db)

	found, err := scanReview(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return review.Review{}, review.ErrReviewNotFound
		}
		return review.Review{}, fmt.Errorf("failed to get review: %w", err)
	}
	return found, nil
}

// GetActiveByEmployee implements review.ReviewRepository.
func (r *reviewRepositoryImpl) GetActiveByEmployee(ctx context.Context, employeeID string) (review.Review, error) {
	query := `SELECT ` + reviewColumns + `
		FROM performance_reviews
		WHERE employee_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	return r.getOne(ctx, query, employeeID)
}

// GetByID implements review.ReviewRepository.
func (r *reviewRepositoryImpl) GetByID(ctx context.Context, id string) (review.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM performance_reviews WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetForUpdate implements review.ReviewRepository.
func (r *reviewRepositoryImpl) GetForUpdate(ctx context.Context, id string) (review.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM performance_reviews WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

// LockEmployee implements review.ReviewRepository.
func (r *reviewRepositoryImpl) LockEmployee(ctx context.Context, employeeID string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('performance_review:' || $1))`, employeeID); err != nil {
		return fmt.Errorf("failed to lock employee reviews: %w", err)
	}
	return nil
}

// Create implements review.ReviewRepository.
func (r *reviewRepositoryImpl) Create(ctx context.Context, newReview review.Review) (review.Review, error) {
	query := `
		INSERT INTO performance_reviews (id, employee_id, supervisor_id, review_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + reviewColumns

	return r.getOne(ctx, query,
		newReview.ID,
		newReview.EmployeeID,
		newReview.SupervisorID,
		newReview.ReviewDate,
		newReview.Status,
	)
}

// UpdateEmployeeFields implements review.ReviewRepository.
func (r *reviewRepositoryImpl) UpdateEmployeeFields(ctx context.Context, rv review.Review) (review.Review, error) {
	query := `
		UPDATE performance_reviews
		SET department = $2,
			current_position = $3,
			position_start_date = $4,
			long_term_goal = $5,
			employee_comment = $6,
			status = $7,
			updated_at = clock_timestamp()
		WHERE id = $1
		RETURNING ` + reviewColumns

	return r.getOne(ctx, query,
		rv.ID,
		rv.Department,
		rv.CurrentPosition,
		rv.PositionStartDate,
		rv.LongTermGoal,
		rv.EmployeeComment,
		rv.Status,
	)
}

// UpdateSupervisorComment implements review.ReviewRepository.
func (r *reviewRepositoryImpl) UpdateSupervisorComment(ctx context.Context, id, comment string) (review.Review, error) {
	query := `
		UPDATE performance_reviews
		SET supervisor_comment = $2, updated_at = clock_timestamp()
		WHERE id = $1
		RETURNING ` + reviewColumns

	return r.getOne(ctx, query, id, comment)
}

// Touch implements review.ReviewRepository.
func (r *reviewRepositoryImpl) Touch(ctx context.Context, id string) (time.Time, error) {
	q := GetQuerier(ctx, r.db)

	var updatedAt time.Time
	err := q.QueryRow(ctx, `
		UPDATE performance_reviews SET updated_at = clock_timestamp()
		WHERE id = $1
		RETURNING updated_at
	`, id).Scan(&updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, review.ErrReviewNotFound
		}
		return time.Time{}, fmt.Errorf("failed to touch review: %w", err)
	}
	return updatedAt, nil
}

// ListActiveByEmployees implements review.ReviewRepository.
func (r *reviewRepositoryImpl) ListActiveByEmployees(ctx context.Context, employeeIDs []string) ([]review.Review, error) {
	if len(employeeIDs) == 0 {
		return []review.Review{}, nil
	}

	query := `
		SELECT DISTINCT ON (employee_id) ` + reviewColumns + `
		FROM performance_reviews
		WHERE employee_id = ANY($1)
		ORDER BY employee_id, created_at DESC
	`
	return r.list(ctx, query, employeeIDs)
}

// ListOpen implements review.ReviewRepository.
func (r *reviewRepositoryImpl) ListOpen(ctx context.Context) ([]review.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM (
			SELECT DISTINCT ON (employee_id) ` + reviewColumns + `
			FROM performance_reviews
			ORDER BY employee_id, created_at DESC
		) active
		WHERE status <> $1
		ORDER BY created_at
	`
	return r.list(ctx, query, review.StatusSubmitted)
}

func (r *reviewRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]review.Review, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]review.Review, 0)
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}
	return reviews, nil
}
