package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/review"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/pkg/database"
)

type goalRepositoryImpl struct {
	db *database.DB
}

func NewGoalRepository(db *database.DB) review.GoalRepository {
	return &goalRepositoryImpl{db: db}
}

// ListByReview implements review.GoalRepository.
func (r *goalRepositoryImpl) ListByReview(ctx context.Context, reviewID string) ([]review.DevelopmentGoal, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, review_id, description, created_at
		FROM development_goals
		WHERE review_id = $1
		ORDER BY created_at
	`, reviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to list development goals: %w", err)
	}
	defer rows.Close()

	goals := make([]review.DevelopmentGoal, 0)
	for rows.Next() {
		var g review.DevelopmentGoal
		if err := rows.Scan(&g.ID, &g.ReviewID, &g.Description, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan development goal: %w", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating development goals: %w", err)
	}
	return goals, nil
}

// Create implements review.GoalRepository.
func (r *goalRepositoryImpl) Create(ctx context.Context, goal review.DevelopmentGoal) (review.DevelopmentGoal, error) {
	q := GetQuerier(ctx, r.db)

	err := q.QueryRow(ctx, `
		INSERT INTO development_goals (id, review_id, description)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, goal.ID, goal.ReviewID, goal.Description).Scan(&goal.CreatedAt)
	if err != nil {
		return review.DevelopmentGoal{}, fmt.Errorf("failed to create development goal: %w", err)
	}
	return goal, nil
}

// Delete implements review.GoalRepository.
func (r *goalRepositoryImpl) Delete(ctx context.Context, reviewID, goalID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM development_goals WHERE id = $1 AND review_id = $2`, goalID, reviewID)
	if err != nil {
		return fmt.Errorf("failed to delete development goal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return review.ErrGoalNotFound
	}
	return nil
}
