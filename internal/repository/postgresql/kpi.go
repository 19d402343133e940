package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/review"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/pkg/database"
	"github.com/shopspring/decimal"
)

type kpiRepositoryImpl struct {
	db *database.DB
}

func NewKPIRepository(db *database.DB) review.KPIRepository {
	return &kpiRepositoryImpl{db: db}
}

// ListByReview implements review.KPIRepository.
func (r *kpiRepositoryImpl) ListByReview(ctx context.Context, reviewID string) ([]review.KPI, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, review_id, description, deadline, weight, completion_percentage,
			   supervisor_rating, position, created_at
		FROM performance_kpis
		WHERE review_id = $1
		ORDER BY position, created_at
	`

	rows, err := q.Query(ctx, query, reviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to list KPIs: %w", err)
	}
	defer rows.Close()

	kpis := make([]review.KPI, 0)
	for rows.Next() {
		var k review.KPI
		err := rows.Scan(
			&k.ID,
			&k.ReviewID,
			&k.Description,
			&k.Deadline,
			&k.Weight,
			&k.CompletionPercentage,
			&k.SupervisorRating,
			&k.Position,
			&k.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan KPI: %w", err)
		}
		kpis = append(kpis, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating KPIs: %w", err)
	}
	return kpis, nil
}

// Create implements review.KPIRepository.
func (r *kpiRepositoryImpl) Create(ctx context.Context, kpi review.KPI) (review.KPI, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO performance_kpis (
			id, review_id, description, deadline, weight, completion_percentage,
			supervisor_rating, position
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := q.QueryRow(ctx, query,
		kpi.ID,
		kpi.ReviewID,
		kpi.Description,
		kpi.Deadline,
		kpi.Weight,
		kpi.CompletionPercentage,
		kpi.SupervisorRating,
		kpi.Position,
	).Scan(&kpi.CreatedAt)
	if err != nil {
		return review.KPI{}, fmt.Errorf("failed to create KPI: %w", err)
	}

	return kpi, nil
}

// Update implements review.KPIRepository. The rating column is written as
// given, so callers that must not change it pass the stored value through.
func (r *kpiRepositoryImpl) Update(ctx context.Context, kpi review.KPI) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE performance_kpis
		SET description = $3,
			deadline = $4,
			weight = $5,
			completion_percentage = $6,
			supervisor_rating = $7,
			position = $8
		WHERE id = $1 AND review_id = $2
	`

	tag, err := q.Exec(ctx, query,
		kpi.ID,
		kpi.ReviewID,
		kpi.Description,
		kpi.Deadline,
		kpi.Weight,
		kpi.CompletionPercentage,
		kpi.SupervisorRating,
		kpi.Position,
	)
	if err != nil {
		return fmt.Errorf("failed to update KPI: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return review.ErrKPINotFound
	}
	return nil
}

// UpdateRating implements review.KPIRepository.
func (r *kpiRepositoryImpl) UpdateRating(ctx context.Context, reviewID, kpiID string, rating decimal.Decimal) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE performance_kpis SET supervisor_rating = $3
		WHERE id = $1 AND review_id = $2
	`, kpiID, reviewID, rating)
	if err != nil {
		return fmt.Errorf("failed to update KPI rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return review.ErrKPINotFound
	}
	return nil
}

// Delete implements review.KPIRepository.
func (r *kpiRepositoryImpl) Delete(ctx context.Context, reviewID, kpiID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM performance_kpis WHERE id = $1 AND review_id = $2`, kpiID, reviewID)
	if err != nil {
		return fmt.Errorf("failed to delete KPI: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return review.ErrKPINotFound
	}
	return nil
}
