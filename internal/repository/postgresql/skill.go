package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/review"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5/pgconn"
)

type skillRepositoryImpl struct {
	db *database.DB
}

func NewSkillRepository(db *database.DB) review.SkillRepository {
	return &skillRepositoryImpl{db: db}
}

// ListByReview implements review.SkillRepository.
func (r *skillRepositoryImpl) ListByReview(ctx context.Context, reviewID string) ([]review.SkillEvaluation, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, review_id, skill_name, level
		FROM skill_evaluations
		WHERE review_id = $1
		ORDER BY skill_name
	`, reviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to list skill evaluations: %w", err)
	}
	defer rows.Close()

	skills := make([]review.SkillEvaluation, 0)
	for rows.Next() {
		var s review.SkillEvaluation
		if err := rows.Scan(&s.ID, &s.ReviewID, &s.SkillName, &s.Level); err != nil {
			return nil, fmt.Errorf("failed to scan skill evaluation: %w", err)
		}
		skills = append(skills, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating skill evaluations: %w", err)
	}
	return skills, nil
}

// Create implements review.SkillRepository.
func (r *skillRepositoryImpl) Create(ctx context.Context, skill review.SkillEvaluation) (review.SkillEvaluation, error) {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		INSERT INTO skill_evaluations (id, review_id, skill_name, level)
		VALUES ($1, $2, $3, $4)
	`, skill.ID, skill.ReviewID, skill.SkillName, skill.Level)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return review.SkillEvaluation{}, fmt.Errorf("skill %q already evaluated: %w", skill.SkillName, err)
		}
		return review.SkillEvaluation{}, fmt.Errorf("failed to create skill evaluation: %w", err)
	}
	return skill, nil
}

// UpdateLevel implements review.SkillRepository.
func (r *skillRepositoryImpl) UpdateLevel(ctx context.Context, reviewID, skillName string, level review.SkillLevel) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE skill_evaluations SET level = $3
		WHERE review_id = $1 AND skill_name = $2
	`, reviewID, skillName, level)
	if err != nil {
		return fmt.Errorf("failed to update skill evaluation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return review.ErrSkillNotFound
	}
	return nil
}

// Delete implements review.SkillRepository.
func (r *skillRepositoryImpl) Delete(ctx context.Context, reviewID, skillName string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM skill_evaluations WHERE review_id = $1 AND skill_name = $2`, reviewID, skillName)
	if err != nil {
		return fmt.Errorf("failed to delete skill evaluation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return review.ErrSkillNotFound
	}
	return nil
}
