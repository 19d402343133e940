package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/organization"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type relationRepositoryImpl struct {
	db *database.DB
}

func NewRelationRepository(db *database.DB) organization.RelationRepository {
	return &relationRepositoryImpl{db: db}
}

// GetSupervisorID implements organization.RelationRepository.
func (r *relationRepositoryImpl) GetSupervisorID(ctx context.Context, employeeID string) (string, error) {
	q := GetQuerier(ctx, r.db)

	var supervisorID string
	err := q.QueryRow(ctx, `SELECT supervisor_id FROM supervisor_employees WHERE employee_id = $1`, employeeID).Scan(&supervisorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", organization.ErrRelationNotFound
		}
		return "", fmt.Errorf("failed to get supervisor: %w", err)
	}
	return supervisorID, nil
}

// IsDirectSupervisor implements organization.RelationRepository.
func (r *relationRepositoryImpl) IsDirectSupervisor(ctx context.Context, supervisorID, employeeID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM supervisor_employees
			WHERE supervisor_id = $1 AND employee_id = $2
		)
	`, supervisorID, employeeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check supervisor relation: %w", err)
	}
	return exists, nil
}

// Assign implements organization.RelationRepository.
func (r *relationRepositoryImpl) Assign(ctx context.Context, supervisorID, employeeID string) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		INSERT INTO supervisor_employees (employee_id, supervisor_id)
		VALUES ($1, $2)
		ON CONFLICT (employee_id) DO UPDATE
		SET supervisor_id = EXCLUDED.supervisor_id, created_at = now()
	`, employeeID, supervisorID)
	if err != nil {
		return fmt.Errorf("failed to assign supervisor: %w", err)
	}
	return nil
}

// Unassign implements organization.RelationRepository.
func (r *relationRepositoryImpl) Unassign(ctx context.Context, employeeID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM supervisor_employees WHERE employee_id = $1`, employeeID)
	if err != nil {
		return fmt.Errorf("failed to unassign supervisor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return organization.ErrRelationNotFound
	}
	return nil
}

// ListEmployees implements organization.RelationRepository.
func (r *relationRepositoryImpl) ListEmployees(ctx context.Context, supervisorID string) ([]user.Profile, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT u.id, u.email, u.first_name, u.last_name, u.created_at
		FROM supervisor_employees se
		JOIN users u ON u.id = se.employee_id
		WHERE se.supervisor_id = $1
		ORDER BY u.first_name, u.last_name
	`, supervisorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team: %w", err)
	}
	return collectProfiles(rows)
}

// ListAll implements organization.RelationRepository.
func (r *relationRepositoryImpl) ListAll(ctx context.Context) ([]organization.Relation, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT supervisor_id, employee_id, created_at
		FROM supervisor_employees
		ORDER BY supervisor_id, created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list relations: %w", err)
	}
	defer rows.Close()

	relations := make([]organization.Relation, 0)
	for rows.Next() {
		var rel organization.Relation
		if err := rows.Scan(&rel.SupervisorID, &rel.EmployeeID, &rel.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan relation: %w", err)
		}
		relations = append(relations, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating relations: %w", err)
	}
	return relations, nil
}

// ListUnassigned implements organization.RelationRepository.
func (r *relationRepositoryImpl) ListUnassigned(ctx context.Context) ([]user.Profile, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT u.id, u.email, u.first_name, u.last_name, u.created_at
		FROM users u
		WHERE NOT EXISTS (SELECT 1 FROM supervisor_employees se WHERE se.employee_id = u.id)
		  AND NOT EXISTS (SELECT 1 FROM user_roles r WHERE r.user_id = u.id AND r.role = 'hr_manager')
		ORDER BY u.first_name, u.last_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list unassigned users: %w", err)
	}
	return collectProfiles(rows)
}
