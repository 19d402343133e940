package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

const selectUserWithRoles = `
	SELECT u.id, u.email, u.password_hash, u.first_name, u.last_name, u.created_at, u.updated_at,
		   COALESCE(array_agg(r.role ORDER BY r.role) FILTER (WHERE r.role IS NOT NULL), '{}')::text[]
	FROM users u
	LEFT JOIN user_roles r ON r.user_id = u.id
`

func (r *userRepositoryImpl) getOne(ctx context.Context, where string, arg interface{}) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := selectUserWithRoles + where + `
		GROUP BY u.id
	`

	var (
		found user.User
		roles []string
	)
	err := q.QueryRow(ctx, query, arg).Scan(
		&found.ID,
		&found.Email,
		&found.PasswordHash,
		&found.FirstName,
		&found.LastName,
		&found.CreatedAt,
		&found.UpdatedAt,
		&roles,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	found.Roles = user.RoleSetFromStrings(roles)

	return found, nil
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getOne(ctx, "WHERE u.id = $1", id)
}

// GetByEmail implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, "WHERE lower(u.email) = lower($1)", email)
}

// Create implements user.UserRepository. Roles are stored separately through AssignRoles.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO users (id, email, password_hash, first_name, last_name)
		VALUES ($1, lower($2), $3, $4, $5)
		RETURNING id, email, password_hash, first_name, last_name, created_at, updated_at
	`

	var created user.User
	err := q.QueryRow(ctx, query,
		newUser.ID,
		newUser.Email,
		newUser.PasswordHash,
		newUser.FirstName,
		newUser.LastName,
	).Scan(
		&created.ID,
		&created.Email,
		&created.PasswordHash,
		&created.FirstName,
		&created.LastName,
		&created.CreatedAt,
		&created.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return user.User{}, user.ErrUserEmailExists
		}
		return user.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	created.Roles = newUser.Roles

	return created, nil
}

// ExistsByEmail implements user.UserRepository.
func (r *userRepositoryImpl) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = lower($1))`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// GetRoles implements user.UserRepository.
func (r *userRepositoryImpl) GetRoles(ctx context.Context, userID string) (user.RoleSet, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT role FROM user_roles WHERE user_id = $1`, userID)
	if err != nil {
		return user.RoleSet{}, fmt.Errorf("failed to get roles: %w", err)
	}

	roles, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return user.RoleSet{}, fmt.Errorf("failed to scan roles: %w", err)
	}

	return user.RoleSetFromStrings(roles), nil
}

// AssignRoles implements user.UserRepository. Roles already held are kept.
func (r *userRepositoryImpl) AssignRoles(ctx context.Context, userID string, roles user.RoleSet) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO user_roles (user_id, role)
		SELECT $1, unnest($2::text[])
		ON CONFLICT (user_id, role) DO NOTHING
	`
	if _, err := q.Exec(ctx, query, userID, roles.Strings()); err != nil {
		return fmt.Errorf("failed to assign roles: %w", err)
	}
	return nil
}

// ListByRole implements user.UserRepository.
func (r *userRepositoryImpl) ListByRole(ctx context.Context, role user.Role) ([]user.Profile, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT u.id, u.email, u.first_name, u.last_name, u.created_at
		FROM users u
		JOIN user_roles r ON r.user_id = u.id
		WHERE r.role = $1
		ORDER BY u.first_name, u.last_name
	`

	rows, err := q.Query(ctx, query, string(role))
	if err != nil {
		return nil, fmt.Errorf("failed to list users by role: %w", err)
	}
	return collectProfiles(rows)
}

// GetProfiles implements user.UserRepository.
func (r *userRepositoryImpl) GetProfiles(ctx context.Context, ids []string) ([]user.Profile, error) {
	if len(ids) == 0 {
		return []user.Profile{}, nil
	}

	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, email, first_name, last_name, created_at
		FROM users
		WHERE id = ANY($1)
		ORDER BY first_name, last_name
	`

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get profiles: %w", err)
	}
	return collectProfiles(rows)
}

func collectProfiles(rows pgx.Rows) ([]user.Profile, error) {
	defer rows.Close()

	profiles := make([]user.Profile, 0)
	for rows.Next() {
		var p user.Profile
		if err := rows.Scan(&p.ID, &p.Email, &p.FirstName, &p.LastName, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profiles: %w", err)
	}
	return profiles, nil
}
