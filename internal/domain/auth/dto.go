package auth

import (
	"time"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/pkg/validator"
)

const invalidEmailMessage = "email must be a valid email address (letters, numbers, ., _, %, +, - allowed before @; must contain @; domain must contain letters, numbers, ., -; must end with a dot and at least 2 letters, e.g. user@example.com)"

type RegisterRequest struct {
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	ConfirmPassword string  `json:"confirm_password"`
	Role            string  `json:"role"`
	SupervisorID    *string `json:"supervisor_id,omitempty"`
}

func (r *RegisterRequest) Validate() error {
	var errs validator.ValidationErrors

	// Name
	if validator.IsEmpty(r.FirstName) {
		errs = append(errs, validator.ValidationError{
			Field:   "first_name",
			Message: "first_name is required",
		})
	} else if validator.ExceedsLength(r.FirstName, 100) {
		errs = append(errs, validator.ValidationError{
			Field:   "first_name",
			Message: "first_name must not exceed 100 characters",
		})
	}
	if validator.IsEmpty(r.LastName) {
		errs = append(errs, validator.ValidationError{
			Field:   "last_name",
			Message: "last_name is required",
		})
	} else if validator.ExceedsLength(r.LastName, 100) {
		errs = append(errs, validator.ValidationError{
			Field:   "last_name",
			Message: "last_name must not exceed 100 characters",
		})
	}

	// Email
	if validator.IsEmpty(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email is required",
		})
	} else if len(r.Email) > 254 {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email must not exceed 254 characters",
		})
	} else if !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: invalidEmailMessage,
		})
	}

	// Password
	if validator.IsEmpty(r.Password) {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password is required",
		})
	} else if len(r.Password) < 8 {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password must be at least 8 characters long",
		})
	} else if len(r.Password) > 72 {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password must not exceed 72 characters",
		})
	}
	if validator.IsEmpty(r.ConfirmPassword) {
		errs = append(errs, validator.ValidationError{
			Field:   "confirm_password",
			Message: "confirm_password is required",
		})
	} else if r.ConfirmPassword != r.Password {
		errs = append(errs, validator.ValidationError{
			Field:   "confirm_password",
			Message: "password and confirm_password do not match",
		})
	}

	// Role
	role, ok := user.ParseRole(r.Role)
	if !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role must be one of: employee, supervisor, hr_manager",
		})
	}

	// Employees pick their supervisor when they sign up
	hasSupervisor := r.SupervisorID != nil && !validator.IsEmpty(*r.SupervisorID)
	if ok && role == user.RoleEmployee && !hasSupervisor {
		errs = append(errs, validator.ValidationError{
			Field:   "supervisor_id",
			Message: "supervisor_id is required for employees",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors

	// Email
	if validator.IsEmpty(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email is required",
		})
	} else if !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: invalidEmailMessage,
		})
	}

	// Password
	if validator.IsEmpty(r.Password) {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (r *RefreshTokenRequest) Validate() error {
	var errs validator.ValidationErrors

	// Refresh Token
	if validator.IsEmpty(r.RefreshToken) {
		errs = append(errs, validator.ValidationError{
			Field:   "refresh_token",
			Message: "refresh_token is required",
		})
	}
	if len(r.RefreshToken) > 1024 {
		errs = append(errs, validator.ValidationError{
			Field:   "refresh_token",
			Message: "refresh_token must not exceed 1024 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SessionTrackingRequest struct {
	UserAgent string
	IPAddress string
}

type TokenResponse struct {
	AccessToken           string `json:"access_token"`
	AccessTokenExpiresIn  int64  `json:"access_token_expires_in"`
	RefreshToken          string `json:"refresh_token"`
	RefreshTokenExpiresIn int64  `json:"refresh_token_expires_in"`
}

type AccessTokenResponse struct {
	AccessToken          string `json:"access_token"`
	AccessTokenExpiresIn int64  `json:"access_token_expires_in"`
}

// SessionResponse describes the signed-in user.
type SessionResponse struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Roles        []string  `json:"roles"`
	SupervisorID *string   `json:"supervisor_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
