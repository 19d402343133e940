package user

import "errors"

var (
	ErrUserNotFound             = errors.New("user not found")
	ErrUserEmailExists          = errors.New("email already registered")
	ErrInvalidRole              = errors.New("invalid role")
	ErrSupervisorNotFound       = errors.New("supervisor not found")
	ErrSupervisorAccessRequired = errors.New("supervisor access required")
	ErrHRManagerAccessRequired  = errors.New("hr manager access required")
)
