package organization

import "errors"

var (
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrSupervisorNotFound = errors.New("supervisor not found")
	ErrNotASupervisor     = errors.New("selected user does not hold the supervisor role")
	ErrSupervisionCycle   = errors.New("assignment would create a supervision cycle")
	ErrRelationNotFound   = errors.New("employee has no supervisor assigned")
)
