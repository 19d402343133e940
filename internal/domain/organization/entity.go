package organization

import "time"

// Relation links an employee to their single direct supervisor.
type Relation struct {
	SupervisorID string
	EmployeeID   string
	CreatedAt    time.Time
}
