package user

import (
	"sort"
	"strings"
	"time"
)

type Role string

const (
	RoleEmployee   Role = "employee"   // Fills their own review
	RoleSupervisor Role = "supervisor" // Rates direct reports
	RoleHRManager  Role = "hr_manager" // Rates anyone, manages the organization
)

// ParseRole returns the Role for s, or false when s is not a known role.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.TrimSpace(s)) {
	case RoleEmployee:
		return RoleEmployee, true
	case RoleSupervisor:
		return RoleSupervisor, true
	case RoleHRManager:
		return RoleHRManager, true
	}
	return "", false
}

// RoleSet is the set of roles held by a user. Roles are cumulative.
type RoleSet struct {
	employee   bool
	supervisor bool
	hrManager  bool
}

// NewRoleSet builds a RoleSet, ignoring unknown roles.
func NewRoleSet(roles ...Role) RoleSet {
	var rs RoleSet
	for _, r := range roles {
		rs = rs.With(r)
	}
	return rs
}

// RoleSetFromStrings builds a RoleSet from raw role names, e.g. JWT claims or rows.
func RoleSetFromStrings(values []string) RoleSet {
	var rs RoleSet
	for _, v := range values {
		if r, ok := ParseRole(v); ok {
			rs = rs.With(r)
		}
	}
	return rs
}

// GrantedRoles expands a role picked at registration into every role it implies.
// HR managers also supervise, and everybody is an employee.
func GrantedRoles(selected Role) RoleSet {
	switch selected {
	case RoleHRManager:
		return NewRoleSet(RoleEmployee, RoleSupervisor, RoleHRManager)
	case RoleSupervisor:
		return NewRoleSet(RoleEmployee, RoleSupervisor)
	default:
		return NewRoleSet(RoleEmployee)
	}
}

func (rs RoleSet) With(r Role) RoleSet {
	switch r {
	case RoleEmployee:
		rs.employee = true
	case RoleSupervisor:
		rs.supervisor = true
	case RoleHRManager:
		rs.hrManager = true
	}
	return rs
}

func (rs RoleSet) Has(r Role) bool {
	switch r {
	case RoleEmployee:
		return rs.employee
	case RoleSupervisor:
		return rs.supervisor
	case RoleHRManager:
		return rs.hrManager
	}
	return false
}

func (rs RoleSet) IsEmployee() bool { return rs.employee }
func (rs RoleSet) IsSupervisor() bool { return rs.supervisor }
func (rs RoleSet) IsHRManager() bool { return rs.hrManager }

// Roles returns the held roles in a stable order.
func (rs RoleSet) Roles() []Role {
	roles := make([]Role, 0, 3)
	if rs.employee {
		roles = append(roles, RoleEmployee)
	}
	if rs.supervisor {
		roles = append(roles, RoleSupervisor)
	}
	if rs.hrManager {
		roles = append(roles, RoleHRManager)
	}
	return roles
}

func (rs RoleSet) Strings() []string {
	roles := rs.Roles()
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	sort.Strings(out)
	return out
}

type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Roles        RoleSet
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
	}
}

// Profile is the public projection of a user used across reviews and reports.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

func (p Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID    string
	Email string
	Roles RoleSet
}
