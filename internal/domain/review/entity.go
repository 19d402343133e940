package review

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a performance review.
type Status string

const (
	StatusPending   Status = "pendiente" // Created, never saved by the employee
	StatusDraft     Status = "borrador"  // Saved at least once
	StatusSubmitted Status = "enviado"   // Final, employee fields locked
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusDraft, StatusSubmitted:
		return true
	}
	return false
}

// IsOpen reports whether the employee can still work on the review.
func (s Status) IsOpen() bool {
	return s == StatusPending || s == StatusDraft
}

type SkillLevel string

const (
	SkillLevelLow    SkillLevel = "bajo"
	SkillLevelMedium SkillLevel = "medio"
	SkillLevelHigh   SkillLevel = "alto"
)

func (l SkillLevel) IsValid() bool {
	switch l {
	case SkillLevelLow, SkillLevelMedium, SkillLevelHigh:
		return true
	}
	return false
}

type Review struct {
	ID                string
	EmployeeID        string
	SupervisorID      *string
	Department        string
	CurrentPosition   string
	PositionStartDate *time.Time
	ReviewDate        time.Time
	Status            Status
	LongTermGoal      string
	EmployeeComment   string
	SupervisorComment string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type KPI struct {
	ID                   string
	ReviewID             string
	Description          string
	Deadline             *time.Time
	Weight               int
	CompletionPercentage *int
	SupervisorRating     decimal.NullDecimal
	Position             int
	CreatedAt            time.Time
}

// Rating returns the supervisor rating, treating a missing one as zero.
func (k KPI) Rating() decimal.Decimal {
	if !k.SupervisorRating.Valid {
		return decimal.Zero
	}
	return k.SupervisorRating.Decimal
}

func (k KPI) HasDescription() bool {
	return strings.TrimSpace(k.Description) != ""
}

type SkillEvaluation struct {
	ID        string
	ReviewID  string
	SkillName string
	Level     SkillLevel
}

type DevelopmentGoal struct {
	ID          string
	ReviewID    string
	Description string
	CreatedAt   time.Time
}

// Aggregate is a review together with its child collections.
type Aggregate struct {
	Review Review
	KPIs   []KPI
	Skills []SkillEvaluation
	Goals  []DevelopmentGoal
}
