package deadline

import (
	"math"
	"time"
)

// DefaultEvaluationPeriodDays is how long a new user has to complete their review.
const DefaultEvaluationPeriodDays = 60

// Info describes where a user stands relative to their review deadline.
type Info struct {
	DeadlineDate      time.Time `json:"deadline_date"`
	FormattedDeadline string    `json:"formatted_deadline"`
	DaysRemaining     int       `json:"days_remaining"`
	IsExpired         bool      `json:"is_expired"`
}

type Calculator struct {
	periodDays int
}

func NewCalculator(periodDays int) Calculator {
	if periodDays <= 0 {
		periodDays = DefaultEvaluationPeriodDays
	}
	return Calculator{periodDays: periodDays}
}

func (c Calculator) PeriodDays() int {
	return c.periodDays
}

// Calculate returns the deadline for a user registered at registeredAt.
// Days remaining are rounded up and never negative.
func (c Calculator) Calculate(registeredAt, now time.Time) Info {
	deadline := registeredAt.AddDate(0, 0, c.periodDays)

	days := int(math.Ceil(deadline.Sub(now).Hours() / 24))
	if days < 0 {
		days = 0
	}

	return Info{
		DeadlineDate:      deadline,
		FormattedDeadline: deadline.Format("02/01/2006"),
		DaysRemaining:     days,
		IsExpired:         days <= 0,
	}
}

// Calculate uses the default evaluation period.
func Calculate(registeredAt, now time.Time) Info {
	return NewCalculator(DefaultEvaluationPeriodDays).Calculate(registeredAt, now)
}
