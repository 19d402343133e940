package review

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/pkg/validator"
)

// RequiredWeightTotal is the sum KPI weights must reach before submission.
const RequiredWeightTotal = 100

// Submission is the state of the employee form at the moment it is submitted.
type Submission struct {
	KPIs              []KPI
	Goals             []string
	Department        string
	CurrentPosition   string
	PositionStartDate *time.Time
	EmployeeComment   string
	LongTermGoal      string
}

// ValidateSubmission checks the full-submission rules in order and reports the
// first one that fails. Autosave never calls it.
func ValidateSubmission(s Submission) error {
	for i, k := range s.KPIs {
		if !k.HasDescription() || k.Deadline == nil || k.Weight <= 0 {
			return single(fmt.Sprintf("kpis[%d]", i), "every KPI needs a description, a deadline and a weight greater than 0")
		}
	}

	if total := TotalWeight(s.KPIs); total != RequiredWeightTotal {
		return single("kpis", fmt.Sprintf("KPI weights must add up to %d%%, currently %d%%", RequiredWeightTotal, total))
	}

	if !hasNonEmpty(s.Goals) {
		return single("development_goals", "at least one development goal is required")
	}

	switch {
	case validator.IsEmpty(s.Department):
		return single("department", "department is required")
	case validator.IsEmpty(s.CurrentPosition):
		return single("current_position", "current_position is required")
	case s.PositionStartDate == nil:
		return single("position_start_date", "position_start_date is required")
	}

	if validator.IsEmpty(s.EmployeeComment) {
		return single("employee_comment", "employee_comment is required")
	}

	if validator.IsEmpty(s.LongTermGoal) {
		return single("long_term_goal", "long_term_goal is required")
	}

	return nil
}

// TotalWeight sums the weights of kpis.
func TotalWeight(kpis []KPI) int {
	total := 0
	for _, k := range kpis {
		total += k.Weight
	}
	return total
}

func hasNonEmpty(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

func single(field, message string) error {
	return validator.ValidationErrors{{Field: field, Message: message}}
}
