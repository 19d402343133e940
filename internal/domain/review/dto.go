package review

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/deadline"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// KPIInput is a KPI row as edited by the employee.
type KPIInput struct {
	ID                   string  `json:"id,omitempty"`
	Description          string  `json:"description"`
	Deadline             *string `json:"deadline,omitempty"`
	Weight               int     `json:"weight"`
	CompletionPercentage *int    `json:"completion_percentage,omitempty"`
}

// SaveReviewRequest carries the employee-owned part of the form.
type SaveReviewRequest struct {
	Action            string     `json:"action"`
	Department        string     `json:"department"`
	CurrentPosition   string     `json:"current_position"`
	PositionStartDate *string    `json:"position_start_date,omitempty"`
	LongTermGoal      string     `json:"long_term_goal"`
	EmployeeComment   *string    `json:"employee_comment,omitempty"`
	KPIs              []KPIInput `json:"kpis"`
	ExpectedUpdatedAt *time.Time `json:"expected_updated_at,omitempty"`
}

func (r *SaveReviewRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, err := ParseAction(r.Action); err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "action",
			Message: "action must be one of: save, submit",
		})
	}

	if r.PositionStartDate != nil && !validator.IsEmpty(*r.PositionStartDate) {
		if _, ok := validator.IsValidDate(*r.PositionStartDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "position_start_date",
				Message: "position_start_date must be in YYYY-MM-DD format",
			})
		}
	}

	for i, k := range r.KPIs {
		field := fmt.Sprintf("kpis[%d]", i)
		if k.Deadline != nil && !validator.IsEmpty(*k.Deadline) {
			if _, ok := validator.IsValidDate(*k.Deadline); !ok {
				errs = append(errs, validator.ValidationError{
					Field:   field + ".deadline",
					Message: "deadline must be in YYYY-MM-DD format",
				})
			}
		}
		if !validator.IsInRange(k.Weight, 0, RequiredWeightTotal) {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".weight",
				Message: "weight must be between 0 and 100",
			})
		}
		if k.CompletionPercentage != nil && !validator.IsInRange(*k.CompletionPercentage, 0, 100) {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".completion_percentage",
				Message: "completion_percentage must be between 0 and 100",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// PositionStart returns the parsed position start date, nil when blank.
func (r *SaveReviewRequest) PositionStart() *time.Time {
	return parseOptionalDate(r.PositionStartDate)
}

// KPIList converts the inputs to domain KPIs in display order. Rows without a
// description are dropped, they are never persisted by a draft save.
func (r *SaveReviewRequest) KPIList(reviewID string) []KPI {
	kpis := make([]KPI, 0, len(r.KPIs))
	for _, in := range r.KPIs {
		if validator.IsEmpty(in.Description) {
			continue
		}
		kpis = append(kpis, in.toKPI(reviewID, len(kpis)))
	}
	return kpis
}

// SubmittedKPIs keeps every row, blank ones included, so that submission
// checks report them by their position in the form.
func (r *SaveReviewRequest) SubmittedKPIs(reviewID string) []KPI {
	kpis := make([]KPI, len(r.KPIs))
	for i, in := range r.KPIs {
		kpis[i] = in.toKPI(reviewID, i)
	}
	return kpis
}

func (in KPIInput) toKPI(reviewID string, position int) KPI {
	return KPI{
		ID:                   strings.TrimSpace(in.ID),
		ReviewID:             reviewID,
		Description:          strings.TrimSpace(in.Description),
		Deadline:             parseOptionalDate(in.Deadline),
		Weight:               in.Weight,
		CompletionPercentage: in.CompletionPercentage,
		Position:             position,
	}
}

type CommentRequest struct {
	Comment           string     `json:"comment"`
	ExpectedUpdatedAt *time.Time `json:"expected_updated_at,omitempty"`
}

func (r *CommentRequest) Validate() error {
	if validator.ExceedsLength(r.Comment, 5000) {
		return validator.ValidationErrors{{Field: "comment", Message: "comment must not exceed 5000 characters"}}
	}
	return nil
}

type KPIRatingInput struct {
	KPIID  string   `json:"kpi_id"`
	Rating *float64 `json:"rating"`
}

type SaveKPIRatingsRequest struct {
	Ratings           []KPIRatingInput `json:"ratings"`
	ExpectedUpdatedAt *time.Time       `json:"expected_updated_at,omitempty"`
}

func (r *SaveKPIRatingsRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.Ratings) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "ratings",
			Message: "ratings is required",
		})
	}
	for i, in := range r.Ratings {
		if validator.IsEmpty(in.KPIID) {
			errs = append(errs, validator.ValidationError{
				Field:   fmt.Sprintf("ratings[%d].kpi_id", i),
				Message: "kpi_id is required",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SkillInput struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

type SaveSkillsRequest struct {
	Skills            []SkillInput `json:"skills"`
	ExpectedUpdatedAt *time.Time   `json:"expected_updated_at,omitempty"`
}

func (r *SaveSkillsRequest) Validate() error {
	var errs validator.ValidationErrors

	seen := make(map[string]bool, len(r.Skills))
	for i, in := range r.Skills {
		field := fmt.Sprintf("skills[%d]", i)
		name := strings.TrimSpace(in.Name)
		switch {
		case name == "":
			errs = append(errs, validator.ValidationError{Field: field + ".name", Message: "name is required"})
		case !IsCatalogSkill(name):
			errs = append(errs, validator.ValidationError{Field: field + ".name", Message: "unknown skill: " + name})
		case seen[name]:
			errs = append(errs, validator.ValidationError{Field: field + ".name", Message: "duplicate skill: " + name})
		}
		seen[name] = true

		if !SkillLevel(in.Level).IsValid() {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".level",
				Message: "level must be one of: bajo, medio, alto",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func (r *SaveSkillsRequest) SkillList(reviewID string) []SkillEvaluation {
	skills := make([]SkillEvaluation, len(r.Skills))
	for i, in := range r.Skills {
		skills[i] = SkillEvaluation{
			ReviewID:  reviewID,
			SkillName: strings.TrimSpace(in.Name),
			Level:     SkillLevel(in.Level),
		}
	}
	return skills
}

type AddGoalRequest struct {
	Description string `json:"description"`
}

func (r *AddGoalRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Description) {
		errs = append(errs, validator.ValidationError{
			Field:   "description",
			Message: "description is required",
		})
	} else if validator.ExceedsLength(r.Description, 1000) {
		errs = append(errs, validator.ValidationError{
			Field:   "description",
			Message: "description must not exceed 1000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ReviewResponse is the review page payload.
type ReviewResponse struct {
	ID                string          `json:"id"`
	EmployeeID        string          `json:"employee_id"`
	SupervisorID      *string         `json:"supervisor_id,omitempty"`
	Department        string          `json:"department"`
	CurrentPosition   string          `json:"current_position"`
	PositionStartDate *string         `json:"position_start_date,omitempty"`
	ReviewDate        string          `json:"review_date"`
	Status            Status          `json:"status"`
	LongTermGoal      string          `json:"long_term_goal"`
	EmployeeComment   string          `json:"employee_comment"`
	SupervisorComment string          `json:"supervisor_comment"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Employee          *user.Profile   `json:"employee,omitempty"`
	KPIs              []KPIResponse   `json:"kpis"`
	Skills            []SkillResponse `json:"skills"`
	Goals             []GoalResponse  `json:"development_goals"`
	Score             ScoreResponse   `json:"score"`
	Permissions       PermissionSet   `json:"permissions"`
	Deadline          *deadline.Info  `json:"deadline,omitempty"`
	SaveResult        *SaveResult     `json:"save_result,omitempty"`
}

type KPIResponse struct {
	ID                   string   `json:"id"`
	Description          string   `json:"description"`
	Deadline             *string  `json:"deadline,omitempty"`
	Weight               int      `json:"weight"`
	CompletionPercentage *int     `json:"completion_percentage,omitempty"`
	SupervisorRating     *float64 `json:"supervisor_rating"`
	Position             int      `json:"position"`
}

type SkillResponse struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Level SkillLevel `json:"level"`
}

type GoalResponse struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type ScoreResponse struct {
	AverageRating float64 `json:"average_rating"`
	WeightedScore float64 `json:"weighted_score"`
	RatedCount    int     `json:"rated_count"`
	TotalCount    int     `json:"total_count"`
	TotalWeight   int     `json:"total_weight"`
	HasAllRatings bool    `json:"has_all_ratings"`
}

// NewReviewResponse builds the page payload from an aggregate.
func NewReviewResponse(agg Aggregate, perms PermissionSet) ReviewResponse {
	r := agg.Review
	resp := ReviewResponse{
		ID:                r.ID,
		EmployeeID:        r.EmployeeID,
		SupervisorID:      r.SupervisorID,
		Department:        r.Department,
		CurrentPosition:   r.CurrentPosition,
		PositionStartDate: formatOptionalDate(r.PositionStartDate),
		ReviewDate:        r.ReviewDate.Format(validator.DateLayout),
		Status:            r.Status,
		LongTermGoal:      r.LongTermGoal,
		EmployeeComment:   r.EmployeeComment,
		SupervisorComment: r.SupervisorComment,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
		KPIs:              make([]KPIResponse, len(agg.KPIs)),
		Skills:            make([]SkillResponse, len(agg.Skills)),
		Goals:             make([]GoalResponse, len(agg.Goals)),
		Permissions:       perms,
	}

	for i, k := range agg.KPIs {
		resp.KPIs[i] = NewKPIResponse(k)
	}
	for i, s := range agg.Skills {
		resp.Skills[i] = SkillResponse{ID: s.ID, Name: s.SkillName, Level: s.Level}
	}
	for i, g := range agg.Goals {
		resp.Goals[i] = GoalResponse{ID: g.ID, Description: g.Description, CreatedAt: g.CreatedAt}
	}

	summary := Summarize(agg.KPIs)
	resp.Score = ScoreResponse{
		AverageRating: summary.AverageRating.InexactFloat64(),
		WeightedScore: summary.WeightedScore.InexactFloat64(),
		RatedCount:    summary.RatedCount,
		TotalCount:    summary.TotalCount,
		TotalWeight:   TotalWeight(agg.KPIs),
		HasAllRatings: summary.HasAllRatings,
	}

	return resp
}

func NewKPIResponse(k KPI) KPIResponse {
	resp := KPIResponse{
		ID:                   k.ID,
		Description:          k.Description,
		Deadline:             formatOptionalDate(k.Deadline),
		Weight:               k.Weight,
		CompletionPercentage: k.CompletionPercentage,
		Position:             k.Position,
	}
	if k.SupervisorRating.Valid {
		v := k.SupervisorRating.Decimal.InexactFloat64()
		resp.SupervisorRating = &v
	}
	return resp
}

// NullRating wraps a rating for storage.
func NullRating(v decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: v, Valid: true}
}

func parseOptionalDate(s *string) *time.Time {
	if s == nil || validator.IsEmpty(*s) {
		return nil
	}
	t, ok := validator.IsValidDate(strings.TrimSpace(*s))
	if !ok {
		return nil
	}
	return &t
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(validator.DateLayout)
	return &s
}
