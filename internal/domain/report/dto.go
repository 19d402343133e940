package report

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/review"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/pkg/validator"
)

// ========================================
// REVIEW REPORT
// ========================================

type Type string

const (
	TypeAll       Type = "all"
	TypePending   Type = "pending"
	TypeCompleted Type = "completed"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
)

type ReviewReportRequest struct {
	Type   Type   `json:"type"`
	Format Format `json:"format"`
}

func (r *ReviewReportRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Type = Type(strings.ToLower(strings.TrimSpace(string(r.Type))))
	if r.Type == "" {
		r.Type = TypeAll
	}
	switch r.Type {
	case TypeAll, TypePending, TypeCompleted:
	default:
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of: all, pending, completed",
		})
	}

	r.Format = Format(strings.ToLower(strings.TrimSpace(string(r.Format))))
	if r.Format == "" {
		r.Format = FormatJSON
	}
	switch r.Format {
	case FormatJSON, FormatCSV, FormatPDF:
	default:
		errs = append(errs, validator.ValidationError{
			Field:   "format",
			Message: "format must be one of: json, csv, pdf",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Statuses returns the review statuses included in a report type, nil meaning all.
func (t Type) Statuses() []review.Status {
	switch t {
	case TypePending:
		return []review.Status{review.StatusPending, review.StatusDraft}
	case TypeCompleted:
		return []review.Status{review.StatusSubmitted}
	}
	return nil
}

type ReviewReportRow struct {
	ReviewID       string        `json:"review_id"`
	EmployeeID     string        `json:"employee_id"`
	EmployeeName   string        `json:"employee_name"`
	SupervisorName string        `json:"supervisor_name"`
	Department     string        `json:"department"`
	Position       string        `json:"position"`
	Status         review.Status `json:"status"`
	ReviewDate     time.Time     `json:"review_date"`
}

type ReviewReport struct {
	Type        Type              `json:"type"`
	GeneratedAt string            `json:"generated_at"`
	Total       int               `json:"total"`
	Rows        []ReviewReportRow `json:"rows"`
}

// ========================================
// SUMMARY REPORT
// ========================================

type StatusCount struct {
	Status review.Status `json:"status"`
	Count  int           `json:"count"`
}

type RatingBucket struct {
	Category RatingCategory `json:"category"`
	Count    int            `json:"count"`
}

type SummaryReport struct {
	GeneratedAt     string         `json:"generated_at"`
	TotalReviews    int            `json:"total_reviews"`
	ByStatus        []StatusCount  `json:"by_status"`
	RatingBuckets   []RatingBucket `json:"rating_buckets"`
	UnassignedCount int            `json:"unassigned_count"`
}
