package report

import (
	"context"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/review"
	"github.com/shopspring/decimal"
)

// ReportRepository defines the interface for report data access
type ReportRepository interface {
	// Active reviews joined with employee and supervisor names, newest review date first.
	// An empty statuses slice means every status.
	GetReviewReport(ctx context.Context, statuses []review.Status) ([]ReviewReportRow, error)

	// Number of active reviews per status
	CountByStatus(ctx context.Context) (map[review.Status]int, error)

	// Average supervisor rating per employee over submitted reviews
	GetSubmittedAverages(ctx context.Context) ([]decimal.Decimal, error)
}
