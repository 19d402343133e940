package report

import (
	"context"
	"io"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/user"
)

// ReportService defines the interface for report generation
type ReportService interface {
	// Generate the review report for HR
	GenerateReviewReport(ctx context.Context, actor user.Actor, req ReviewReportRequest) (ReviewReport, error)

	// Export writes the report as CSV or PDF and returns the file name to use
	Export(ctx context.Context, w io.Writer, report ReviewReport, format Format) (string, error)

	// Generate the status and rating summary
	GenerateSummary(ctx context.Context, actor user.Actor) (SummaryReport, error)
}
