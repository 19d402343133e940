package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/organization"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/review"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/user"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type ReportServiceImpl struct {
	reportRepo report.ReportRepository
	relations  organization.RelationRepository
	now        func() time.Time
}

func NewReportService(reportRepo report.ReportRepository, relationRepo organization.RelationRepository) report.ReportService {
	return &ReportServiceImpl{
		reportRepo: reportRepo,
		relations:  relationRepo,
		now:        time.Now,
	}
}

// GenerateReviewReport implements report.ReportService.
func (s *ReportServiceImpl) GenerateReviewReport(ctx context.Context, actor user.Actor, req report.ReviewReportRequest) (report.ReviewReport, error) {
	if !user.HasPermission(actor.Roles, user.PermissionReportsView) {
		return report.ReviewReport{}, user.ErrHRManagerAccessRequired
	}

	// Validate request
	if err := req.Validate(); err != nil {
		return report.ReviewReport{}, err
	}

	rows, err := s.reportRepo.GetReviewReport(ctx, req.Type.Statuses())
	if err != nil {
		return report.ReviewReport{}, fmt.Errorf("failed to get review report: %w", err)
	}
	if rows == nil {
		rows = []report.ReviewReportRow{}
	}

	return report.ReviewReport{
		Type:        req.Type,
		GeneratedAt: s.now().Format(time.RFC3339),
		Total:       len(rows),
		Rows:        rows,
	}, nil
}

// Export implements report.ReportService.
func (s *ReportServiceImpl) Export(ctx context.Context, w io.Writer, rep report.ReviewReport, format report.Format) (string, error) {
	name := fmt.Sprintf("reporte-evaluaciones-%s", s.now().Format("2006-01-02"))

	switch format {
	case report.FormatCSV:
		if err := writeCSV(w, rep); err != nil {
			return "", fmt.Errorf("%w: %v", report.ErrReportGenerationFailed, err)
		}
		return name + ".csv", nil
	case report.FormatPDF:
		if err := writePDF(w, rep); err != nil {
			return "", fmt.Errorf("%w: %v", report.ErrReportGenerationFailed, err)
		}
		return name + ".pdf", nil
	}

	return "", report.ErrUnsupportedFormat
}

// GenerateSummary implements report.ReportService.
func (s *ReportServiceImpl) GenerateSummary(ctx context.Context, actor user.Actor) (report.SummaryReport, error) {
	if !user.HasPermission(actor.Roles, user.PermissionReportsView) {
		return report.SummaryReport{}, user.ErrHRManagerAccessRequired
	}

	var (
		counts     map[review.Status]int
		averages   []decimal.Decimal
		unassigned []user.Profile
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = s.reportRepo.CountByStatus(gctx)
		if err != nil {
			return fmt.Errorf("failed to count reviews: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		averages, err = s.reportRepo.GetSubmittedAverages(gctx)
		if err != nil {
			return fmt.Errorf("failed to get rating averages: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		unassigned, err = s.relations.ListUnassigned(gctx)
		if err != nil {
			return fmt.Errorf("failed to list unassigned employees: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return report.SummaryReport{}, err
	}

	summary := report.SummaryReport{
		GeneratedAt:     s.now().Format(time.RFC3339),
		ByStatus:        make([]report.StatusCount, 0, 3),
		RatingBuckets:   make([]report.RatingBucket, 0, len(report.RatingCategories)),
		UnassignedCount: len(unassigned),
	}

	for _, status := range []review.Status{review.StatusPending, review.StatusDraft, review.StatusSubmitted} {
		summary.ByStatus = append(summary.ByStatus, report.StatusCount{Status: status, Count: counts[status]})
		summary.TotalReviews += counts[status]
	}

	buckets := make(map[report.RatingCategory]int, len(report.RatingCategories))
	for _, avg := range averages {
		buckets[report.CategorizeAverage(avg)]++
	}
	for _, category := range report.RatingCategories {
		summary.RatingBuckets = append(summary.RatingBuckets, report.RatingBucket{
			Category: category,
			Count:    buckets[category],
		})
	}

	return summary, nil
}
