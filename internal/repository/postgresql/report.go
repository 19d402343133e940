package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/review"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/pkg/database"
	"github.com/shopspring/decimal"
)

type reportRepositoryImpl struct {
	db *database.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *database.DB) report.ReportRepository {
	return &reportRepositoryImpl{db: db}
}

const activeReviews = `
	SELECT DISTINCT ON (employee_id) *
	FROM performance_reviews
	ORDER BY employee_id, created_at DESC
`

// GetReviewReport implements report.ReportRepository.
func (r *reportRepositoryImpl) GetReviewReport(ctx context.Context, statuses []review.Status) ([]report.ReviewReportRow, error) {
	q := GetQuerier(ctx, r.db)

	filter := make([]string, len(statuses))
	for i, s := range statuses {
		filter[i] = string(s)
	}

	query := `
		SELECT pr.id, pr.employee_id,
			   TRIM(e.first_name || ' ' || e.last_name),
			   COALESCE(NULLIF(TRIM(s.first_name || ' ' || s.last_name), ''), 'N/A'),
			   COALESCE(NULLIF(pr.department, ''), 'N/A'),
			   COALESCE(NULLIF(pr.current_position, ''), 'N/A'),
			   pr.status, pr.review_date
		FROM (` + activeReviews + `) pr
		JOIN users e ON e.id = pr.employee_id
		LEFT JOIN supervisor_employees se ON se.employee_id = pr.employee_id
		LEFT JOIN users s ON s.id = COALESCE(se.supervisor_id, pr.supervisor_id)
		WHERE cardinality($1::text[]) = 0 OR pr.status = ANY($1::text[])
		ORDER BY pr.review_date DESC, e.first_name, e.last_name
	`

	rows, err := q.Query(ctx, query, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query review report: %w", err)
	}
	defer rows.Close()

	result := make([]report.ReviewReportRow, 0)
	for rows.Next() {
		var row report.ReviewReportRow
		err := rows.Scan(
			&row.ReviewID,
			&row.EmployeeID,
			&row.EmployeeName,
			&row.SupervisorName,
			&row.Department,
			&row.Position,
			&row.Status,
			&row.ReviewDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review report row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating review report rows: %w", err)
	}

	return result, nil
}

// CountByStatus implements report.ReportRepository.
func (r *reportRepositoryImpl) CountByStatus(ctx context.Context) (map[review.Status]int, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT status, COUNT(*)
		FROM (`+activeReviews+`) pr
		GROUP BY status
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count reviews by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[review.Status]int)
	for rows.Next() {
		var (
			status review.Status
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status counts: %w", err)
	}

	return counts, nil
}

// GetSubmittedAverages implements report.ReportRepository. Unrated KPIs count as zero.
func (r *reportRepositoryImpl) GetSubmittedAverages(ctx context.Context) ([]decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT COALESCE(AVG(COALESCE(k.supervisor_rating, 0)), 0)
		FROM performance_reviews pr
		LEFT JOIN performance_kpis k ON k.review_id = pr.id
		WHERE pr.status = $1
		GROUP BY pr.employee_id
	`, review.StatusSubmitted)
	if err != nil {
		return nil, fmt.Errorf("failed to query submitted averages: %w", err)
	}
	defer rows.Close()

	averages := make([]decimal.Decimal, 0)
	for rows.Next() {
		var avg decimal.Decimal
		if err := rows.Scan(&avg); err != nil {
			return nil, fmt.Errorf("failed to scan average: %w", err)
		}
		averages = append(averages, avg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating averages: %w", err)
	}

	return averages, nil
}
