package http

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/handler/http/response"
)

type ReportHandler interface {
	// Review report, as JSON or as a CSV/PDF download
	GetReviewReport(w http.ResponseWriter, r *http.Request)

	// Status and rating summary
	GetSummary(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

var exportContentTypes = map[report.Format]string{
	report.FormatCSV: "text/csv; charset=utf-8",
	report.FormatPDF: "application/pdf",
}

// GetReviewReport handles GET /reports/reviews
func (h *reportHandlerImpl) GetReviewReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := actorFromContext(ctx)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	req := report.ReviewReportRequest{
		Type:   report.Type(r.URL.Query().Get("type")),
		Format: report.Format(r.URL.Query().Get("format")),
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.reportService.GenerateReviewReport(ctx, actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if req.Format == report.FormatJSON {
		response.Success(w, result)
		return
	}

	var buf bytes.Buffer
	filename, err := h.reportService.Export(ctx, &buf, result, req.Format)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	slog.Info("Review report exported", "format", req.Format, "rows", result.Total, "requested_by", actor.ID)
	response.Attachment(w, exportContentTypes[req.Format], filename, buf.Bytes())
}

// GetSummary handles GET /reports/summary
func (h *reportHandlerImpl) GetSummary(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	summary, err := h.reportService.GenerateSummary(r.Context(), actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, summary)
}
