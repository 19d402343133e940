package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/report"
	"github.com/jung-kurt/gofpdf"
)

var reportHeaders = []string{"Empleado", "Supervisor", "Departamento", "Posición", "Estado", "Fecha de Evaluación"}

const reportDateLayout = "02/01/2006"

func reportRecord(row report.ReviewReportRow) []string {
	return []string{
		row.EmployeeName,
		row.SupervisorName,
		row.Department,
		row.Position,
		string(row.Status),
		row.ReviewDate.Format(reportDateLayout),
	}
}

func writeCSV(w io.Writer, rep report.ReviewReport) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(reportHeaders); err != nil {
		return err
	}
	for _, row := range rep.Rows {
		if err := writer.Write(reportRecord(row)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

var pdfColumnWidths = []float64{52, 52, 45, 45, 28, 38}

func writePDF(w io.Writer, rep report.ReviewReport) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr("Reporte de Evaluaciones de Desempeño"))
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Tipo: %s    Total: %d    Generado: %s", rep.Type, rep.Total, rep.GeneratedAt)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range reportHeaders {
		pdf.CellFormat(pdfColumnWidths[i], 8, tr(h), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range rep.Rows {
		for i, value := range reportRecord(row) {
			pdf.CellFormat(pdfColumnWidths[i], 7, tr(truncate(value, 32)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
