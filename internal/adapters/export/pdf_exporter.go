package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/neuvia/backend/internal/domain/entities"
	"github.com/neuvia/backend/internal/domain/providers"
	"github.com/neuvia/backend/internal/infrastructure/observability"
)

const pdfContentType = "application/pdf"

// PDFExporter renders risk reports as PDF documents in-process
type PDFExporter struct {
	now func() time.Time
}

// NewPDFExporter creates a PDF exporter
func NewPDFExporter() providers.ReportExporter {
	return &PDFExporter{now: time.Now}
}

// Export renders req as a single PDF document
func (e *PDFExporter) Export(ctx context.Context, req *entities.ReportExportRequest) (*providers.ExportedReport, error) {
	_, span := observability.StartSpan(ctx, "pdf.Export")
	defer span.End()

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(fmt.Sprintf("%s health report", req.UserName), true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	heading := func(size float64, text string) {
		pdf.SetFont("Helvetica", "B", size)
		pdf.CellFormat(0, 10, tr(text), "", 1, "L", false, 0, "")
	}
	line := func(text string) {
		pdf.SetFont("Helvetica", "", 12)
		pdf.MultiCell(0, 8, tr(text), "", "L", false)
	}

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(fmt.Sprintf("%s's Pregnancy Health Report", orDefault(req.UserName, "Unknown"))), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 10, "Date: "+e.now().Format("2006-01-02"), "", 1, "C", false, 0, "")
	pdf.Ln(10)

	heading(14, "Profile")
	line("Name: " + orDefault(req.UserName, "Unknown"))
	line("Age: " + orDefault(req.Age, "NA"))
	line("Email: " + orDefault(req.Email, "N/A"))
	pdf.Ln(5)

	ranked := req.Report.SortedBySeverity()
	heading(14, "Condition Risk Levels")
	if len(ranked) == 0 {
		line("No risk analysis available.")
	}
	for _, a := range ranked {
		line(fmt.Sprintf("• %s: %s%s", titleCase(a.Condition), a.RiskLevel, probability(a.Probability)))
	}
	pdf.Ln(5)

	for _, a := range ranked {
		if len(a.Reasons) == 0 && len(a.Recommendations) == 0 {
			continue
		}
		heading(13, titleCase(a.Condition))
		if len(a.Reasons) > 0 {
			pdf.SetFont("Helvetica", "I", 12)
			pdf.CellFormat(0, 8, "Reasons:", "", 1, "L", false, 0, "")
			for _, r := range a.Reasons {
				line("- " + r)
			}
		}
		if len(a.Recommendations) > 0 {
			pdf.SetFont("Helvetica", "I", 12)
			pdf.CellFormat(0, 8, "Recommendations:", "", 1, "L", false, 0, "")
			for _, r := range a.Recommendations {
				line("- " + r)
			}
		}
		pdf.Ln(5)
	}

	if len(req.Notifications) > 0 {
		heading(13, "Notifications")
		for _, n := range req.Notifications {
			line("• " + n)
		}
		pdf.Ln(5)
	}

	if fields := req.History.Fields(); len(fields) > 0 {
		heading(13, "Submitted Symptoms")
		pdf.SetFont("Helvetica", "", 10)
		for _, f := range fields {
			value := f.RawValue
			if f.Blank() {
				value = "-"
			}
			pdf.CellFormat(70, 6, tr(f.Key), "1", 0, "L", false, 0, "")
			pdf.CellFormat(0, 6, tr(value), "1", 1, "L", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		observability.RecordError(span, err)
		return nil, fmt.Errorf("render pdf: %w", err)
	}

	return &providers.ExportedReport{
		Data:        buf.Bytes(),
		ContentType: pdfContentType,
	}, nil
}

// titleCase turns "gestational_diabetes" or "gestationalDiabetes" into "Gestational Diabetes"
func titleCase(name entities.ConditionName) string {
	words := strings.Fields(strings.ReplaceAll(name.DisplayName(), "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func probability(p *entities.Probability) string {
	if p == nil {
		return ""
	}
	return " (" + p.String() + ")"
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
