package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/neuvia/backend/internal/domain/entities"
	"github.com/neuvia/backend/internal/domain/providers"
	"github.com/neuvia/backend/internal/infrastructure/observability"
	apperrors "github.com/neuvia/backend/pkg/errors"
)

// ReportService hands completed risk reports to the export collaborator
type ReportService struct {
	exporter providers.ReportExporter
}

// NewReportService creates a new report service
func NewReportService(exporter providers.ReportExporter) *ReportService {
	return &ReportService{exporter: exporter}
}

// ExportOutcome renders the report of a successful intake submission
func (s *ReportService) ExportOutcome(ctx context.Context, outcome *IntakeOutcome) (*providers.ExportedReport, error) {
	if outcome == nil || outcome.State != IntakeStateReporting {
		return nil, apperrors.NewValidationError("only assessed submissions can be exported")
	}
	req := entities.NewReportExportRequest(outcome.User, outcome.Fields, outcome.Report, outcome.Notifications)
	return s.Export(ctx, req)
}

// Export renders req
func (s *ReportService) Export(ctx context.Context, req *entities.ReportExportRequest) (*providers.ExportedReport, error) {
	ctx, span := observability.StartSpan(ctx, "ReportService.Export")
	defer span.End()

	if req == nil || req.Report == nil {
		return nil, apperrors.NewValidationError("report is required")
	}
	if strings.TrimSpace(req.UserName) == "" {
		req.UserName = req.User.Name
	}

	out, err := s.exporter.Export(ctx, req)
	if err != nil {
		observability.RecordError(span, err)
		return nil, apperrors.NewExternalError("failed to export report", err)
	}
	if out.FileName == "" {
		out.FileName = fmt.Sprintf("%s_health_report.pdf", fileSafe(req.UserName))
	}
	return out, nil
}

func fileSafe(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "patient"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
