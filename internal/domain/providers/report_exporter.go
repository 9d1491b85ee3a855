package providers

import (
	"context"

	"github.com/neuvia/backend/internal/domain/entities"
)

// ExportedReport is an opaque rendered report
type ExportedReport struct {
	Data        []byte
	ContentType string
	FileName    string
}

// ReportExporter renders a risk report for download
type ReportExporter interface {
	Export(ctx context.Context, req *entities.ReportExportRequest) (*ExportedReport, error)
}
