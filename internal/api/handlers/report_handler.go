package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/neuvia/backend/internal/domain/entities"
	"github.com/neuvia/backend/internal/domain/providers"
)

// ReportRenderer renders risk reports for download
type ReportRenderer interface {
	Export(ctx context.Context, req *entities.ReportExportRequest) (*providers.ExportedReport, error)
}

// ReportHandler handles report export
type ReportHandler struct {
	reports ReportRenderer
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports ReportRenderer) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Export handles POST /api/reports/export
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req entities.ReportExportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if req.Report == nil {
		respondWithError(w, http.StatusBadRequest, "invalid or missing 'disease_analysis'")
		return
	}
	req.User.Name = req.UserName
	req.User.Email = req.Email
	if req.Notifications == nil {
		req.Notifications = []string{}
	}

	out, err := h.reports.Export(r.Context(), &req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(out.Data)
}
