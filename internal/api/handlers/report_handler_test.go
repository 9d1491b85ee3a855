package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/neuvia/backend/internal/api/handlers"
	"github.com/neuvia/backend/internal/domain/entities"
	"github.com/neuvia/backend/internal/domain/providers"
	apperrors "github.com/neuvia/backend/pkg/errors"
)

type MockReportRenderer struct {
	mock.Mock
}

func (m *MockReportRenderer) Export(ctx context.Context, req *entities.ReportExportRequest) (*providers.ExportedReport, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.ExportedReport), args.Error(1)
}

const exportBody = `{"user_name":"Ada Obi","email":"ada@example.com","age":"29",
	"disease_analysis":{
		"anemia":{"risk_level":"Low Risk (0%)","probability":"0%","why":[],"recommendations":[],"symptom_contributions":[]},
		"preeclampsia":{"risk_level":"High (80%)","probability":"80%","why":["BP 150/95"],"recommendations":["See a doctor"],"symptom_contributions":[]}},
	"notifications":["n1"]}`

func TestReportHandler_Export(t *testing.T) {
	renderer := new(MockReportRenderer)
	renderer.On("Export", mock.Anything, mock.MatchedBy(func(req *entities.ReportExportRequest) bool {
		pre, ok := req.Report.Get("preeclampsia")
		return req.User.Name == "Ada Obi" && req.Report.Len() == 2 && req.Age == "29" &&
			ok && pre.Probability != nil && *pre.Probability == 80
	})).Return(&providers.ExportedReport{
		Data:        []byte("%PDF-1.3"),
		ContentType: "application/pdf",
		FileName:    "Ada_Obi_health_report.pdf",
	}, nil)

	h := handlers.NewReportHandler(renderer)
	w := httptest.NewRecorder()
	h.Export(w, httptest.NewRequest(http.MethodPost, "/api/reports/export", strings.NewReader(exportBody)))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Ada_Obi_health_report.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.3", w.Body.String())
	renderer.AssertExpectations(t)
}

func TestReportHandler_ExportErrors(t *testing.T) {
	t.Run("missing analysis", func(t *testing.T) {
		renderer := new(MockReportRenderer)
		w := httptest.NewRecorder()
		handlers.NewReportHandler(renderer).Export(w,
			httptest.NewRequest(http.MethodPost, "/api/reports/export", strings.NewReader(`{"user_name":"Ada"}`)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		renderer.AssertNotCalled(t, "Export", mock.Anything, mock.Anything)
	})

	t.Run("exporter failure", func(t *testing.T) {
		renderer := new(MockReportRenderer)
		renderer.On("Export", mock.Anything, mock.Anything).
			Return(nil, apperrors.NewExternalError("failed to export report", errors.New("dial tcp")))

		w := httptest.NewRecorder()
		handlers.NewReportHandler(renderer).Export(w,
			httptest.NewRequest(http.MethodPost, "/api/reports/export", strings.NewReader(exportBody)))

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.NotContains(t, w.Body.String(), "dial tcp")
	})
}
