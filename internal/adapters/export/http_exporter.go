package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/neuvia/backend/internal/domain/entities"
	"github.com/neuvia/backend/internal/domain/providers"
	"github.com/neuvia/backend/internal/infrastructure/observability"
	"github.com/neuvia/backend/pkg/config"
)

// HTTPExporter delegates rendering to a remote export service
type HTTPExporter struct {
	url        string
	httpClient *http.Client
}

// NewHTTPExporter creates an exporter that posts reports to cfg.ExportURL
func NewHTTPExporter(cfg config.ReportConfig) providers.ReportExporter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPExporter{
		url:        cfg.ExportURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Export posts req and returns the rendered document unchanged
func (e *HTTPExporter) Export(ctx context.Context, req *entities.ReportExportRequest) (*providers.ExportedReport, error) {
	ctx, span := observability.StartSpan(ctx, "http.Export")
	defer span.End()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode export request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build export request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		observability.RecordError(span, err)
		return nil, fmt.Errorf("export request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read export response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("export service returned status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = pdfContentType
	}
	return &providers.ExportedReport{
		Data:        data,
		ContentType: contentType,
		FileName:    attachmentName(resp.Header.Get("Content-Disposition")),
	}, nil
}

func attachmentName(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}
