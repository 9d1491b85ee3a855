package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/neuvia/backend/internal/domain/entities"
	"github.com/neuvia/backend/internal/domain/providers"
	"github.com/neuvia/backend/internal/infrastructure/observability"
	"github.com/neuvia/backend/pkg/config"
)

const analyzePath = "/analyze-symptoms"

// maxErrorBody caps how much of a failed response is read into the error
const maxErrorBody = 4 << 10

// HTTPScorer calls the statistical risk model over HTTP behind a circuit breaker
type HTTPScorer struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewHTTPScorer creates a scorer for cfg.URL. Per-call deadlines come from the
// caller's context; the client timeout is only a backstop.
func NewHTTPScorer(cfg config.ScorerConfig) providers.RiskScorer {
	return newHTTPScorer(cfg, &http.Client{Timeout: cfg.Timeout + 5*time.Second})
}

func newHTTPScorer(cfg config.ScorerConfig, client *http.Client) *HTTPScorer {
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	settings := gobreaker.Settings{
		Name:        "risk-scorer",
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenDelay,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			observability.GetLogger().Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	}
	return &HTTPScorer{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		httpClient: client,
		breaker:    gobreaker.NewCircuitBreaker(settings),
	}
}

// Analyze posts the normalized symptoms and decodes the model's answer
func (s *HTTPScorer) Analyze(ctx context.Context, req providers.ScoringRequest) (*entities.ScoringResult, error) {
	ctx, span := observability.StartSpan(ctx, "scorer.Analyze")
	defer span.End()

	body, err := encodeScoringRequest(req)
	if err != nil {
		return nil, fmt.Errorf("encode scoring request: %w", err)
	}

	out, err := s.breaker.Execute(func() (interface{}, error) {
		return s.post(ctx, body)
	})
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	return out.(*entities.ScoringResult), nil
}

func (s *HTTPScorer) post(ctx context.Context, body []byte) (*entities.ScoringResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+analyzePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build scoring request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("scorer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("scorer returned status %d: %s", resp.StatusCode, errorDetail(raw))
	}

	var result entities.ScoringResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode scorer response: %w", err)
	}
	return &result, nil
}

// encodeScoringRequest writes the symptoms as a flat object, adding user_id
// when the symptoms do not already carry one
func encodeScoringRequest(req providers.ScoringRequest) ([]byte, error) {
	body, err := json.Marshal(req.Symptoms)
	if err != nil {
		return nil, err
	}
	if req.UserID == "" {
		return body, nil
	}
	if _, ok := req.Symptoms.Get("user_id"); ok {
		return body, nil
	}

	id, err := json.Marshal(req.UserID)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimRight(body, "}")
	var buf bytes.Buffer
	buf.Write(trimmed)
	if len(trimmed) > 1 {
		buf.WriteByte(',')
	}
	buf.WriteString(`"user_id":`)
	buf.Write(id)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func errorDetail(raw []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return "empty response"
	}
	return text
}
