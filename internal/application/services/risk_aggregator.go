package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/neuvia/backend/internal/domain/entities"
	"github.com/neuvia/backend/internal/domain/providers"
	"github.com/neuvia/backend/internal/infrastructure/observability"
	apperrors "github.com/neuvia/backend/pkg/errors"
)

// DefaultAssessTimeout bounds one risk-scoring round trip
const DefaultAssessTimeout = 15 * time.Second

// RiskAggregator turns normalized symptoms into a RiskReport using the
// external risk scorer
type RiskAggregator struct {
	scorer  providers.RiskScorer
	timeout time.Duration
	metrics *observability.Metrics
}

// NewRiskAggregator creates a new risk aggregator. A non-positive timeout uses DefaultAssessTimeout.
func NewRiskAggregator(scorer providers.RiskScorer, timeout time.Duration, metrics *observability.Metrics) *RiskAggregator {
	if timeout <= 0 {
		timeout = DefaultAssessTimeout
	}
	return &RiskAggregator{scorer: scorer, timeout: timeout, metrics: metrics}
}

// Assess scores the symptoms. Conditions the scorer left without a
// recognisable risk level are dropped; the scorer's order is kept.
// Any failure, including success=false, is an ANALYSIS_UNAVAILABLE error.
func (a *RiskAggregator) Assess(ctx context.Context, userID string, symptoms entities.NormalizedSymptoms) (*entities.RiskReport, error) {
	ctx, span := observability.StartSpan(ctx, "RiskAggregator.Assess")
	defer span.End()
	span.SetAttributes(attribute.Int("symptom.count", len(symptoms)))

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	result, err := a.scorer.Analyze(ctx, providers.ScoringRequest{UserID: userID, Symptoms: symptoms})
	elapsed := time.Since(start)

	if err != nil {
		observability.RecordError(span, err)
		observability.RecordAssessment(ctx, a.metrics, elapsed, true)
		msg := "risk analysis unavailable"
		if errors.Is(err, context.DeadlineExceeded) {
			msg = fmt.Sprintf("risk analysis timed out after %s", a.timeout)
		}
		return nil, apperrors.NewAnalysisUnavailableError(msg, err)
	}

	if result == nil || !result.Success {
		upstream := "scorer reported failure"
		if result != nil && result.Error != "" {
			upstream = result.Error
		}
		observability.RecordAssessment(ctx, a.metrics, elapsed, true)
		appErr := apperrors.NewAnalysisUnavailableError(upstream, nil)
		observability.RecordError(span, appErr)
		return nil, appErr
	}

	observability.RecordAssessment(ctx, a.metrics, elapsed, false)
	report := entities.ReportFromScored(result.Conditions)

	dropped := len(result.Conditions) - report.Len()
	span.SetAttributes(attribute.Int("report.conditions", report.Len()), attribute.Int("report.dropped", dropped))
	if dropped > 0 {
		observability.LoggerFromContext(ctx).Debug().
			Int("dropped", dropped).
			Msg("Scorer returned conditions without a usable risk level")
	}

	return report, nil
}
