package providers

import (
	"context"

	"github.com/neuvia/backend/internal/domain/entities"
)

// ScoringRequest is the flat payload sent to the risk-scoring collaborator
type ScoringRequest struct {
	UserID   string
	Symptoms entities.NormalizedSymptoms
}

// RiskScorer is the external statistical risk model. Implementations return
// an error for transport failures and non-success HTTP statuses; a decoded
// body with success=false is returned as a result.
type RiskScorer interface {
	Analyze(ctx context.Context, req ScoringRequest) (*entities.ScoringResult, error)
}
