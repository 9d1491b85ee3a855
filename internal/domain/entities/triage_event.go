package entities

import (
	"time"

	"github.com/google/uuid"
)

// TriageAlertEvent is published whenever a chat message is classified as an alert
type TriageAlertEvent struct {
	ID             string          `json:"id"`
	SessionID      string          `json:"session_id"`
	UserID         string          `json:"user_id"`
	Conditions     []ConditionName `json:"conditions"`
	MatchedPhrases []string        `json:"matched_phrases"`
	Timestamp      time.Time       `json:"timestamp"`
}

// NewTriageAlertEvent creates an alert event from a triage result
func NewTriageAlertEvent(sessionID, userID string, result TriageResult, at time.Time) *TriageAlertEvent {
	return &TriageAlertEvent{
		ID:             uuid.New().String(),
		SessionID:      sessionID,
		UserID:         userID,
		Conditions:     result.ConditionNames(),
		MatchedPhrases: result.MatchedPhrases(),
		Timestamp:      at,
	}
}
