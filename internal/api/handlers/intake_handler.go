package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/neuvia/backend/internal/application/services"
	"github.com/neuvia/backend/internal/domain/entities"
)

// IntakeSubmitter processes intake forms
type IntakeSubmitter interface {
	Submit(ctx context.Context, user entities.UserIdentity, fields entities.FieldSet) (*services.IntakeOutcome, error)
}

// NotificationSource produces trend notifications for a patient
type NotificationSource interface {
	ForUser(ctx context.Context, userID string, now time.Time) ([]string, error)
}

// IntakeHandler handles structured intake submissions
type IntakeHandler struct {
	intake        IntakeSubmitter
	notifications NotificationSource
}

// NewIntakeHandler creates a new intake handler
func NewIntakeHandler(intake IntakeSubmitter, notifications NotificationSource) *IntakeHandler {
	return &IntakeHandler{intake: intake, notifications: notifications}
}

type intakeRequest struct {
	User   entities.UserIdentity `json:"user"`
	Fields entities.FieldSet     `json:"fields"`
}

type intakeResponse struct {
	State         services.IntakeState `json:"state"`
	LogID         string               `json:"log_id,omitempty"`
	Missing       []string             `json:"missing,omitempty"`
	Report        *entities.RiskReport `json:"disease_analysis,omitempty"`
	Notifications []string             `json:"notifications,omitempty"`
	Error         string               `json:"error,omitempty"`
}

// Fields handles GET /api/intake/fields
func (h *IntakeHandler) Fields(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string][]string{
		"required": entities.RequiredIntakeKeys,
		"optional": entities.OptionalIntakeKeys,
	})
}

// Submit handles POST /api/intake
func (h *IntakeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req intakeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	outcome, err := h.intake.Submit(r.Context(), req.User, req.Fields)
	if err != nil {
		if outcome == nil {
			respondWithAppError(w, r, err)
			return
		}
		status := statusForError(err)
		logServerError(r, err, status)
		respondWithJSON(w, status, intakeResponse{State: outcome.State, LogID: outcome.LogID, Error: errorMessage(err, status)})
		return
	}

	switch outcome.State {
	case services.IntakeStateBlocked:
		respondWithJSON(w, http.StatusUnprocessableEntity, intakeResponse{
			State:   outcome.State,
			Missing: outcome.Missing,
			Error:   "missing required fields: " + strings.Join(outcome.Missing, ", "),
		})
	default:
		respondWithJSON(w, http.StatusOK, intakeResponse{
			State:         outcome.State,
			LogID:         outcome.LogID,
			Report:        outcome.Report,
			Notifications: outcome.Notifications,
		})
	}
}

// Notifications handles GET /api/intake/notifications?user_id=
func (h *IntakeHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		respondWithError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	notes, err := h.notifications.ForUser(r.Context(), userID, time.Now())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string][]string{"notifications": notes})
}
