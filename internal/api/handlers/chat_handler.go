package handlers

import (
	"context"
	"net/http"

	"github.com/neuvia/backend/internal/application/services"
	"github.com/neuvia/backend/internal/domain/entities"
)

// ChatSessions manages live chat sessions
type ChatSessions interface {
	Create(ctx context.Context, userID string) *services.ChatSession
	Get(id string) (*services.ChatSession, error)
	Close(ctx context.Context, id string) error
}

// ChatHandler handles the wellness chat endpoints
type ChatHandler struct {
	sessions ChatSessions
}

// NewChatHandler creates a new chat handler
func NewChatHandler(sessions ChatSessions) *ChatHandler {
	return &ChatHandler{sessions: sessions}
}

type createSessionRequest struct {
	UserID string `json:"user_id"`
}

type sessionResponse struct {
	SessionID string                 `json:"session_id"`
	State     services.ChatState     `json:"state"`
	Messages  []entities.ChatMessage `json:"messages"`
}

type postMessageRequest struct {
	Text string `json:"text"`
}

func newSessionResponse(s *services.ChatSession) sessionResponse {
	return sessionResponse{SessionID: s.ID(), State: s.State(), Messages: s.History()}
}

// CreateSession handles POST /api/chat/sessions
func (h *ChatHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	session := h.sessions.Create(r.Context(), req.UserID)
	respondWithJSON(w, http.StatusCreated, newSessionResponse(session))
}

// ListMessages handles GET /api/chat/sessions/{id}/messages
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newSessionResponse(session))
}

// PostMessage handles POST /api/chat/sessions/{id}/messages and returns the assistant reply
func (h *ChatHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	var req postMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	reply, err := session.Submit(r.Context(), req.Text)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, reply)
}

// CloseSession handles DELETE /api/chat/sessions/{id}
func (h *ChatHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Close(r.Context(), r.PathValue("id")); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
