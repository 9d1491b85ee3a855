package handlers

import (
	"net/http"

	"github.com/neuvia/backend/internal/application/services"
	"github.com/neuvia/backend/internal/domain/entities"
)

// Classifier triages free text
type Classifier interface {
	Classify(text string) entities.TriageResult
}

// TriageHandler exposes stateless free-text triage
type TriageHandler struct {
	classifier Classifier
	lexicon    *entities.SymptomLexicon
}

// NewTriageHandler creates a new triage handler
func NewTriageHandler(classifier Classifier, lexicon *entities.SymptomLexicon) *TriageHandler {
	return &TriageHandler{classifier: classifier, lexicon: lexicon}
}

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	entities.TriageResult
	Reply string `json:"reply"`
}

// Classify handles POST /api/triage/classify
func (h *TriageHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	result := h.classifier.Classify(req.Text)
	respondWithJSON(w, http.StatusOK, classifyResponse{
		TriageResult: result,
		Reply:        services.ComposeReply(result),
	})
}

type lexiconEntry struct {
	Name        entities.ConditionName `json:"name"`
	DisplayName string                 `json:"display_name"`
	Phrases     []string               `json:"phrases"`
}

// Lexicon handles GET /api/triage/lexicon
func (h *TriageHandler) Lexicon(w http.ResponseWriter, r *http.Request) {
	out := make([]lexiconEntry, 0, h.lexicon.Len())
	h.lexicon.Each(func(c entities.Condition) {
		out = append(out, lexiconEntry{Name: c.Name, DisplayName: c.Name.DisplayName(), Phrases: c.Phrases})
	})
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"conditions": out})
}
