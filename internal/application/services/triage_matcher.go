package services

import (
	"strings"

	"github.com/neuvia/backend/internal/domain/entities"
)

// TriageMatcher classifies free-text chat messages against the symptom
// lexicon and the remedy catalog. It holds no mutable state and is safe for
// concurrent use.
type TriageMatcher struct {
	lexicon  *entities.SymptomLexicon
	remedies *entities.RemedyCatalog
}

// NewTriageMatcher creates a new triage matcher
func NewTriageMatcher(lexicon *entities.SymptomLexicon, remedies *entities.RemedyCatalog) *TriageMatcher {
	return &TriageMatcher{lexicon: lexicon, remedies: remedies}
}

// MatchSevere returns every lexicon condition with at least one phrase
// occurring in text. Matching is a case-insensitive substring test;
// conditions and phrases come back in lexicon order.
func (m *TriageMatcher) MatchSevere(text string) []entities.SevereMatch {
	lowered := strings.ToLower(text)
	matches := []entities.SevereMatch{}

	m.lexicon.Each(func(c entities.Condition) {
		var found []string
		for _, phrase := range c.Phrases {
			if strings.Contains(lowered, phrase) {
				found = append(found, phrase)
			}
		}
		if len(found) > 0 {
			matches = append(matches, entities.SevereMatch{
				Condition:      c.Name,
				DisplayName:    c.Name.DisplayName(),
				MatchedPhrases: found,
			})
		}
	})

	return matches
}

// MatchRemedies returns every catalog entry selected by text, in catalog order
func (m *TriageMatcher) MatchRemedies(text string) []entities.Remedy {
	lowered := strings.ToLower(text)
	var out []entities.Remedy
	for _, entry := range m.remedies.Entries() {
		if m.remedies.Matches(entry, lowered) {
			out = append(out, entry)
		}
	}
	return out
}

// Classify triages one message. Severe matches win over remedies;
// with neither the result is general and lists the known remedy categories.
func (m *TriageMatcher) Classify(text string) entities.TriageResult {
	if severe := m.MatchSevere(text); len(severe) > 0 {
		return entities.TriageResult{Kind: entities.ClassificationAlert, Severe: severe}
	}

	if remedies := m.MatchRemedies(text); len(remedies) > 0 {
		return entities.TriageResult{Kind: entities.ClassificationRemedy, Remedies: remedies}
	}

	return entities.TriageResult{
		Kind:       entities.ClassificationGeneral,
		Categories: m.remedies.Categories(),
	}
}
