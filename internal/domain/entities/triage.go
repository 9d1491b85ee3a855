package entities

// SevereMatch is a lexicon condition found in free text, with the phrases that matched
type SevereMatch struct {
	Condition      ConditionName `json:"condition"`
	DisplayName    string        `json:"display_name"`
	MatchedPhrases []string      `json:"matched_phrases"`
}

// TriageResult is the outcome of classifying one free-text message
type TriageResult struct {
	Kind       ClassificationKind `json:"kind"`
	Severe     []SevereMatch      `json:"severe,omitempty"`
	Remedies   []Remedy           `json:"remedies,omitempty"`
	Categories []string           `json:"categories,omitempty"`
}

// ConditionNames returns the matched condition names in lexicon order
func (r TriageResult) ConditionNames() []ConditionName {
	if len(r.Severe) == 0 {
		return nil
	}
	names := make([]ConditionName, len(r.Severe))
	for i, m := range r.Severe {
		names[i] = m.Condition
	}
	return names
}

// MatchedPhrases flattens the matched phrases of every severe match
func (r TriageResult) MatchedPhrases() []string {
	var out []string
	for _, m := range r.Severe {
		out = append(out, m.MatchedPhrases...)
	}
	return out
}

// Classification converts the result into the record stored on a chat message
func (r TriageResult) Classification() *MessageClassification {
	return &MessageClassification{
		Kind:              r.Kind,
		MatchedConditions: r.ConditionNames(),
	}
}
