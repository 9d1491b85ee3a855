package entities

import (
	"fmt"
	"slices"
	"strings"

	apperrors "github.com/neuvia/backend/pkg/errors"
)

// Remedy is a non-severe symptom with comfort measures
type Remedy struct {
	Symptom  string   `json:"symptom" yaml:"symptom"`
	Remedies []string `json:"remedies" yaml:"remedies"`
	Tips     string   `json:"tips" yaml:"tips"`
}

// SynonymRule lists extra substrings that also select a remedy entry
type SynonymRule struct {
	Symptom  string   `json:"symptom" yaml:"symptom"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// RemedyCatalog maps common pregnancy symptoms to remedies, in catalog order
type RemedyCatalog struct {
	entries  []Remedy
	synonyms map[string][]string
}

// NewRemedyCatalog validates and builds a remedy catalog
func NewRemedyCatalog(entries []Remedy, rules []SynonymRule) (*RemedyCatalog, error) {
	if len(entries) == 0 {
		return nil, apperrors.NewConfigError("remedy catalog has no entries")
	}

	seen := make(map[string]struct{}, len(entries))
	out := make([]Remedy, 0, len(entries))
	for _, e := range entries {
		key := strings.ToLower(strings.TrimSpace(e.Symptom))
		if key == "" {
			return nil, apperrors.NewConfigError("remedy catalog has an entry without a symptom")
		}
		if _, dup := seen[key]; dup {
			return nil, apperrors.NewConfigError(fmt.Sprintf("duplicate remedy symptom %q", key))
		}
		seen[key] = struct{}{}
		out = append(out, Remedy{Symptom: key, Remedies: slices.Clone(e.Remedies), Tips: e.Tips})
	}

	synonyms := make(map[string][]string, len(rules))
	for _, r := range rules {
		key := strings.ToLower(strings.TrimSpace(r.Symptom))
		if _, ok := seen[key]; !ok {
			return nil, apperrors.NewConfigError(fmt.Sprintf("synonym rule references unknown symptom %q", r.Symptom))
		}
		for _, kw := range r.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				return nil, apperrors.NewConfigError(fmt.Sprintf("synonym rule for %q has a blank keyword", key))
			}
			synonyms[key] = append(synonyms[key], kw)
		}
	}

	return &RemedyCatalog{entries: out, synonyms: synonyms}, nil
}

// Entries returns the remedies in catalog order
func (c *RemedyCatalog) Entries() []Remedy {
	out := make([]Remedy, len(c.entries))
	for i, e := range c.entries {
		out[i] = Remedy{Symptom: e.Symptom, Remedies: slices.Clone(e.Remedies), Tips: e.Tips}
	}
	return out
}

// Synonyms returns the extra keywords registered for symptom
func (c *RemedyCatalog) Synonyms(symptom string) []string {
	return slices.Clone(c.synonyms[symptom])
}

// Categories returns the known symptom keys in catalog order
func (c *RemedyCatalog) Categories() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Symptom
	}
	return out
}

// Matches reports whether lowered text selects entry: either the symptom key
// itself or one of its synonyms appears as a substring.
func (c *RemedyCatalog) Matches(entry Remedy, lowered string) bool {
	if strings.Contains(lowered, entry.Symptom) {
		return true
	}
	for _, kw := range c.synonyms[entry.Symptom] {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}
