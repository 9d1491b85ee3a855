package entities

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	apperrors "github.com/neuvia/backend/pkg/errors"
)

// ConditionName identifies a condition in the symptom lexicon (e.g. "gestationalDiabetes")
type ConditionName string

// DisplayName splits a camelCase condition name into lower-case words,
// so "gestationalDiabetes" becomes "gestational diabetes".
func (c ConditionName) DisplayName() string {
	var b strings.Builder
	for i, r := range string(c) {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte(' ')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Condition is a named condition with the trigger phrases that indicate it
type Condition struct {
	Name    ConditionName `json:"name" yaml:"name"`
	Phrases []string      `json:"phrases" yaml:"phrases"`
}

// SymptomLexicon is the read-only mapping from condition to severe trigger phrases.
// Condition order is significant: match results are reported in lexicon order.
type SymptomLexicon struct {
	conditions []Condition
}

// NewSymptomLexicon validates the conditions and builds a lexicon.
// Phrases are lower-cased. Any structural problem yields a CONFIG error.
func NewSymptomLexicon(conditions []Condition) (*SymptomLexicon, error) {
	if len(conditions) == 0 {
		return nil, apperrors.NewConfigError("symptom lexicon has no conditions")
	}

	seenNames := make(map[ConditionName]struct{}, len(conditions))
	phraseSets := make(map[string]ConditionName, len(conditions))
	out := make([]Condition, 0, len(conditions))

	for _, c := range conditions {
		if strings.TrimSpace(string(c.Name)) == "" {
			return nil, apperrors.NewConfigError("symptom lexicon has a condition without a name")
		}
		if _, dup := seenNames[c.Name]; dup {
			return nil, apperrors.NewConfigError(fmt.Sprintf("duplicate condition %q in symptom lexicon", c.Name))
		}
		seenNames[c.Name] = struct{}{}

		if len(c.Phrases) == 0 {
			return nil, apperrors.NewConfigError(fmt.Sprintf("condition %q has no phrases", c.Name))
		}

		phrases := make([]string, 0, len(c.Phrases))
		seenPhrases := make(map[string]struct{}, len(c.Phrases))
		for _, p := range c.Phrases {
			p = strings.ToLower(strings.TrimSpace(p))
			if p == "" {
				return nil, apperrors.NewConfigError(fmt.Sprintf("condition %q has a blank phrase", c.Name))
			}
			if _, dup := seenPhrases[p]; dup {
				return nil, apperrors.NewConfigError(fmt.Sprintf("condition %q repeats phrase %q", c.Name, p))
			}
			seenPhrases[p] = struct{}{}
			phrases = append(phrases, p)
		}

		key := phraseSetKey(phrases)
		if other, dup := phraseSets[key]; dup {
			return nil, apperrors.NewConfigError(fmt.Sprintf("conditions %q and %q declare identical phrases", other, c.Name))
		}
		phraseSets[key] = c.Name

		out = append(out, Condition{Name: c.Name, Phrases: phrases})
	}

	return &SymptomLexicon{conditions: out}, nil
}

func phraseSetKey(phrases []string) string {
	sorted := slices.Clone(phrases)
	slices.Sort(sorted)
	return strings.Join(sorted, "\x00")
}

// Conditions returns the conditions in lexicon order
func (l *SymptomLexicon) Conditions() []Condition {
	out := make([]Condition, len(l.conditions))
	for i, c := range l.conditions {
		out[i] = Condition{Name: c.Name, Phrases: slices.Clone(c.Phrases)}
	}
	return out
}

// Len returns the number of conditions
func (l *SymptomLexicon) Len() int {
	return len(l.conditions)
}

// Each calls fn for every condition in order without copying phrase slices.
// fn must not modify the phrases.
func (l *SymptomLexicon) Each(fn func(c Condition)) {
	for _, c := range l.conditions {
		fn(c)
	}
}
